package stats

import (
	"math"
	"testing"

	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/sim"
)

func finishedJob(c *model.Catalog, release, start, completion float64) *model.Job {
	j := model.NewJob(c.Add(model.Periodic, 1, 10, 0, 0), release)
	j.Started = true
	j.StartTime = start
	j.CompletionTime = completion
	j.Remaining = 0
	return j
}

func TestSummarizeEmptyRun(t *testing.T) {
	sum := Summarize(&sim.Result{Policy: "Rate Monotonic (RM)"})

	if sum.SuccessRate != 0 {
		t.Errorf("success rate of an empty run is 0, got %g", sum.SuccessRate)
	}
	if sum.Total != 0 || sum.AvgResponse != 0 || sum.AvgCompletion != 0 {
		t.Errorf("empty run should produce zero statistics: %+v", sum)
	}
}

func TestSummarizeTimingMath(t *testing.T) {
	c := model.NewCatalog()
	res := &sim.Result{
		Finished: []*model.Job{
			finishedJob(c, 0, 0, 4),  // response 0, completion 4
			finishedJob(c, 5, 7, 10), // response 2, completion 5
		},
		Missed: []*model.Job{model.NewJob(c.Add(model.Periodic, 2, 5, 0, 0), 0)},
	}
	sum := Summarize(res)

	if sum.Total != 3 || sum.Completed != 2 || sum.Missed != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if math.Abs(sum.SuccessRate-66.666) > 0.01 {
		t.Errorf("success rate: got %g", sum.SuccessRate)
	}
	if sum.AvgResponse != 1 {
		t.Errorf("avg response: got %g, want 1", sum.AvgResponse)
	}
	if sum.MaxResponse != 2 {
		t.Errorf("max response: got %g, want 2", sum.MaxResponse)
	}
	if sum.AvgCompletion != 4.5 {
		t.Errorf("avg completion: got %g, want 4.5", sum.AvgCompletion)
	}
}

func TestRMBound(t *testing.T) {
	cases := []struct {
		n    int
		want float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 0.8284},
		{3, 0.7798},
	}
	for _, tc := range cases {
		if got := RMBound(tc.n); math.Abs(got-tc.want) > 1e-4 {
			t.Errorf("RMBound(%d) = %g, want %g", tc.n, got, tc.want)
		}
	}
}

func TestAnalyzeUtilization(t *testing.T) {
	c := model.NewCatalog()
	c.Add(model.Periodic, 4, 8, 0, 0) // 0.5
	c.Add(model.Dynamic, 1, 5, 5, 0)  // 0.2
	c.Add(model.Aperiodic, 3, 0, 0, 10)

	u := Analyze(c)
	if u.Periodic != 0.5 || u.Dynamic != 0.2 {
		t.Errorf("per-kind utilization wrong: %+v", u)
	}
	if math.Abs(u.Total-0.7) > 1e-9 {
		t.Errorf("total utilization: got %g, want 0.7", u.Total)
	}
	if !u.RMSchedulable {
		t.Error("0.5 periodic utilization is under the single-task RM bound")
	}
	if !u.EDFSchedulable {
		t.Error("0.7 total utilization is EDF schedulable")
	}
}

func TestAnalyzeOverloadedSet(t *testing.T) {
	c := model.NewCatalog()
	c.Add(model.Periodic, 2, 5, 0, 0)
	c.Add(model.Periodic, 3, 7, 0, 0)
	c.Add(model.Periodic, 2, 8, 0, 0)

	u := Analyze(c)
	if u.Total <= 1.0 {
		t.Fatalf("set should be overloaded, utilization %g", u.Total)
	}
	if u.RMSchedulable || u.EDFSchedulable {
		t.Errorf("overloaded set must fail both bounds: %+v", u)
	}
}
