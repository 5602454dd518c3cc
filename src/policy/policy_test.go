package policy

import (
	"testing"

	"github.com/aliemreo/real-time-scheduling/src/model"
)

func TestFactoryResolvesAliases(t *testing.T) {
	cases := map[string]string{
		"rm":              "Rate Monotonic (RM)",
		"RATE_MONOTONIC":  "Rate Monotonic (RM)",
		"DM":              "Deadline Monotonic (DM)",
		"edf":             "Earliest Deadline First (EDF)",
		"LLF":             "Least Laxity First (LLF)",
		"LST":             "Least Laxity First (LLF)",
		"FCFS":            "First Come First Served (FCFS)",
		"FIFO":            "First Come First Served (FCFS)",
		"SJF":             "Shortest Job First (SJF)",
		"LEAST_SLACK_TIME": "Least Laxity First (LLF)",
	}
	for name, want := range cases {
		pol, err := New(name)
		if err != nil {
			t.Errorf("New(%q): %v", name, err)
			continue
		}
		if pol.Name() != want {
			t.Errorf("New(%q) = %q, want %q", name, pol.Name(), want)
		}
	}
}

func TestFactoryRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := New("ROUND_ROBIN"); err == nil {
		t.Error("expected an error for an unknown algorithm")
	}
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	if _, err := NewServer(ServerConfig{Kind: ServerKind(99)}); err == nil {
		t.Error("expected an error for an unknown server kind")
	}
	if _, err := NewServer(ServerConfig{Kind: ServerPolling, Budget: 0, Period: 5}); err == nil {
		t.Error("expected an error for a zero budget")
	}
	if _, err := NewServer(ServerConfig{Kind: ServerDeferrable, Budget: 2, Period: 0}); err == nil {
		t.Error("expected an error for a zero period")
	}
}

func TestParseServerKindSpellings(t *testing.T) {
	for _, s := range []string{"POLLER", "polling", "DEFERABLE", "DEFERRABLE", "background"} {
		if _, err := ParseServerKind(s); err != nil {
			t.Errorf("ParseServerKind(%q): %v", s, err)
		}
	}
	if _, err := ParseServerKind("SPORADIC"); err == nil {
		t.Error("expected an error for an unknown server type")
	}
}

// ready builds jobs released at the given times over one catalog.
func readySet(t *testing.T, add func(c *model.Catalog) []*model.Job) []*model.Job {
	t.Helper()
	return add(model.NewCatalog())
}

func TestSelectNextOnEmptySet(t *testing.T) {
	policies := []Policy{
		RateMonotonic{}, DeadlineMonotonic{}, EarliestDeadlineFirst{},
		LeastLaxityFirst{}, FirstComeFirstServed{}, ShortestJobFirst{},
		&Background{}, &Polling{budget: 1, remaining: 1, period: 5}, &Deferrable{budget: 1, remaining: 1, period: 5},
	}
	for _, pol := range policies {
		if got := pol.SelectNext(nil, 0); got != nil {
			t.Errorf("%s: expected nil on empty set, got %v", pol.Name(), got)
		}
	}
}

func TestRateMonotonicPicksShortestPeriod(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		return []*model.Job{
			model.NewJob(c.Add(model.Periodic, 1, 8, 0, 0), 0),
			model.NewJob(c.Add(model.Periodic, 1, 5, 0, 0), 0),
			model.NewJob(c.Add(model.Aperiodic, 1, 0, 0, 0), 0),
		}
	})
	got := RateMonotonic{}.SelectNext(ready, 0)
	if got != ready[1] {
		t.Errorf("expected the period-5 job, got %v", got)
	}
}

func TestRateMonotonicNeverPrefersAperiodic(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		return []*model.Job{
			model.NewJob(c.Add(model.Aperiodic, 1, 0, 0, 0), 0),
			model.NewJob(c.Add(model.Periodic, 1, 100, 0, 0), 0),
		}
	})
	if got := (RateMonotonic{}).SelectNext(ready, 0); got != ready[1] {
		t.Errorf("aperiodic must lose to any periodic job, got %v", got)
	}
}

func TestDeadlineMonotonicPicksShortestRelativeDeadline(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		return []*model.Job{
			model.NewJob(c.Add(model.Periodic, 1, 10, 9, 0), 0),
			model.NewJob(c.Add(model.Periodic, 1, 10, 4, 0), 0),
		}
	})
	if got := (DeadlineMonotonic{}).SelectNext(ready, 0); got != ready[1] {
		t.Errorf("expected the deadline-4 job, got %v", got)
	}
}

func TestEDFPicksEarliestAbsoluteDeadline(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		a := c.Add(model.Periodic, 1, 8, 0, 0)
		b := c.Add(model.Periodic, 1, 5, 0, 0)
		return []*model.Job{
			model.NewJob(a, 8),  // deadline 16
			model.NewJob(b, 10), // deadline 15
		}
	})
	if got := (EarliestDeadlineFirst{}).SelectNext(ready, 10); got != ready[1] {
		t.Errorf("expected the deadline-15 job, got %v", got)
	}
}

func TestLLFPicksLeastLaxity(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		a := c.Add(model.Periodic, 1, 10, 0, 0) // laxity at 0: 10-0-1 = 9
		b := c.Add(model.Periodic, 6, 10, 0, 0) // laxity at 0: 10-0-6 = 4
		return []*model.Job{model.NewJob(a, 0), model.NewJob(b, 0)}
	})
	if got := (LeastLaxityFirst{}).SelectNext(ready, 0); got != ready[1] {
		t.Errorf("expected the laxity-4 job, got %v", got)
	}
}

func TestFCFSPicksEarliestRelease(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		a := c.Add(model.Aperiodic, 1, 0, 0, 5)
		b := c.Add(model.Aperiodic, 1, 0, 0, 3)
		return []*model.Job{model.NewJob(a, 5), model.NewJob(b, 3)}
	})
	if got := (FirstComeFirstServed{}).SelectNext(ready, 6); got != ready[1] {
		t.Errorf("expected the release-3 job, got %v", got)
	}
}

func TestSJFPicksLeastRemaining(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		a := c.Add(model.Periodic, 5, 20, 0, 0)
		b := c.Add(model.Periodic, 2, 20, 0, 0)
		return []*model.Job{model.NewJob(a, 0), model.NewJob(b, 0)}
	})
	if got := (ShortestJobFirst{}).SelectNext(ready, 0); got != ready[1] {
		t.Errorf("expected the 2-unit job, got %v", got)
	}
}

func TestTiesBreakTowardInputOrder(t *testing.T) {
	ready := readySet(t, func(c *model.Catalog) []*model.Job {
		a := c.Add(model.Periodic, 1, 5, 0, 0)
		b := c.Add(model.Periodic, 1, 5, 0, 0)
		return []*model.Job{model.NewJob(a, 0), model.NewJob(b, 0)}
	})
	for _, pol := range []Policy{RateMonotonic{}, DeadlineMonotonic{}, EarliestDeadlineFirst{}, LeastLaxityFirst{}, FirstComeFirstServed{}, ShortestJobFirst{}} {
		if got := pol.SelectNext(ready, 0); got != ready[0] {
			t.Errorf("%s: tie should keep the first job encountered, got %v", pol.Name(), got)
		}
	}
}
