package policy

import (
	"testing"

	"github.com/aliemreo/real-time-scheduling/src/model"
)

// mixedReady returns a periodic job (period 4, released at now=0) and an
// aperiodic job, in that input order.
func mixedReady(periodicPeriod float64) (ready []*model.Job, periodic, aperiodic *model.Job) {
	c := model.NewCatalog()
	periodic = model.NewJob(c.Add(model.Periodic, 2, periodicPeriod, 0, 0), 0)
	aperiodic = model.NewJob(c.Add(model.Aperiodic, 2, 0, 0, 0), 0)
	return []*model.Job{periodic, aperiodic}, periodic, aperiodic
}

func TestBackgroundPeriodicHasAbsolutePriority(t *testing.T) {
	ready, periodic, aperiodic := mixedReady(100)
	b := &Background{Rule: BaseRM}

	if got := b.SelectNext(ready, 0); got != periodic {
		t.Errorf("periodic work must always beat aperiodic, got %v", got)
	}
	if got := b.SelectNext([]*model.Job{aperiodic}, 0); got != aperiodic {
		t.Errorf("aperiodic should run when nothing periodic is ready, got %v", got)
	}
}

func TestBackgroundAperiodicServedInArrivalOrder(t *testing.T) {
	c := model.NewCatalog()
	first := model.NewJob(c.Add(model.Aperiodic, 1, 0, 0, 0), 0)
	second := model.NewJob(c.Add(model.Aperiodic, 1, 0, 0, 1), 1)
	b := &Background{Rule: BaseRM}

	if got := b.SelectNext([]*model.Job{first, second}, 2); got != first {
		t.Errorf("expected FCFS on the aperiodic side, got %v", got)
	}
}

func TestBackgroundBaseRuleOrdersPeriodicSide(t *testing.T) {
	c := model.NewCatalog()
	// longer period but earlier absolute deadline
	late := model.NewJob(c.Add(model.Periodic, 1, 10, 6, 0), 0) // deadline 6
	early := model.NewJob(c.Add(model.Periodic, 1, 5, 0, 0), 4) // deadline 9
	ready := []*model.Job{late, early}

	rm := &Background{Rule: BaseRM}
	if got := rm.SelectNext(ready, 4); got != early {
		t.Errorf("RM base rule should pick the period-5 job, got %v", got)
	}
	edf := &Background{Rule: BaseEDF}
	if got := edf.SelectNext(ready, 4); got != late {
		t.Errorf("EDF base rule should pick the deadline-6 job, got %v", got)
	}
}

func TestReplenishFiresOnPeriodBoundary(t *testing.T) {
	p := &Polling{budget: 2, period: 5}

	p.Replenish(0)
	if p.RemainingBudget() != 2 {
		t.Errorf("replenish at t=0 should fill the budget, got %g", p.RemainingBudget())
	}
	p.Consume(2)
	p.Replenish(3)
	if p.RemainingBudget() != 0 {
		t.Errorf("mid-period replenish must not fire, got %g", p.RemainingBudget())
	}
	p.Replenish(5)
	if p.RemainingBudget() != 2 {
		t.Errorf("replenish at t=5 should refill, got %g", p.RemainingBudget())
	}
}

func TestConsumeIsACappedDecrement(t *testing.T) {
	for _, b := range []Budgeted{
		&Polling{budget: 2, remaining: 2, period: 5},
		&Deferrable{budget: 2, remaining: 2, period: 5},
	} {
		if got := b.Consume(1.5); got != 1.5 {
			t.Errorf("%s: expected 1.5 consumed, got %g", b.Name(), got)
		}
		if got := b.Consume(1); got != 0.5 {
			t.Errorf("%s: expected the remaining 0.5, got %g", b.Name(), got)
		}
		if got := b.Consume(1); got != 0 {
			t.Errorf("%s: exhausted budget must grant nothing, got %g", b.Name(), got)
		}
		if b.RemainingBudget() != 0 {
			t.Errorf("%s: budget must not go negative, got %g", b.Name(), b.RemainingBudget())
		}
	}
}

func TestServerWithNoBudgetRunsOnlyPeriodicJobs(t *testing.T) {
	ready, periodic, aperiodic := mixedReady(4)

	p := &Polling{budget: 2, period: 5, rule: BaseRM}
	if got := p.SelectNext(ready, 0); got != periodic {
		t.Errorf("polling with no budget should pick the periodic job, got %v", got)
	}
	if got := p.SelectNext([]*model.Job{aperiodic}, 0); got != nil {
		t.Errorf("polling with no budget must idle over aperiodic-only work, got %v", got)
	}

	d := &Deferrable{budget: 2, period: 5, rule: BaseRM}
	if got := d.SelectNext([]*model.Job{aperiodic}, 0); got != nil {
		t.Errorf("deferrable with no budget must idle over aperiodic-only work, got %v", got)
	}
}

func TestPollingDiscardsBudgetOnPreemption(t *testing.T) {
	// periodic period 4 < replenishment period 5: the periodic job beats
	// the server under the RM stand-in comparison
	ready, periodic, _ := mixedReady(4)
	p := &Polling{budget: 2, remaining: 2, period: 5, rule: BaseRM}

	if got := p.SelectNext(ready, 0); got != periodic {
		t.Errorf("expected the preempting periodic job, got %v", got)
	}
	if p.RemainingBudget() != 0 {
		t.Errorf("polling must discard the budget on preemption, got %g", p.RemainingBudget())
	}
}

func TestPollingServesAperiodicWhenServerWins(t *testing.T) {
	// periodic period 20 > replenishment period 5: the server wins
	ready, _, aperiodic := mixedReady(20)
	p := &Polling{budget: 2, remaining: 2, period: 5, rule: BaseRM}

	if got := p.SelectNext(ready, 0); got != aperiodic {
		t.Errorf("expected the aperiodic job to hold the budget, got %v", got)
	}
	if p.RemainingBudget() != 2 {
		t.Errorf("selection alone must not consume budget, got %g", p.RemainingBudget())
	}
}

func TestPollingForfeitsUnusedWindow(t *testing.T) {
	_, periodic, _ := mixedReady(20)
	p := &Polling{budget: 2, remaining: 2, period: 5, rule: BaseRM}

	// only the periodic job is ready: the polling window is wasted
	if got := p.SelectNext([]*model.Job{periodic}, 0); got != periodic {
		t.Errorf("expected the periodic job, got %v", got)
	}
	if p.RemainingBudget() != 0 {
		t.Errorf("an idle poll with periodic work forfeits the budget, got %g", p.RemainingBudget())
	}
}

func TestDeferrablePreservesBudgetOnPreemption(t *testing.T) {
	ready, periodic, _ := mixedReady(4)
	d := &Deferrable{budget: 2, remaining: 2, period: 5, rule: BaseRM}

	if got := d.SelectNext(ready, 0); got != periodic {
		t.Errorf("expected the preempting periodic job, got %v", got)
	}
	if d.RemainingBudget() != 2 {
		t.Errorf("deferrable must preserve the budget on preemption, got %g", d.RemainingBudget())
	}

	// and across an idle window with only periodic work
	if got := d.SelectNext([]*model.Job{periodic}, 1); got != periodic {
		t.Errorf("expected the periodic job, got %v", got)
	}
	if d.RemainingBudget() != 2 {
		t.Errorf("deferrable must preserve the budget until consumed, got %g", d.RemainingBudget())
	}
}

func TestEDFPreemptionComparesDeadlineAgainstWindow(t *testing.T) {
	c := model.NewCatalog()
	// abs deadline 8 < now(0) + replenishment period 10: preempts
	tight := model.NewJob(c.Add(model.Periodic, 1, 8, 0, 0), 0)
	aperiodic := model.NewJob(c.Add(model.Aperiodic, 2, 0, 0, 0), 0)
	ready := []*model.Job{tight, aperiodic}

	p := &Polling{budget: 2, remaining: 2, period: 10, rule: BaseEDF}
	if got := p.SelectNext(ready, 0); got != tight {
		t.Errorf("deadline inside the window must preempt, got %v", got)
	}
	if p.RemainingBudget() != 0 {
		t.Errorf("preemption discards the polling budget, got %g", p.RemainingBudget())
	}

	// abs deadline 8 >= now(0) + replenishment period 5: the server wins
	p2 := &Polling{budget: 2, remaining: 2, period: 5, rule: BaseEDF}
	if got := p2.SelectNext(ready, 0); got != aperiodic {
		t.Errorf("deadline beyond the window must not preempt, got %v", got)
	}
}
