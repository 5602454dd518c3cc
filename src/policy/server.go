// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package policy

import (
	"math"

	"github.com/aliemreo/real-time-scheduling/src/model"
)

// splitByKind partitions the ready set into the periodic side
// (periodic + dynamic jobs) and the aperiodic side, preserving input order
// on both sides.
func splitByKind(ready []*model.Job) (periodic, aperiodic []*model.Job) {
	for _, j := range ready {
		if j.Task.Kind == model.Aperiodic {
			aperiodic = append(aperiodic, j)
		} else {
			periodic = append(periodic, j)
		}
	}
	return periodic, aperiodic
}

// bestPeriodic applies the server's base rule to the periodic side.
func bestPeriodic(periodic []*model.Job, rule BaseRule) *model.Job {
	if rule == BaseEDF {
		return argmin(periodic, func(j *model.Job) float64 { return j.AbsDeadline })
	}
	return argmin(periodic, func(j *model.Job) float64 { return j.Task.PriorityPeriod() })
}

// Background gives periodic and dynamic jobs absolute priority; aperiodic
// jobs run, in arrival order, only when the periodic side is empty. There
// is no budget.
type Background struct {
	Rule BaseRule
}

func (*Background) Name() string { return "Background Scheduling" }

func (b *Background) SelectNext(ready []*model.Job, now float64) *model.Job {
	periodic, aperiodic := splitByKind(ready)
	if len(periodic) > 0 {
		return bestPeriodic(periodic, b.Rule)
	}
	if len(aperiodic) > 0 {
		return aperiodic[0]
	}
	return nil
}

// Polling serves aperiodic jobs from a budget refilled at every
// replenishment period boundary. The budget is forfeit the moment the
// server is not actively spending it: a periodic job that beats the
// server's priority preempts and discards the remainder, and a polling
// window that finds only periodic work is likewise thrown away.
type Polling struct {
	budget    float64
	remaining float64
	period    float64
	rule      BaseRule
}

func (*Polling) Name() string { return "Poller Scheduling" }

func (p *Polling) SelectNext(ready []*model.Job, now float64) *model.Job {
	periodic, aperiodic := splitByKind(ready)

	if p.remaining <= 0 {
		return bestPeriodic(periodic, p.rule)
	}

	if len(aperiodic) > 0 {
		selected := aperiodic[0] // aperiodic side is served FCFS
		if hp := bestPeriodic(periodic, p.rule); hp != nil && p.periodicPreempts(hp, now) {
			selected = hp
			p.remaining = 0 // preemption discards the rest of the budget
		}
		return selected
	}

	if len(periodic) > 0 {
		p.remaining = 0 // polled with nothing aperiodic to serve: budget forfeit
		return bestPeriodic(periodic, p.rule)
	}
	return nil
}

// periodicPreempts compares the highest-priority periodic job against the
// server's replenishment period, which stands in for the server's own
// priority under both base rules.
func (p *Polling) periodicPreempts(hp *model.Job, now float64) bool {
	if p.rule == BaseEDF {
		return hp.AbsDeadline < now+p.period
	}
	return hp.Task.PriorityPeriod() < p.period
}

func (p *Polling) Replenish(now float64) {
	if math.Mod(now, p.period) < model.BoundaryTolerance {
		p.remaining = p.budget
	}
}

func (p *Polling) Consume(duration float64) float64 {
	consumed := math.Min(duration, p.remaining)
	if consumed < 0 {
		consumed = 0
	}
	p.remaining -= consumed
	return consumed
}

func (p *Polling) RemainingBudget() float64 { return p.remaining }

// Deferrable is the same partition and preemption logic as Polling, but
// unconsumed budget is preserved until it is spent or the next
// replenishment overwrites it.
type Deferrable struct {
	budget    float64
	remaining float64
	period    float64
	rule      BaseRule
}

func (*Deferrable) Name() string { return "Deferable Scheduling" }

func (d *Deferrable) SelectNext(ready []*model.Job, now float64) *model.Job {
	periodic, aperiodic := splitByKind(ready)

	if d.remaining <= 0 {
		return bestPeriodic(periodic, d.rule)
	}

	if len(aperiodic) > 0 {
		selected := aperiodic[0]
		if hp := bestPeriodic(periodic, d.rule); hp != nil && d.periodicPreempts(hp, now) {
			selected = hp // budget stays put
		}
		return selected
	}
	// Unlike Polling, serving periodic work does not touch the budget.
	return bestPeriodic(periodic, d.rule)
}

func (d *Deferrable) periodicPreempts(hp *model.Job, now float64) bool {
	if d.rule == BaseEDF {
		return hp.AbsDeadline < now+d.period
	}
	return hp.Task.PriorityPeriod() < d.period
}

func (d *Deferrable) Replenish(now float64) {
	if math.Mod(now, d.period) < model.BoundaryTolerance {
		d.remaining = d.budget
	}
}

func (d *Deferrable) Consume(duration float64) float64 {
	consumed := math.Min(duration, d.remaining)
	if consumed < 0 {
		consumed = 0
	}
	d.remaining -= consumed
	return consumed
}

func (d *Deferrable) RemainingBudget() float64 { return d.remaining }
