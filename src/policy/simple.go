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

import "github.com/aliemreo/real-time-scheduling/src/model"

// argmin scans for the job minimizing key. The strict < keeps ties on the
// first job encountered, which is the documented tie-break.
func argmin(ready []*model.Job, key func(*model.Job) float64) *model.Job {
	if len(ready) == 0 {
		return nil
	}
	best := ready[0]
	for _, j := range ready[1:] {
		if key(j) < key(best) {
			best = j
		}
	}
	return best
}

// RateMonotonic gives static priority to the shortest period. Aperiodic
// jobs have an infinite effective period and run only when nothing else is
// ready.
type RateMonotonic struct{}

func (RateMonotonic) Name() string { return "Rate Monotonic (RM)" }

func (RateMonotonic) SelectNext(ready []*model.Job, now float64) *model.Job {
	return argmin(ready, func(j *model.Job) float64 { return j.Task.PriorityPeriod() })
}

// DeadlineMonotonic gives static priority to the shortest relative
// deadline.
type DeadlineMonotonic struct{}

func (DeadlineMonotonic) Name() string { return "Deadline Monotonic (DM)" }

func (DeadlineMonotonic) SelectNext(ready []*model.Job, now float64) *model.Job {
	return argmin(ready, func(j *model.Job) float64 { return j.Task.PriorityDeadline() })
}

// EarliestDeadlineFirst gives dynamic priority to the earliest absolute
// deadline.
type EarliestDeadlineFirst struct{}

func (EarliestDeadlineFirst) Name() string { return "Earliest Deadline First (EDF)" }

func (EarliestDeadlineFirst) SelectNext(ready []*model.Job, now float64) *model.Job {
	return argmin(ready, func(j *model.Job) float64 { return j.AbsDeadline })
}

// LeastLaxityFirst picks the smallest slack, recomputed every tick.
type LeastLaxityFirst struct{}

func (LeastLaxityFirst) Name() string { return "Least Laxity First (LLF)" }

func (LeastLaxityFirst) SelectNext(ready []*model.Job, now float64) *model.Job {
	return argmin(ready, func(j *model.Job) float64 { return j.Laxity(now) })
}

// FirstComeFirstServed picks the earliest release.
type FirstComeFirstServed struct{}

func (FirstComeFirstServed) Name() string { return "First Come First Served (FCFS)" }

func (FirstComeFirstServed) SelectNext(ready []*model.Job, now float64) *model.Job {
	return argmin(ready, func(j *model.Job) float64 { return j.Release })
}

// ShortestJobFirst picks the least remaining execution.
type ShortestJobFirst struct{}

func (ShortestJobFirst) Name() string { return "Shortest Job First (SJF)" }

func (ShortestJobFirst) SelectNext(ready []*model.Job, now float64) *model.Job {
	return argmin(ready, func(j *model.Job) float64 { return j.Remaining })
}
