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

package model

import (
	"fmt"
	"math"
)

// Job is one released instance of a Task. It holds a non-owning reference
// into the Catalog, which outlives every job of the run. The simulation
// driver is the only mutator.
type Job struct {
	Task           *Task
	Remaining      float64
	Release        float64 // clock time this instance was released
	AbsDeadline    float64 // Release + Task.Deadline, +Inf for aperiodic
	Started        bool
	StartTime      float64 // first execution, valid once Started
	CompletionTime float64 // valid once Complete
	Preemptions    int
}

func NewJob(t *Task, release float64) *Job {
	deadline := release + t.Deadline
	if t.Kind == Aperiodic {
		deadline = math.Inf(1)
	}
	return &Job{
		Task:        t,
		Remaining:   t.Exec,
		Release:     release,
		AbsDeadline: deadline,
	}
}

// Execute applies up to duration units of work and returns the amount
// actually applied. Remaining never goes negative; a completed job is a
// no-op.
func (j *Job) Execute(duration float64) float64 {
	if j.Complete() {
		return 0
	}
	j.Started = true
	actual := math.Min(duration, j.Remaining)
	j.Remaining = math.Max(0, j.Remaining-actual)
	return actual
}

// Complete reports whether the job has no work left.
func (j *Job) Complete() bool {
	return j.Remaining <= CompletionEpsilon
}

// DeadlineMissed reports whether the job is past its absolute deadline
// without having completed. Always false for aperiodic jobs.
func (j *Job) DeadlineMissed(now float64) bool {
	return now > j.AbsDeadline && !j.Complete()
}

// Laxity is the margin before a miss becomes inevitable:
// AbsDeadline - now - Remaining.
func (j *Job) Laxity(now float64) float64 {
	return j.AbsDeadline - now - j.Remaining
}

func (j *Job) String() string {
	return fmt.Sprintf("%s@%g", j.Task.Label(), j.Release)
}
