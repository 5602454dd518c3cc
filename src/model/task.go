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

// BoundaryTolerance absorbs accumulated floating error when comparing the
// clock against period boundaries (releases, replenishments, deadline
// windows). Exact equality would make releases flap.
const BoundaryTolerance = 0.01

// CompletionEpsilon is the tolerance below which remaining work counts as
// zero.
const CompletionEpsilon = 1e-9

type TaskKind int

const (
	Periodic TaskKind = iota
	Dynamic
	Aperiodic
)

func (k TaskKind) String() string {
	switch k {
	case Periodic:
		return "P"
	case Dynamic:
		return "D"
	case Aperiodic:
		return "A"
	}
	return "?"
}

// Task is the immutable definition of recurring or one-shot work. Instances
// of it (Jobs) carry all mutable state; a Task is never modified after the
// Catalog constructs it.
type Task struct {
	ID       int
	Kind     TaskKind
	Exec     float64 // execution time per instance
	Period   float64 // recurrence interval, 0 for aperiodic
	Deadline float64 // relative deadline, defaults to Period
	Release  float64 // first release time
}

// Label renders the task as "P1", "D2", "A3".
func (t *Task) Label() string {
	return fmt.Sprintf("%s%d", t.Kind, t.ID)
}

// HasDeadline reports whether deadline checks apply to this kind. Aperiodic
// work has no relative deadline; misses never fire for it.
func (t *Task) HasDeadline() bool {
	return t.Kind != Aperiodic
}

// PriorityPeriod is the period used for rate-monotonic comparisons.
// Aperiodic tasks sort last.
func (t *Task) PriorityPeriod() float64 {
	if t.Kind == Aperiodic {
		return math.Inf(1)
	}
	return t.Period
}

// PriorityDeadline is the relative deadline used for deadline-monotonic
// comparisons. Aperiodic tasks sort last.
func (t *Task) PriorityDeadline() float64 {
	if t.Kind == Aperiodic {
		return math.Inf(1)
	}
	return t.Deadline
}

// Utilization is Exec/Period, or 0 for aperiodic tasks.
func (t *Task) Utilization() float64 {
	if t.Kind == Aperiodic || t.Period <= 0 {
		return 0
	}
	return t.Exec / t.Period
}

// Catalog owns the task definitions for one run and the id counter that
// numbers them. Ids start at 1 and increase in insertion order, so repeated
// runs over the same input produce identical numbering.
type Catalog struct {
	tasks  []*Task
	nextID int
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add constructs a task and registers it. A non-positive deadline defaults
// to the period (implicit-deadline convention).
func (c *Catalog) Add(kind TaskKind, exec, period, deadline, release float64) *Task {
	if deadline <= 0 {
		deadline = period
	}
	c.nextID++
	t := &Task{
		ID:       c.nextID,
		Kind:     kind,
		Exec:     exec,
		Period:   period,
		Deadline: deadline,
		Release:  release,
	}
	c.tasks = append(c.tasks, t)
	return t
}

// Tasks returns all tasks in insertion order.
func (c *Catalog) Tasks() []*Task {
	return c.tasks
}

func (c *Catalog) Len() int {
	return len(c.tasks)
}

// ByKind returns the tasks of one kind, preserving insertion order.
func (c *Catalog) ByKind(kind TaskKind) []*Task {
	var out []*Task
	for _, t := range c.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}
