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

// Package report renders run results for the console and as JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/parser"
	"github.com/aliemreo/real-time-scheduling/src/sim"
	"github.com/aliemreo/real-time-scheduling/src/stats"
)

type Mode int

const (
	Minimal Mode = iota
	Detailed
	Verbose
)

const separator = "======================================================================"

// Render writes the full console report for one run: header, task tables,
// schedule transitions, results block, and in verbose mode the execution
// timeline.
func Render(w io.Writer, ts *parser.TaskSet, res *sim.Result, sum stats.Summary, util stats.Utilization, mode Mode) {
	writeHeader(w, res.Policy, ts.Catalog.Len(), mode)
	if mode != Minimal {
		writeTaskSet(w, ts.Catalog)
	}
	writeTransitions(w, res)
	writeResults(w, sum, util, mode)
	if mode == Verbose {
		writeTimeline(w, ts.Catalog, res)
	}
}

func writeHeader(w io.Writer, policyName string, taskCount int, mode Mode) {
	if mode == Minimal {
		fmt.Fprintf(w, "Scheduler: %s\n", policyName)
		return
	}
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, center("Real-Time Scheduling Simulation", len(separator)))
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Scheduler: %s\n", policyName)
	fmt.Fprintf(w, "Total Tasks: %d\n", taskCount)
	fmt.Fprintln(w, separator)
}

func writeTaskSet(w io.Writer, c *model.Catalog) {
	fmt.Fprintln(w, "\nTask Set:")
	fmt.Fprintln(w, strings.Repeat("-", len(separator)))

	if periodic := c.ByKind(model.Periodic); len(periodic) > 0 {
		fmt.Fprintln(w, "\nPeriodic Tasks:")
		fmt.Fprintf(w, "%-6s %-10s %-10s %-10s %-10s\n", "ID", "Release", "Exec", "Period", "Deadline")
		fmt.Fprintln(w, strings.Repeat("-", 50))
		for _, t := range periodic {
			fmt.Fprintf(w, "%-6d %-10.2f %-10.2f %-10.2f %-10.2f\n", t.ID, t.Release, t.Exec, t.Period, t.Deadline)
		}
	}

	if dynamic := c.ByKind(model.Dynamic); len(dynamic) > 0 {
		fmt.Fprintln(w, "\nDynamic Tasks:")
		fmt.Fprintf(w, "%-6s %-10s %-10s %-10s\n", "ID", "Exec", "Period", "Deadline")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		for _, t := range dynamic {
			fmt.Fprintf(w, "%-6d %-10.2f %-10.2f %-10.2f\n", t.ID, t.Exec, t.Period, t.Deadline)
		}
	}

	if aperiodic := c.ByKind(model.Aperiodic); len(aperiodic) > 0 {
		fmt.Fprintln(w, "\nAperiodic Tasks:")
		fmt.Fprintf(w, "%-6s %-10s %-10s\n", "ID", "Release", "Exec")
		fmt.Fprintln(w, strings.Repeat("-", 30))
		for _, t := range aperiodic {
			fmt.Fprintf(w, "%-6d %-10.2f %-10.2f\n", t.ID, t.Release, t.Exec)
		}
	}
}

// writeTransitions prints the schedule as transitions: one row whenever the
// running job changes, IDLE rows included.
func writeTransitions(w io.Writer, res *sim.Result) {
	fmt.Fprintf(w, "\n=== Schedule: %s ===\n", res.Policy)
	fmt.Fprintln(w, "Time\tTask\tAction")
	fmt.Fprintln(w, "----\t----\t------")

	var prev *model.Job
	first := true
	for _, sample := range res.Log {
		if !first && sample.Job == prev {
			continue
		}
		first = false
		prev = sample.Job

		if sample.Job == nil {
			fmt.Fprintf(w, "%g\tIDLE\t-\n", sample.Time)
			continue
		}
		t := sample.Job.Task
		deadline := "N/A"
		if t.HasDeadline() {
			deadline = fmt.Sprintf("%.2f", sample.Job.AbsDeadline)
		}
		fmt.Fprintf(w, "%g\tT%d(%s)\tExecuting (deadline: %s)\n", sample.Time, t.ID, t.Kind, deadline)
	}

	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "Completed jobs: %d\n", len(res.Finished))
	fmt.Fprintf(w, "Missed deadlines: %d\n", len(res.Missed))
	if len(res.Missed) > 0 {
		fmt.Fprint(w, "Deadline misses for tasks: ")
		for _, j := range res.Missed {
			fmt.Fprintf(w, "T%d at t=%g ", j.Task.ID, j.AbsDeadline)
		}
		fmt.Fprintln(w)
	}
}

func writeResults(w io.Writer, sum stats.Summary, util stats.Utilization, mode Mode) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, center("SIMULATION RESULTS", len(separator)))
	fmt.Fprintln(w, separator)

	fmt.Fprintln(w, "\nTask Completion:")
	fmt.Fprintf(w, "  Total Jobs:        %d\n", sum.Total)
	fmt.Fprintf(w, "  Completed:         %d\n", sum.Completed)
	fmt.Fprintf(w, "  Missed Deadlines:  %d\n", sum.Missed)
	fmt.Fprintf(w, "  Success Rate:      %.2f%%\n", sum.SuccessRate)

	if sum.Missed == 0 {
		fmt.Fprintln(w, "\n  [OK] ALL TASKS SCHEDULABLE")
	} else {
		fmt.Fprintln(w, "\n  [FAIL] SOME TASKS MISSED DEADLINES")
	}

	if mode != Minimal {
		if sum.Completed > 0 {
			fmt.Fprintln(w, "\nTiming Statistics:")
			fmt.Fprintf(w, "  Avg Response Time:   %.2f\n", sum.AvgResponse)
			fmt.Fprintf(w, "  Max Response Time:   %.2f\n", sum.MaxResponse)
			fmt.Fprintf(w, "  Avg Completion Time: %.2f\n", sum.AvgCompletion)
		}
		fmt.Fprintln(w, "\nUtilization Analysis:")
		fmt.Fprintf(w, "  Total Utilization:     %.4f\n", util.Total)
		fmt.Fprintf(w, "  RM Schedulable:        %s\n", yesNo(util.RMSchedulable))
		fmt.Fprintf(w, "  EDF Schedulable:       %s\n", yesNo(util.EDFSchedulable))
	}
	fmt.Fprintln(w, separator)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
