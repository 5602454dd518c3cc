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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/sim"
)

// timelineMaxSlots caps the timeline width; longer runs show the opening
// window only.
const timelineMaxSlots = 40

// writeTimeline draws an ASCII execution timeline, one row per task and one
// column per tick: '#' running, '.' idle, '^' on the arrivals row.
func writeTimeline(w io.Writer, c *model.Catalog, res *sim.Result) {
	slots := len(res.Log)
	if slots > timelineMaxSlots {
		slots = timelineMaxSlots
	}
	if slots == 0 || c.Len() == 0 {
		return
	}

	fmt.Fprintln(w, "\nExecution Timeline:")
	fmt.Fprint(w, "        ")
	for i := 0; i < slots; i++ {
		fmt.Fprintf(w, "%d", i%10)
	}
	fmt.Fprintln(w)

	for _, t := range c.Tasks() {
		row := make([]byte, slots)
		arrivals := make([]byte, slots)
		for i := range row {
			row[i] = '.'
			arrivals[i] = ' '
		}
		for i, sample := range res.Log[:slots] {
			if sample.Job != nil && sample.Job.Task == t {
				row[i] = '#'
				if sample.Job.Release == sample.Time {
					arrivals[i] = '^'
				}
			}
		}
		// arrivals that never got the processor in-window still show up
		for _, j := range releasesOf(t, res) {
			slot := int(j / res.Tick)
			if slot >= 0 && slot < slots {
				arrivals[slot] = '^'
			}
		}
		fmt.Fprintf(w, "%-7s %s\n", t.Label(), row)
		if strings.ContainsRune(string(arrivals), '^') {
			fmt.Fprintf(w, "        %s\n", arrivals)
		}
	}
	if len(res.Log) > timelineMaxSlots {
		fmt.Fprintf(w, "(showing first %d of %d slots)\n", timelineMaxSlots, len(res.Log))
	}
}

// releasesOf reconstructs the release times of t from the terminal lists
// and the log.
func releasesOf(t *model.Task, res *sim.Result) []float64 {
	seen := map[float64]bool{}
	var out []float64
	add := func(j *model.Job) {
		if j.Task == t && !seen[j.Release] {
			seen[j.Release] = true
			out = append(out, j.Release)
		}
	}
	for _, j := range res.Finished {
		add(j)
	}
	for _, j := range res.Missed {
		add(j)
	}
	for _, sample := range res.Log {
		if sample.Job != nil {
			add(sample.Job)
		}
	}
	return out
}
