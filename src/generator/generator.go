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

// Package generator synthesizes periodic task sets targeting a utilization,
// emitting the text task-file format.
package generator

import (
	"fmt"
	"io"
	"math"
	"math/rand"
)

// periods are drawn from a harmonic-friendly set so generated sets are not
// hopeless by construction.
var periods = []float64{5, 10, 20, 25, 40, 50, 100}

type Options struct {
	NumTasks    int     // default 5
	Utilization float64 // target total utilization, default 0.7
	Seed        int64   // deterministic output for a fixed seed
}

type task struct {
	exec   float64
	period float64
}

// Generator holds one synthesized set. The same Options always produce the
// same set.
type Generator struct {
	opts  Options
	tasks []task
}

func New(opts Options) *Generator {
	if opts.NumTasks <= 0 {
		opts.NumTasks = 5
	}
	if opts.Utilization <= 0 {
		opts.Utilization = 0.7
	}
	g := &Generator{opts: opts}
	g.generate()
	return g
}

func (g *Generator) generate() {
	rng := rand.New(rand.NewSource(g.opts.Seed))
	share := g.opts.Utilization / float64(g.opts.NumTasks)

	for i := 0; i < g.opts.NumTasks; i++ {
		period := periods[rng.Intn(len(periods))]
		exec := share * period
		// round to one decimal, but keep at least a sliver of work
		exec = math.Max(0.1, math.Round(exec*10)/10)
		g.tasks = append(g.tasks, task{exec: exec, period: period})
	}
}

// TotalUtilization is the utilization of the generated set, which tracks
// the target up to rounding.
func (g *Generator) TotalUtilization() float64 {
	total := 0.0
	for _, t := range g.tasks {
		total += t.exec / t.period
	}
	return total
}

// WriteTo emits the set in the text task-file format with a comment header.
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	var written int64
	count := func(n int, err error) error {
		written += int64(n)
		return err
	}

	if err := count(fmt.Fprintf(w, "# generated task set: %d tasks, target utilization %.2f, seed %d\n",
		g.opts.NumTasks, g.opts.Utilization, g.opts.Seed)); err != nil {
		return written, err
	}
	for _, t := range g.tasks {
		if err := count(fmt.Fprintf(w, "P %g %g\n", t.exec, t.period)); err != nil {
			return written, err
		}
	}
	return written, nil
}
