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

package sim

import (
	"fmt"
	"math"

	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/policy"
)

const (
	DefaultHorizon = 100
	DefaultTick    = 1.0
)

// Config bounds one simulation run.
type Config struct {
	Horizon float64
	Tick    float64
}

func (c *Config) applyDefaults() error {
	if c.Horizon == 0 {
		c.Horizon = DefaultHorizon
	}
	if c.Tick == 0 {
		c.Tick = DefaultTick
	}
	if c.Horizon < 0 || c.Tick <= 0 {
		return fmt.Errorf("invalid simulation config: horizon=%g tick=%g", c.Horizon, c.Tick)
	}
	return nil
}

// Sample is one log entry: the job that held the processor at Time, or nil
// for an idle tick.
type Sample struct {
	Time float64
	Job  *model.Job
}

// Result is everything a run produces. Jobs still runnable at the horizon
// appear in neither Finished nor Missed.
type Result struct {
	Policy   string
	Horizon  float64
	Tick     float64
	Log      []Sample
	Finished []*model.Job
	Missed   []*model.Job
	Released int
}

// Driver owns all mutable state of one run: the clock, the runnable set and
// the terminal lists. One driver per run; independent runs may go in
// parallel, a single run never does.
type Driver struct {
	catalog *model.Catalog
	policy  policy.Policy
	cfg     Config
}

func NewDriver(catalog *model.Catalog, pol policy.Policy, cfg Config) (*Driver, error) {
	if pol == nil {
		return nil, fmt.Errorf("no scheduling policy configured")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &Driver{catalog: catalog, policy: pol, cfg: cfg}, nil
}

// Run advances the clock tick by tick until the horizon. Every tick applies
// the same fixed order: release, deadline sweep, budget replenishment,
// selection, execution, advance. That ordering is the sole source of
// determinism; identical inputs produce identical logs.
func (d *Driver) Run() *Result {
	res := &Result{
		Policy:  d.policy.Name(),
		Horizon: d.cfg.Horizon,
		Tick:    d.cfg.Tick,
	}
	budgeted, _ := d.policy.(policy.Budgeted)

	tasks := d.catalog.Tasks()
	aperiodicFired := make([]bool, len(tasks))
	var runnable []*model.Job
	var prev *model.Job

	for now := 0.0; now < d.cfg.Horizon; now += d.cfg.Tick {
		// Release new job instances.
		for i, t := range tasks {
			switch t.Kind {
			case model.Periodic, model.Dynamic:
				if t.Period > 0 && math.Mod(now, t.Period) < model.BoundaryTolerance && now >= t.Release {
					runnable = append(runnable, model.NewJob(t, now))
					res.Released++
				}
			case model.Aperiodic:
				if !aperiodicFired[i] && math.Abs(now-t.Release) < model.BoundaryTolerance {
					aperiodicFired[i] = true
					runnable = append(runnable, model.NewJob(t, now))
					res.Released++
				}
			}
		}

		// Sweep deadline misses. Completing exactly at the deadline is not
		// a miss; such jobs were retired on an earlier tick.
		kept := runnable[:0]
		for _, j := range runnable {
			if j.Task.HasDeadline() && j.AbsDeadline <= now && !j.Complete() {
				res.Missed = append(res.Missed, j)
				if prev == j {
					prev = nil
				}
				continue
			}
			kept = append(kept, j)
		}
		runnable = kept

		if budgeted != nil {
			budgeted.Replenish(now)
		}

		selected := d.policy.SelectNext(runnable, now)
		res.Log = append(res.Log, Sample{Time: now, Job: selected})

		if selected != nil {
			if !selected.Started {
				selected.Started = true
				selected.StartTime = now
			}
			if prev != nil && prev != selected && !prev.Complete() {
				prev.Preemptions++
			}

			// Aperiodic execution under a budgeted server draws from the
			// budget and may make zero progress in an exhausted window.
			// Everything else gets the full tick.
			grant := d.cfg.Tick
			if budgeted != nil && selected.Task.Kind == model.Aperiodic {
				grant = budgeted.Consume(d.cfg.Tick)
			}
			applied := selected.Execute(grant)

			if selected.Complete() {
				selected.CompletionTime = now + applied
				runnable = removeJob(runnable, selected)
				res.Finished = append(res.Finished, selected)
				prev = nil
			} else {
				prev = selected
			}
		} else {
			prev = nil
		}
	}
	return res
}

func removeJob(jobs []*model.Job, target *model.Job) []*model.Job {
	for i, j := range jobs {
		if j == target {
			return append(jobs[:i], jobs[i+1:]...)
		}
	}
	return jobs
}
