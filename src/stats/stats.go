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

// Package stats derives run statistics and schedulability bounds from the
// driver's terminal lists and the task catalog.
package stats

import (
	"math"

	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/sim"
)

// Summary aggregates one finished run. Response time is first execution
// minus release; completion time is finish minus release. Both cover
// finished jobs only.
type Summary struct {
	Policy        string  `json:"policy"`
	Total         int     `json:"total_jobs"`
	Completed     int     `json:"completed_jobs"`
	Missed        int     `json:"missed_deadlines"`
	SuccessRate   float64 `json:"success_rate"`
	AvgResponse   float64 `json:"avg_response_time"`
	MaxResponse   float64 `json:"max_response_time"`
	AvgCompletion float64 `json:"avg_completion_time"`
}

func Summarize(res *sim.Result) Summary {
	s := Summary{
		Policy:    res.Policy,
		Completed: len(res.Finished),
		Missed:    len(res.Missed),
	}
	s.Total = s.Completed + s.Missed
	if s.Total > 0 {
		s.SuccessRate = float64(s.Completed) / float64(s.Total) * 100
	}

	var sumResponse, sumCompletion float64
	for _, j := range res.Finished {
		response := j.StartTime - j.Release
		sumResponse += response
		if response > s.MaxResponse {
			s.MaxResponse = response
		}
		sumCompletion += j.CompletionTime - j.Release
	}
	if s.Completed > 0 {
		s.AvgResponse = sumResponse / float64(s.Completed)
		s.AvgCompletion = sumCompletion / float64(s.Completed)
	}
	return s
}

// Utilization is the demand analysis of a task set.
type Utilization struct {
	Periodic       float64 `json:"periodic_utilization"`
	Dynamic        float64 `json:"dynamic_utilization"`
	Total          float64 `json:"total_utilization"`
	RMSchedulable  bool    `json:"schedulable_rm"`
	EDFSchedulable bool    `json:"schedulable_edf"`
}

// Analyze sums Exec/Period per kind and tests the classic bounds: the
// Liu-Layland bound for RM over the periodic tasks, and total utilization
// <= 1 for EDF.
func Analyze(c *model.Catalog) Utilization {
	var u Utilization
	periodicCount := 0
	for _, t := range c.Tasks() {
		switch t.Kind {
		case model.Periodic:
			u.Periodic += t.Utilization()
			periodicCount++
		case model.Dynamic:
			u.Dynamic += t.Utilization()
		}
	}
	u.Total = u.Periodic + u.Dynamic
	u.RMSchedulable = u.Periodic <= RMBound(periodicCount)
	u.EDFSchedulable = u.Total <= 1.0
	return u
}

// RMBound is the Liu-Layland schedulability bound n(2^(1/n)-1).
func RMBound(n int) float64 {
	if n == 0 {
		return 1.0
	}
	return float64(n) * (math.Pow(2, 1/float64(n)) - 1)
}
