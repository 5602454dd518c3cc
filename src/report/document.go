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
	"encoding/json"
	"io"

	"github.com/aliemreo/real-time-scheduling/src/sim"
	"github.com/aliemreo/real-time-scheduling/src/stats"
)

// Document is the JSON result shape shared by the --json flag and the
// /simulate endpoint.
type Document struct {
	RunID       string            `json:"run_id"`
	Policy      string            `json:"policy"`
	Horizon     float64           `json:"horizon"`
	Tick        float64           `json:"tick"`
	Schedule    []string          `json:"schedule"` // per-tick task label or "IDLE"
	Summary     stats.Summary     `json:"summary"`
	Utilization stats.Utilization `json:"utilization"`
}

func NewDocument(runID string, res *sim.Result, sum stats.Summary, util stats.Utilization) Document {
	schedule := make([]string, len(res.Log))
	for i, sample := range res.Log {
		if sample.Job == nil {
			schedule[i] = "IDLE"
		} else {
			schedule[i] = sample.Job.Task.Label()
		}
	}
	return Document{
		RunID:       runID,
		Policy:      res.Policy,
		Horizon:     res.Horizon,
		Tick:        res.Tick,
		Schedule:    schedule,
		Summary:     sum,
		Utilization: util,
	}
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
