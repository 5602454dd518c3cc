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
	"fmt"
	"strings"

	"github.com/aliemreo/real-time-scheduling/src/model"
)

// Policy selects the next job to run. SelectNext never mutates job state,
// returns nil exactly when ready is empty (or nothing is eligible), and
// otherwise returns a member of ready. Ties break toward the job
// encountered first in the input slice.
type Policy interface {
	Name() string
	SelectNext(ready []*model.Job, now float64) *model.Job
}

// Budgeted is the extended contract of the budget-governed aperiodic
// servers (Polling, Deferrable). Replenish fires at period boundaries
// before selection; Consume draws aperiodic execution from the budget and
// returns the amount actually granted.
type Budgeted interface {
	Policy
	Replenish(now float64)
	Consume(duration float64) float64
	RemainingBudget() float64
}

// BaseRule is the ordering a server applies to the periodic side of its
// partition.
type BaseRule int

const (
	BaseRM BaseRule = iota
	BaseEDF
)

func (r BaseRule) String() string {
	if r == BaseEDF {
		return "EDF"
	}
	return "RM"
}

func ParseBaseRule(s string) (BaseRule, error) {
	switch strings.ToUpper(s) {
	case "RM":
		return BaseRM, nil
	case "EDF":
		return BaseEDF, nil
	}
	return 0, fmt.Errorf("unknown base rule %q (want RM or EDF)", s)
}

type ServerKind int

const (
	ServerNone ServerKind = iota
	ServerBackground
	ServerPolling
	ServerDeferrable
)

func (k ServerKind) String() string {
	switch k {
	case ServerBackground:
		return "BACKGROUND"
	case ServerPolling:
		return "POLLER"
	case ServerDeferrable:
		return "DEFERRABLE"
	}
	return "NONE"
}

func ParseServerKind(s string) (ServerKind, error) {
	switch strings.ToUpper(s) {
	case "BACKGROUND":
		return ServerBackground, nil
	case "POLLER", "POLLING":
		return ServerPolling, nil
	// the legacy file format spells it with one R
	case "DEFERABLE", "DEFERRABLE":
		return ServerDeferrable, nil
	}
	return 0, fmt.Errorf("unknown server type %q (want POLLER, DEFERABLE or BACKGROUND)", s)
}

// ServerConfig is the parsed "S" descriptor of a task file.
type ServerConfig struct {
	Kind   ServerKind
	Budget float64
	Period float64
	Rule   BaseRule
}

// New resolves an algorithm name (with the common aliases) to a policy.
// Unknown names are a configuration error, surfaced before any run starts.
func New(name string) (Policy, error) {
	switch strings.ToUpper(name) {
	case "RM", "RATE_MONOTONIC":
		return RateMonotonic{}, nil
	case "DM", "DEADLINE_MONOTONIC":
		return DeadlineMonotonic{}, nil
	case "EDF", "EARLIEST_DEADLINE_FIRST":
		return EarliestDeadlineFirst{}, nil
	case "LLF", "LST", "LEAST_SLACK_TIME":
		return LeastLaxityFirst{}, nil
	case "FCFS", "FIFO":
		return FirstComeFirstServed{}, nil
	case "SJF", "SHORTEST_JOB_FIRST":
		return ShortestJobFirst{}, nil
	}
	return nil, fmt.Errorf("unknown scheduling algorithm %q", name)
}

// NewServer builds the policy for a server descriptor.
func NewServer(cfg ServerConfig) (Policy, error) {
	switch cfg.Kind {
	case ServerBackground:
		return &Background{Rule: cfg.Rule}, nil
	case ServerPolling:
		if cfg.Budget <= 0 || cfg.Period <= 0 {
			return nil, fmt.Errorf("polling server needs positive budget and period, got budget=%g period=%g", cfg.Budget, cfg.Period)
		}
		return &Polling{budget: cfg.Budget, period: cfg.Period, rule: cfg.Rule}, nil
	case ServerDeferrable:
		if cfg.Budget <= 0 || cfg.Period <= 0 {
			return nil, fmt.Errorf("deferrable server needs positive budget and period, got budget=%g period=%g", cfg.Budget, cfg.Period)
		}
		return &Deferrable{budget: cfg.Budget, period: cfg.Period, rule: cfg.Rule}, nil
	}
	return nil, fmt.Errorf("unknown server kind %d", cfg.Kind)
}

// Names lists the plain algorithm names the factory accepts.
func Names() []string {
	return []string{"RM", "DM", "EDF", "LLF", "FCFS", "SJF"}
}
