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

package parser

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/policy"
)

type yamlScenario struct {
	Tasks   []yamlTask  `yaml:"tasks"`
	Server  *yamlServer `yaml:"server"`
	Horizon float64     `yaml:"horizon"`
}

type yamlTask struct {
	Kind     string  `yaml:"kind"`
	Exec     float64 `yaml:"exec"`
	Period   float64 `yaml:"period"`
	Deadline float64 `yaml:"deadline"`
	Release  float64 `yaml:"release"`
}

type yamlServer struct {
	Kind   string  `yaml:"kind"`
	Budget float64 `yaml:"budget"`
	Period float64 `yaml:"period"`
	Rule   string  `yaml:"rule"`
}

// ParseYAML reads the scenario format. Defaulting rules match the text
// format: a missing deadline falls back to the period.
func ParseYAML(r io.Reader) (*TaskSet, error) {
	var scenario yamlScenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	ts := &TaskSet{Catalog: model.NewCatalog(), Horizon: scenario.Horizon}
	for i, yt := range scenario.Tasks {
		kind, err := parseKind(yt.Kind)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		ts.Catalog.Add(kind, yt.Exec, yt.Period, yt.Deadline, yt.Release)
	}

	if scenario.Server != nil {
		kind, err := policy.ParseServerKind(scenario.Server.Kind)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		rule := policy.BaseRM
		if scenario.Server.Rule != "" {
			rule, err = policy.ParseBaseRule(scenario.Server.Rule)
			if err != nil {
				return nil, fmt.Errorf("server: %w", err)
			}
		}
		ts.Server = &policy.ServerConfig{
			Kind:   kind,
			Budget: scenario.Server.Budget,
			Period: scenario.Server.Period,
			Rule:   rule,
		}
	}
	return ts, nil
}

func parseKind(s string) (model.TaskKind, error) {
	switch strings.ToUpper(s) {
	case "P", "PERIODIC":
		return model.Periodic, nil
	case "D", "DYNAMIC":
		return model.Dynamic, nil
	case "A", "APERIODIC":
		return model.Aperiodic, nil
	}
	return 0, fmt.Errorf("unknown task kind %q", s)
}
