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

// Package parser reads task files into a catalog plus an optional server
// descriptor. Two formats are supported: the line-oriented text format
//
//	P [ri] ei pi [di]        periodic task
//	D ei pi di               dynamic (sporadic-with-period) task
//	A ri ei                  aperiodic task
//	S budget period TYPE RULE   aperiodic server (POLLER|DEFERABLE|BACKGROUND, RM|EDF)
//	# comment
//
// and a YAML scenario format selected by file extension.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aliemreo/real-time-scheduling/src/logging"
	"github.com/aliemreo/real-time-scheduling/src/model"
	"github.com/aliemreo/real-time-scheduling/src/policy"
)

// TaskSet is the parsed, already-validated input the simulation core
// consumes.
type TaskSet struct {
	Catalog *model.Catalog
	Server  *policy.ServerConfig // nil when no S line was present
	Horizon float64              // 0 when the input does not set one
}

// ParseError reports a malformed line with its line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseFile parses a task file, choosing the format by extension
// (.yaml/.yml for scenarios, anything else for the text format).
func ParseFile(path string) (*TaskSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open task file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		return Parse(f)
	}
}

// Parse reads the text format.
func Parse(r io.Reader) (*TaskSet, error) {
	ts := &TaskSet{Catalog: model.NewCatalog()}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch strings.ToUpper(fields[0]) {
		case "P":
			err = parsePeriodic(fields, ts.Catalog)
		case "D":
			err = parseDynamic(fields, ts.Catalog)
		case "A":
			err = parseAperiodic(fields, ts.Catalog)
		case "S":
			ts.Server, err = parseServer(fields)
		default:
			logging.Log(fmt.Sprintf("Warning: unknown line format, ignoring: %s", line), slog.LevelWarn)
			continue
		}
		if err != nil {
			return nil, &ParseError{Line: lineNum, Msg: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return ts, nil
}

// parsePeriodic handles P [ri] ei pi [di].
func parsePeriodic(fields []string, c *model.Catalog) error {
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return err
	}
	switch len(vals) {
	case 2: // P ei pi
		c.Add(model.Periodic, vals[0], vals[1], 0, 0)
	case 3: // P ri ei pi
		c.Add(model.Periodic, vals[1], vals[2], 0, vals[0])
	case 4: // P ri ei pi di
		c.Add(model.Periodic, vals[1], vals[2], vals[3], vals[0])
	default:
		return fmt.Errorf("invalid periodic task, expected 'P [ri] ei pi [di]'")
	}
	return nil
}

// parseDynamic handles D ei pi di. Dynamic tasks release from time 0.
func parseDynamic(fields []string, c *model.Catalog) error {
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return err
	}
	if len(vals) != 3 {
		return fmt.Errorf("invalid dynamic task, expected 'D ei pi di'")
	}
	c.Add(model.Dynamic, vals[0], vals[1], vals[2], 0)
	return nil
}

// parseAperiodic handles A ri ei.
func parseAperiodic(fields []string, c *model.Catalog) error {
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return err
	}
	if len(vals) != 2 {
		return fmt.Errorf("invalid aperiodic task, expected 'A ri ei'")
	}
	c.Add(model.Aperiodic, vals[1], 0, 0, vals[0])
	return nil
}

// parseServer handles S budget period TYPE RULE.
func parseServer(fields []string) (*policy.ServerConfig, error) {
	if len(fields) != 5 {
		return nil, fmt.Errorf("invalid server line, expected 'S budget period TYPE RULE'")
	}
	vals, err := parseFloats(fields[1:3])
	if err != nil {
		return nil, err
	}
	kind, err := policy.ParseServerKind(fields[3])
	if err != nil {
		return nil, err
	}
	rule, err := policy.ParseBaseRule(fields[4])
	if err != nil {
		return nil, err
	}
	return &policy.ServerConfig{Kind: kind, Budget: vals[0], Period: vals[1], Rule: rule}, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		vals[i] = v
	}
	return vals, nil
}

// Validate reports descriptor problems as warnings. Infeasible sets are not
// errors; they simulate and accumulate misses.
func Validate(ts *TaskSet) []string {
	var warnings []string
	for _, t := range ts.Catalog.Tasks() {
		if t.Exec <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: execution time must be positive", t.Label()))
		}
		if t.Release < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: release time cannot be negative", t.Label()))
		}
		if t.HasDeadline() {
			if t.Period <= 0 {
				warnings = append(warnings, fmt.Sprintf("%s: period must be positive", t.Label()))
			}
			if t.Deadline <= 0 {
				warnings = append(warnings, fmt.Sprintf("%s: deadline must be positive", t.Label()))
			}
		}
	}
	return warnings
}
