package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aliemreo/real-time-scheduling/src/logging"
	"github.com/aliemreo/real-time-scheduling/src/parser"
	"github.com/aliemreo/real-time-scheduling/src/policy"
	"github.com/aliemreo/real-time-scheduling/src/report"
	"github.com/aliemreo/real-time-scheduling/src/sim"
	"github.com/aliemreo/real-time-scheduling/src/stats"
)

// Options configures a batch run over one or more task files.
type Options struct {
	Algorithm  string // explicit algorithm; empty resolves per file
	Horizon    float64
	HorizonSet bool // true when the horizon came from a flag, beating file-level horizons
	Tick       float64
	Mode       report.Mode
	JSON       bool
	Workers    int // files processed in parallel; each run stays single-threaded
	Out        io.Writer
}

// Process parses and simulates every file. A parse failure logs an error
// and moves on to the next file; the returned error reports how many files
// failed. Each file's report is rendered into its own buffer so parallel
// runs never interleave output.
func Process(ctx context.Context, files []string, opts Options, st *Stats) error {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	buffers := make([]*bytes.Buffer, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.Workers)
	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			buf := &bytes.Buffer{}
			buffers[i] = buf
			errs[i] = processFile(ctx, file, opts, st, buf)
		}(i, file)
	}
	wg.Wait()

	failures := 0
	for i := range files {
		if buffers[i] != nil {
			if _, err := io.Copy(opts.Out, buffers[i]); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
		if errs[i] != nil {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

func processFile(ctx context.Context, file string, opts Options, st *Stats, out io.Writer) error {
	_, span := logging.StartSpan(ctx, "process-file")
	defer span.End()

	runID := uuid.New().String()
	logging.Log(fmt.Sprintf("Processing %s (run %s)", file, runID), slog.LevelInfo)
	st.Update(1, 0, 0, 0, 0, 0, file)

	ts, err := parser.ParseFile(file)
	if err != nil {
		logging.Log(fmt.Sprintf("Failed to parse %s: %v", file, err), slog.LevelError)
		st.Update(0, 0, 1, 0, 0, 0, "")
		return err
	}
	for _, warning := range parser.Validate(ts) {
		logging.Log(fmt.Sprintf("%s: %s", file, warning), slog.LevelWarn)
	}

	policies, err := resolvePolicies(opts.Algorithm, ts)
	if err != nil {
		logging.Log(fmt.Sprintf("Bad configuration in %s: %v", file, err), slog.LevelError)
		st.Update(0, 0, 1, 0, 0, 0, "")
		return err
	}

	horizon := opts.Horizon
	if ts.Horizon > 0 && !opts.HorizonSet {
		horizon = ts.Horizon
	}

	if !opts.JSON {
		fmt.Fprintf(out, "\n========== Processing file: %s ==========\n", file)
	}

	for _, pol := range policies {
		driver, err := sim.NewDriver(ts.Catalog, pol, sim.Config{Horizon: horizon, Tick: opts.Tick})
		if err != nil {
			return err
		}
		res := driver.Run()
		sum := stats.Summarize(res)
		util := stats.Analyze(ts.Catalog)

		if opts.JSON {
			if err := report.WriteJSON(out, report.NewDocument(runID, res, sum, util)); err != nil {
				return err
			}
		} else {
			report.Render(out, ts, res, sum, util, opts.Mode)
		}
		st.Update(0, 1, 0, uint64(res.Released), uint64(len(res.Finished)), uint64(len(res.Missed)), "")
	}
	st.Update(0, 0, 0, 0, 0, 0, "")
	return nil
}

// resolvePolicies picks what to run for one file: the explicit algorithm
// when given, the configured server when the file defines one, and
// otherwise the RM/DM/EDF/LLF battery.
func resolvePolicies(algorithm string, ts *parser.TaskSet) ([]policy.Policy, error) {
	if algorithm != "" {
		pol, err := policy.New(algorithm)
		if err != nil {
			return nil, err
		}
		return []policy.Policy{pol}, nil
	}
	if ts.Server != nil {
		pol, err := policy.NewServer(*ts.Server)
		if err != nil {
			return nil, err
		}
		return []policy.Policy{pol}, nil
	}
	var policies []policy.Policy
	for _, name := range []string{"RM", "DM", "EDF", "LLF"} {
		pol, err := policy.New(name)
		if err != nil {
			return nil, err
		}
		policies = append(policies, pol)
	}
	return policies, nil
}
