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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aliemreo/real-time-scheduling/src/config"
	"github.com/aliemreo/real-time-scheduling/src/generator"
	"github.com/aliemreo/real-time-scheduling/src/logging"
	"github.com/aliemreo/real-time-scheduling/src/report"
	"github.com/aliemreo/real-time-scheduling/src/runner"
)

func main() {
	// Load environment variables (.env optional) and resolve defaults
	cfg := config.Load()

	// Setup Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup OpenTelemetry
	otelShutdown, err := logging.SetupOTelSDK(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to setup OTel SDK: %v", err))
	}
	defer func() {
		// Ensure OTel flushes spans before exiting
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "OTel shutdown error: %v\n", err)
		}
	}()

	// Setup Simulator OpenTelemetry Metrics
	logging.InitializeFloatCounter("sim_runs_total", "Total number of simulation runs", "Run")
	logging.InitializeFloatCounter("sim_jobs_released", "Number of job instances released", "Job")
	logging.InitializeFloatCounter("sim_jobs_completed", "Number of job instances completed", "Job")
	logging.InitializeFloatCounter("sim_deadlines_missed", "Number of deadline misses", "Job")
	logging.InitializeFloatCounter("sim_parse_failures", "Number of task files that failed to parse", "File")

	// Generate Unique ID for this runner instance
	runnerStats := runner.NewStats(uuid.New().String())

	root := newRootCmd(cfg, runnerStats)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, st *runner.Stats) *cobra.Command {
	root := &cobra.Command{
		Use:          "rtsim",
		Short:        "rtsim — preemptive uniprocessor real-time scheduling simulator",
		Long:         "rtsim simulates RM, DM, EDF, LLF, FCFS and SJF scheduling plus background, polling and deferrable aperiodic servers over task files.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newSimCmd(cfg, st),
		newGenCmd(),
		newServeCmd(cfg, st),
	)
	return root
}

func newSimCmd(cfg config.Config, st *runner.Stats) *cobra.Command {
	var (
		algorithm string
		horizon   float64
		tick      float64
		detailed  bool
		verbose   bool
		jsonOut   bool
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "sim [task-file...]",
		Short: "Simulate task files (reads stdin when no file is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := report.Minimal
			if verbose {
				mode = report.Verbose
			} else if detailed {
				mode = report.Detailed
			}

			files := args
			if len(files) == 0 {
				tmp, err := stdinToTempFile(cmd.InOrStdin())
				if err != nil {
					return err
				}
				defer os.Remove(tmp)
				files = []string{tmp}
			}

			opts := runner.Options{
				Algorithm:  algorithm,
				Horizon:    horizon,
				HorizonSet: cmd.Flags().Changed("time"),
				Tick:       tick,
				Mode:       mode,
				JSON:       jsonOut,
				Workers:    workers,
				Out:        cmd.OutOrStdout(),
			}
			return runner.Process(cmd.Context(), files, opts, st)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Scheduling algorithm (RM, DM, EDF, LLF, FCFS, SJF); default is the file's server line, or the RM/DM/EDF/LLF battery")
	cmd.Flags().Float64VarP(&horizon, "time", "t", cfg.Horizon, "Simulation horizon")
	cmd.Flags().Float64VarP(&tick, "tick", "q", cfg.Tick, "Tick duration")
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "Detailed output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with execution timeline")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the JSON result document instead of the report")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "Files processed in parallel")
	return cmd
}

func newGenCmd() *cobra.Command {
	var (
		numTasks    int
		utilization float64
		seed        int64
		output      string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic periodic task file",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := generator.New(generator.Options{
				NumTasks:    numTasks,
				Utilization: utilization,
				Seed:        seed,
			})

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			if _, err := gen.WriteTo(out); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Generated %d tasks to %s\n", numTasks, output)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&numTasks, "num-tasks", "n", 5, "Number of tasks")
	cmd.Flags().Float64VarP(&utilization, "utilization", "u", 0.7, "Target total utilization")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (same seed, same set)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	return cmd
}

func newServeCmd(cfg config.Config, st *runner.Stats) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return StartAPIServer(cmd.Context(), port, cfg, st)
		},
	}
	cmd.Flags().StringVar(&port, "port", cfg.APIPort, "Listen port")
	return cmd
}

// stdinToTempFile spools stdin so the batch runner can treat it like any
// other input file.
func stdinToTempFile(in io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "rtsim-stdin-*.txt")
	if err != nil {
		return "", fmt.Errorf("spool stdin: %w", err)
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool stdin: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
