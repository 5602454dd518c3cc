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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aliemreo/real-time-scheduling/src/config"
	"github.com/aliemreo/real-time-scheduling/src/parser"
	"github.com/aliemreo/real-time-scheduling/src/policy"
	"github.com/aliemreo/real-time-scheduling/src/report"
	"github.com/aliemreo/real-time-scheduling/src/runner"
	"github.com/aliemreo/real-time-scheduling/src/sim"
	"github.com/aliemreo/real-time-scheduling/src/stats"
)

// APIServer holds dependencies for the HTTP handlers
type APIServer struct {
	cfg   config.Config
	stats *runner.Stats
}

// StartAPIServer starts the HTTP server with graceful shutdown and OTel
func StartAPIServer(ctx context.Context, port string, cfg config.Config, st *runner.Stats) error {
	srv := &APIServer{
		cfg:   cfg,
		stats: st,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", srv.simulateHandler)
	mux.HandleFunc("/status", srv.statusHandler)
	mux.HandleFunc("/policies", srv.policiesHandler)

	// Wrap Mux with OTel Middleware
	// CRITICAL: We must use the returned handler from otelhttp.NewHandler
	otelHandler := otelhttp.NewHandler(mux, "rtsim-api-server")

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: otelHandler,
	}

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("API Server starting on :%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		fmt.Println("\nShutdown signal received, closing server...")

		// Gracefully shut down the HTTP server (max 10s timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		fmt.Println("Server exited cleanly")
	}

	return nil
}

// simulateHandler runs one simulation over the task file in the request
// body. Query parameters: algorithm, horizon, format=yaml.
func (s *APIServer) simulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST a task file body", http.StatusMethodNotAllowed)
		return
	}

	var ts *parser.TaskSet
	var err error
	if r.URL.Query().Get("format") == "yaml" {
		ts, err = parser.ParseYAML(r.Body)
	} else {
		ts, err = parser.Parse(r.Body)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("parse task file: %v", err), http.StatusBadRequest)
		return
	}

	pol, err := s.resolvePolicy(r.URL.Query().Get("algorithm"), ts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	horizon := s.cfg.Horizon
	if ts.Horizon > 0 {
		horizon = ts.Horizon
	}
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		horizon, err = strconv.ParseFloat(raw, 64)
		if err != nil || horizon <= 0 {
			http.Error(w, fmt.Sprintf("invalid horizon %q", raw), http.StatusBadRequest)
			return
		}
	}

	driver, err := sim.NewDriver(ts.Catalog, pol, sim.Config{Horizon: horizon, Tick: s.cfg.Tick})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := driver.Run()
	sum := stats.Summarize(res)
	util := stats.Analyze(ts.Catalog)
	s.stats.Update(0, 1, 0, uint64(res.Released), uint64(len(res.Finished)), uint64(len(res.Missed)), "")

	doc := report.NewDocument(uuid.New().String(), res, sum, util)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// resolvePolicy mirrors the batch runner's precedence, but an API run is a
// single simulation, so a file without a server line defaults to EDF.
func (s *APIServer) resolvePolicy(algorithm string, ts *parser.TaskSet) (policy.Policy, error) {
	if algorithm != "" {
		return policy.New(algorithm)
	}
	if ts.Server != nil {
		return policy.NewServer(*ts.Server)
	}
	return policy.New("EDF")
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats.Snapshot())
}

func (s *APIServer) policiesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{
		"algorithms": policy.Names(),
		"servers":    {policy.ServerBackground.String(), policy.ServerPolling.String(), policy.ServerDeferrable.String()},
	})
}
