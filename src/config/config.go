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

// Package config resolves runtime defaults from a .env file and the
// RTSIM_* environment variables. CLI flags override everything here.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aliemreo/real-time-scheduling/src/logging"
)

type Config struct {
	Horizon float64 // RTSIM_HORIZON, default 100
	Tick    float64 // RTSIM_TICK, default 1
	APIPort string  // RTSIM_API_PORT, default 8080
	Workers int     // RTSIM_WORKERS, batch parallelism, default 1
}

// Load reads .env when present and resolves the environment. A missing
// .env is fine; a simulator must run without one.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logging.Log(fmt.Sprintf("No .env file loaded: %v", err), slog.LevelDebug)
	}

	cfg := Config{
		Horizon: envFloat("RTSIM_HORIZON", 100),
		Tick:    envFloat("RTSIM_TICK", 1),
		APIPort: os.Getenv("RTSIM_API_PORT"),
		Workers: envInt("RTSIM_WORKERS", 1),
	}
	if cfg.APIPort == "" {
		cfg.APIPort = "8080"
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logging.Log(fmt.Sprintf("Warning: invalid %s=%q, using %g", key, raw, fallback), slog.LevelWarn)
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logging.Log(fmt.Sprintf("Warning: invalid %s=%q, using %d", key, raw, fallback), slog.LevelWarn)
		return fallback
	}
	return v
}
