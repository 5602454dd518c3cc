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
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// SimResult matches the Document shape returned by /simulate
type SimResult struct {
	RunID   string `json:"run_id"`
	Policy  string `json:"policy"`
	Summary struct {
		Total       int     `json:"total_jobs"`
		Completed   int     `json:"completed_jobs"`
		Missed      int     `json:"missed_deadlines"`
		SuccessRate float64 `json:"success_rate"`
		AvgResponse float64 `json:"avg_response_time"`
	} `json:"summary"`
}

// RunnerStatus matches the /status endpoint
type RunnerStatus struct {
	ID            string `json:"id"`
	RunsCompleted uint64 `json:"runs_completed"`
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func main() {
	suite := flag.String("suite", "", "Benchmark suite to run (feasible, overload, server, mixed)")
	apiHost := flag.String("api_host", "localhost", "Simulator API host")
	apiPort := flag.String("api_port", "8080", "Simulator API port")
	iterations := flag.Int("n", 200, "Number of simulation requests")
	algorithm := flag.String("algorithm", "", "Force a scheduling algorithm for every request")
	flag.Parse()

	if *suite == "" {
		fmt.Printf("%sPlease specify a suite using --suite=[feasible|overload|server|mixed]%s\n", colorRed, colorReset)
		os.Exit(1)
	}

	// API host/port overrides from .env, matching the simulator's config
	_ = godotenv.Load("../../.env")
	if v := os.Getenv("RTSIM_API_PORT"); v != "" && *apiPort == "8080" {
		*apiPort = v
	}

	scenarioFile := fmt.Sprintf("scenarios/%s.txt", *suite)
	content, err := os.ReadFile(scenarioFile)
	if err != nil {
		fmt.Printf("%sError reading scenario file %s: %v%s\n", colorRed, scenarioFile, err, colorReset)
		os.Exit(1)
	}

	fmt.Printf("\n%s%s %s RTSIM BENCHMARK %s %s%s\n", colorCyan, colorBold, ">>", "SUITE: "+*suite, "<<", colorReset)

	base := fmt.Sprintf("http://%s:%s", *apiHost, *apiPort)
	initial, err := getStatus(base)
	if err != nil {
		fmt.Printf("%s[ERR]%s Simulator API not reachable at %s: %v\n", colorRed, colorReset, base, err)
		os.Exit(1)
	}
	fmt.Printf("%s[OK]%s Connected to runner %s.\n\n", colorGreen, colorReset, initial.ID)

	target := base + "/simulate"
	if *algorithm != "" {
		target += "?algorithm=" + *algorithm
	}

	fmt.Printf("%s%-10s %-12s %-10s %-12s %-12s%s\n", colorGray+colorBold, "ELAPSED", "REQUESTS", "FAILED", "MISSES", "AVG LATENCY", colorReset)
	fmt.Println(colorGray + "------------------------------------------------------------" + colorReset)

	startTime := time.Now()
	var completed, failed, totalMisses int
	var totalLatency time.Duration

	for i := 0; i < *iterations; i++ {
		reqStart := time.Now()
		res, err := postSimulation(target, content)
		latency := time.Since(reqStart)

		if err != nil {
			failed++
		} else {
			completed++
			totalMisses += res.Summary.Missed
			totalLatency += latency
		}

		elapsed := time.Since(startTime).Round(time.Millisecond).String()
		avgLatency := time.Duration(0)
		if completed > 0 {
			avgLatency = totalLatency / time.Duration(completed)
		}
		statusColor := colorGreen
		if failed > 0 {
			statusColor = colorRed
		}
		fmt.Printf("\r%-10s %s%-12d%s %s%-10d%s %s%-12d%s %-12s",
			elapsed,
			colorGreen, completed, colorReset,
			statusColor, failed, colorReset,
			colorYellow, totalMisses, colorReset,
			avgLatency.Round(time.Microsecond).String(),
		)
	}

	fmt.Printf("\n%s------------------------------------------------------------%s\n", colorGray, colorReset)
	fmt.Printf("\n%s%s Benchmark Completed! %s%s\n", colorGreen, colorBold, "✓", colorReset)
	printReport(base, initial, completed, failed, totalMisses, totalLatency, time.Since(startTime))
}

func getStatus(base string) (RunnerStatus, error) {
	resp, err := http.Get(base + "/status")
	if err != nil {
		return RunnerStatus{}, err
	}
	defer resp.Body.Close()

	var status RunnerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return RunnerStatus{}, err
	}
	return status, nil
}

func postSimulation(target string, body []byte) (SimResult, error) {
	resp, err := http.Post(target, "text/plain", bytes.NewReader(body))
	if err != nil {
		return SimResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SimResult{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var res SimResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return SimResult{}, err
	}
	return res, nil
}

func printReport(base string, initial RunnerStatus, completed, failed, misses int, totalLatency, duration time.Duration) {
	total := completed + failed
	rps := float64(total) / duration.Seconds()

	successRate := 100.0
	if total > 0 {
		successRate = (float64(completed) / float64(total)) * 100
	}
	avgLatency := time.Duration(0)
	if completed > 0 {
		avgLatency = totalLatency / time.Duration(completed)
	}

	fmt.Println("\n" + colorCyan + colorBold + "┏━━━━━━━━━━━━━━━━━━━━━━ REPORT ━━━━━━━━━━━━━━━━━━━━━━┓" + colorReset)

	lineFmt := colorCyan + "┃" + colorReset + "  %-22s " + colorBold + "%-25s" + colorCyan + "┃" + colorReset

	fmt.Printf(lineFmt+"\n", "Duration:", duration.Truncate(time.Millisecond).String())
	fmt.Printf(lineFmt+"\n", "Total Requests:", fmt.Sprintf("%d", total))

	fmt.Printf(colorCyan+"┃"+"  %-22s "+colorGreen+colorBold+"%-25s"+colorCyan+"┃"+colorReset+"\n", "  - Completed:", fmt.Sprintf("%d", completed))

	failedColor := colorGreen
	if failed > 0 {
		failedColor = colorRed
	}
	fmt.Printf(colorCyan+"┃"+"  %-22s "+failedColor+colorBold+"%-25s"+colorCyan+"┃"+colorReset+"\n", "  - Failed:", fmt.Sprintf("%d", failed))

	fmt.Printf(lineFmt+"\n", "Success Rate:", fmt.Sprintf("%.2f%%", successRate))
	fmt.Printf(lineFmt+"\n", "Throughput:", fmt.Sprintf("%.2f req/sec", rps))
	fmt.Printf(lineFmt+"\n", "Avg Latency:", avgLatency.Round(time.Microsecond).String())
	fmt.Printf(lineFmt+"\n", "Deadline Misses:", fmt.Sprintf("%d per-run total", misses))

	if final, err := getStatus(base); err == nil {
		delta := final.RunsCompleted - initial.RunsCompleted
		fmt.Printf(lineFmt+"\n", "Runner Runs Delta:", fmt.Sprintf("%d", delta))
	}

	fmt.Println(colorCyan + colorBold + "┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛" + colorReset)
}
