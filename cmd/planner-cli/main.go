package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/degreepath/scheduler/internal/dto"
	"github.com/degreepath/scheduler/internal/service"
	"github.com/degreepath/scheduler/pkg/config"
	"github.com/degreepath/scheduler/pkg/logger"
)

// planner-cli reads a dto.SolveRequest as JSON from stdin and writes the
// resulting dto.SolveResponse as JSON to stdout. Exit code 0 means the
// solve found a feasible plan, 1 means the solver proved infeasibility (or
// otherwise failed to produce one), and 2 means the request itself was
// invalid JSON or failed validation.
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 2
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 2
	}
	defer logr.Sync() //nolint:errcheck

	var req dto.SolveRequest
	decoder := json.NewDecoder(os.Stdin)
	if err := decoder.Decode(&req); err != nil {
		fmt.Fprintf(os.Stderr, "invalid request JSON: %v\n", err)
		return 2
	}

	planSvc := service.NewPlanService(validator.New(), nil, nil, logr, service.PlanConfig{
		DefaultTimeLimit: cfg.Solver.DefaultTimeLimit,
		DefaultScale:     cfg.Solver.DefaultScale,
		DefaultWorkers:   cfg.Solver.DefaultWorkers,
		MaxVariables:     cfg.Solver.MaxVariables,
		MaxConstraints:   cfg.Solver.MaxConstraints,
	})

	resp, _, err := planSvc.Solve(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve failed: %v\n", err)
		return 2
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode response: %v\n", err)
		return 2
	}

	switch resp.Status {
	case "OPTIMAL", "FEASIBLE":
		return 0
	default:
		return 1
	}
}
