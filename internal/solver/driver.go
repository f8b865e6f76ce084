// Package solver configures and drives the CP-SAT backend: it runs a
// fully built model under a wall-clock budget, extracts the terminal
// status, and (for staged lexicographic objectives) re-solves once per
// tier with the previous tier's best value locked in.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/sat"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/degreepath/scheduler/internal/constraint"
	"github.com/degreepath/scheduler/internal/modelbuilder"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// Status is the engine's terminal solve status (spec.md §6).
type Status string

const (
	StatusOptimal     Status = "OPTIMAL"
	StatusFeasible    Status = "FEASIBLE"
	StatusInfeasible  Status = "INFEASIBLE"
	StatusUnknown     Status = "UNKNOWN"
)

// Config configures one solve() call.
type Config struct {
	TimeLimit time.Duration
	Workers   int
	Seed      int64
	UseStaged bool
}

// Result carries the terminal status, the raw solver response (when a
// solution exists), and per-tier objective values. RequestID correlates
// this attempt across log lines and caller-facing error messages.
type Result struct {
	RequestID  string
	Status     Status
	Response   *cmpb.CpSolverResponse
	TierScores map[constraint.Tier]int64
	FailedTier constraint.Tier
	WallClock  time.Duration
}

// Driver runs CP-SAT solves against a built Model.
type Driver struct {
	cfg    Config
	logger *zap.Logger
}

// NewDriver constructs a Driver.
func NewDriver(cfg Config, logger *zap.Logger) *Driver {
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = 30 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Driver{cfg: cfg, logger: logger}
}

func (d *Driver) params() *sppb.SatParameters {
	p := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(d.cfg.TimeLimit.Seconds()),
		NumSearchWorkers: proto.Int32(int32(d.cfg.Workers)),
	}
	if d.cfg.Seed != 0 {
		p.RandomSeed = proto.Int32(int32(d.cfg.Seed))
	}
	return p
}

func (d *Driver) solveProto(m *cmpb.CpModelProto) (*cmpb.CpSolverResponse, error) {
	resp, err := cpmodel.SolveCpModelWithSatParameters(m, d.params())
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrSolverInternal, fmt.Sprintf("solver backend failure: %v", err))
	}
	return resp, nil
}

func mapStatus(s cmpb.CpSolverStatus) Status {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return StatusInfeasible
	default:
		return StatusUnknown
	}
}

// Solve runs the configured solve strategy (single-pass big-M or staged
// lexicographic) against the built model, honoring ctx cancellation by
// clamping the remaining time budget.
func (d *Driver) Solve(ctx context.Context, model *modelbuilder.Model) (*Result, error) {
	requestID := uuid.NewString()
	start := time.Now()
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < d.cfg.TimeLimit {
			d.cfg.TimeLimit = remaining
		}
	}
	model.ApplyHints()

	var result *Result
	var err error
	if d.cfg.UseStaged {
		result, err = d.solveStaged(model)
	} else {
		result, err = d.solveBigM(model)
	}
	if result != nil {
		result.RequestID = requestID
		result.WallClock = time.Since(start)
	}
	if d.logger != nil {
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Duration("wall_clock", time.Since(start)),
			zap.Bool("staged", d.cfg.UseStaged),
		}
		if result != nil {
			fields = append(fields, zap.String("status", string(result.Status)))
		}
		if err != nil {
			d.logger.Warn("solve attempt did not reach a usable plan", append(fields, zap.Error(err))...)
		} else {
			d.logger.Info("solve attempt completed", fields...)
		}
	}
	return result, err
}

func (d *Driver) solveBigM(model *modelbuilder.Model) (*Result, error) {
	model.SetBigMObjective()
	proto, err := model.Finalize()
	if err != nil {
		return nil, err
	}
	resp, err := d.solveProto(proto)
	if err != nil {
		return nil, err
	}
	status := mapStatus(resp.GetStatus())
	result := &Result{Status: status, Response: resp, TierScores: map[constraint.Tier]int64{}}
	if status != StatusOptimal && status != StatusFeasible {
		return result, d.terminalError(status, "")
	}
	for _, tier := range model.Obj.Order() {
		result.TierScores[tier] = tierScore(resp, model, tier)
	}
	return result, nil
}

// tierScore sums the coefficients of every term whose variable is true in
// the solved response, giving the tier's raw (unweighted) objective value
// independent of the big-M weighting used to compose the solve objective.
func tierScore(resp *cmpb.CpSolverResponse, model *modelbuilder.Model, tier constraint.Tier) int64 {
	var total int64
	for _, t := range model.Obj.Terms(tier) {
		if cpmodel.SolutionBooleanValue(resp, t.Var) {
			total += t.Coeff
		}
	}
	return total
}

// solveStaged maximizes each tier in priority order, locking in its best
// value as a hard floor before moving to the next tier, per §4.4 mode 2.
func (d *Driver) solveStaged(model *modelbuilder.Model) (*Result, error) {
	order := model.Obj.Order()
	result := &Result{TierScores: map[constraint.Tier]int64{}}

	var lastResp *cmpb.CpSolverResponse
	for _, tier := range order {
		expr := model.SetTierObjective(tier)
		proto, err := model.Finalize()
		if err != nil {
			return nil, err
		}
		resp, err := d.solveProto(proto)
		if err != nil {
			return nil, err
		}
		status := mapStatus(resp.GetStatus())
		if status != StatusOptimal && status != StatusFeasible {
			result.Status = status
			result.FailedTier = tier
			return result, d.terminalError(status, tier)
		}
		value := resp.GetObjectiveValue()
		model.LockTierFloor(expr, int64(value))
		result.TierScores[tier] = int64(value)
		lastResp = resp
		result.Status = status
	}
	result.Response = lastResp
	return result, nil
}

func (d *Driver) terminalError(status Status, tier constraint.Tier) error {
	switch status {
	case StatusInfeasible:
		msg := "no feasible plan satisfies the hard constraints"
		if tier != "" {
			msg = fmt.Sprintf("tier %q has no feasible solution", tier)
		}
		return appErrors.Clone(appErrors.ErrInfeasible, msg)
	case StatusUnknown:
		return appErrors.Clone(appErrors.ErrTimeout, "solver exceeded its time budget with no feasible solution")
	default:
		return appErrors.Clone(appErrors.ErrSolverInternal, fmt.Sprintf("unexpected solver status %s", status))
	}
}
