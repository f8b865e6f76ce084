package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/constraint"
	"github.com/degreepath/scheduler/internal/dto"
	"github.com/degreepath/scheduler/internal/modelbuilder"
	"github.com/degreepath/scheduler/internal/objective"
	"github.com/degreepath/scheduler/internal/plan"
	"github.com/degreepath/scheduler/internal/solver"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
	"github.com/degreepath/scheduler/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// PlanConfig governs solve behavior left unset on a particular request.
type PlanConfig struct {
	DefaultTimeLimit time.Duration
	DefaultScale     int64
	DefaultWorkers   int
	MaxVariables     int
	MaxConstraints   int
	ProposalCacheTTL time.Duration
}

// PlanService orchestrates a full solve: translate the wire request into
// the catalog index, parse constraints, build the CP-SAT model, drive the
// solver, and decode the response back onto the wire.
type PlanService struct {
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       PlanConfig
	csv       csvRenderer
	pdf       pdfRenderer
}

// NewPlanService constructs a PlanService.
func NewPlanService(validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg PlanConfig) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTimeLimit <= 0 {
		cfg.DefaultTimeLimit = 30 * time.Second
	}
	if cfg.DefaultScale <= 0 {
		cfg.DefaultScale = objective.DefaultScale
	}
	if cfg.DefaultWorkers <= 0 {
		cfg.DefaultWorkers = 4
	}
	if cfg.ProposalCacheTTL <= 0 {
		cfg.ProposalCacheTTL = 30 * time.Minute
	}
	return &PlanService{
		validator: validate,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Solve runs the full pipeline for one request and returns the wire
// response, along with whether the response came from the proposal cache
// rather than a fresh solve (spec.md's proposal caching).
func (s *PlanService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrInvalidInput, err.Error())
	}

	key := s.cacheKey(req)
	var cached dto.SolveResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	resp, err := s.solveFresh(ctx, req)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, key, resp, s.cfg.ProposalCacheTTL)
	return resp, false, nil
}

func (s *PlanService) solveFresh(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	ix, err := s.buildIndex(req)
	if err != nil {
		return nil, err
	}

	parsed, err := constraint.Parse(req.Constraints)
	if err != nil {
		return nil, err
	}

	completed := toCourseIDs(req.CompletedCourses)
	bookmarks := toCourseIDs(req.Bookmarks)
	universe := s.computeUniverse(ix, req, parsed, completed, bookmarks)

	scale := req.Scale
	if scale <= 0 {
		scale = s.cfg.DefaultScale
	}
	var order []constraint.Tier
	for _, t := range req.TierOrder {
		order = append(order, constraint.Tier(t))
	}
	obj := objective.NewManager(scale, order)

	maxLoad := req.NumCoursesPerSemester
	minLoad := req.MinCoursesPerSemester

	model, err := modelbuilder.NewBuilder(ix, universe, req.Semesters, completed, minLoad, maxLoad, obj,
		modelbuilder.Limits{MaxVariables: s.cfg.MaxVariables, MaxConstraints: s.cfg.MaxConstraints})
	if err != nil {
		return nil, err
	}

	for _, c := range parsed {
		if err := model.ApplyConstraint(c); err != nil {
			return nil, err
		}
	}
	model.SetBaselineObjective(bookmarks)
	model.BuildHints(bookmarks)

	driverCfg := solver.Config{
		TimeLimit: s.cfg.DefaultTimeLimit,
		Workers:   s.cfg.DefaultWorkers,
		Seed:      req.Seed,
		UseStaged: req.UseStagedLexicographic,
	}
	if req.TimeLimitSec > 0 {
		driverCfg.TimeLimit = time.Duration(req.TimeLimitSec * float64(time.Second))
	}
	if req.Workers > 0 {
		driverCfg.Workers = req.Workers
	}
	driver := solver.NewDriver(driverCfg, s.logger)

	start := time.Now()
	result, solveErr := driver.Solve(ctx, model)
	if s.metrics != nil {
		status := "ERROR"
		if result != nil {
			status = string(result.Status)
		}
		s.metrics.ObserveSolve(status, time.Since(start))
		s.metrics.ObserveModelSize(model.VariableCount(), model.ConstraintCount())
	}

	if solveErr != nil {
		return errorResponse(result, solveErr), nil
	}

	decoded := plan.Decode(model, result)
	return toSolveResponse(decoded), nil
}

func (s *PlanService) buildIndex(req dto.SolveRequest) (*catalog.Index, error) {
	relations := make([]catalog.RelationInput, 0, len(req.Relations))
	for _, r := range req.Relations {
		days := make([]catalog.Weekday, 0, len(r.Days))
		for _, d := range r.Days {
			wd, err := catalog.ParseWeekday(d)
			if err != nil {
				return nil, err
			}
			days = append(days, wd)
		}
		relations = append(relations, catalog.RelationInput{
			RID:          catalog.SectionID(r.RID),
			CourseID:     catalog.CourseID(r.ClassID),
			Semester:     r.Semester,
			Slot:         catalog.TimeSlot{Days: days, StartMinute: r.StartMinute, EndMinute: r.EndMinute},
			InstructorID: r.InstructorID,
			Rating:       r.Rating,
			Score:        r.Score,
		})
	}

	var conflicts []catalog.ConflictPair
	for _, p := range req.Conflicts {
		conflicts = append(conflicts, catalog.ConflictPair{A: catalog.SectionID(p[0]), B: catalog.SectionID(p[1])})
	}

	groups := make(map[string][]catalog.CourseID, len(req.Groups))
	for name, members := range req.Groups {
		groups[name] = toCourseIDs(members)
	}

	hubClasses := make(map[string][]catalog.CourseID, len(req.Hubs.ClassesByTag))
	for tag, members := range req.Hubs.ClassesByTag {
		hubClasses[tag] = toCourseIDs(members)
	}

	return catalog.Build(relations, conflicts, groups, req.Hubs.Requirements, hubClasses)
}

// computeUniverse gathers every course id that needs a decision variable:
// catalog courses, group and hub membership, completed/bookmarked courses,
// and anything named only inside a constraint payload.
func (s *PlanService) computeUniverse(ix *catalog.Index, req dto.SolveRequest, parsed []constraint.Constraint, completed, bookmarks []catalog.CourseID) []catalog.CourseID {
	var universe []catalog.CourseID
	universe = append(universe, ix.CourseIDs()...)
	for _, members := range req.Groups {
		universe = append(universe, toCourseIDs(members)...)
	}
	for _, members := range req.Hubs.ClassesByTag {
		universe = append(universe, toCourseIDs(members)...)
	}
	universe = append(universe, completed...)
	universe = append(universe, bookmarks...)
	universe = append(universe, constraint.ReferencedCourses(parsed)...)
	return universe
}

func toCourseIDs(ids []string) []catalog.CourseID {
	out := make([]catalog.CourseID, len(ids))
	for i, id := range ids {
		out[i] = catalog.CourseID(id)
	}
	return out
}

func toSolveResponse(p *plan.Plan) *dto.SolveResponse {
	resp := &dto.SolveResponse{
		Status:          string(p.Status),
		Plan:            make(map[string][]string, len(p.BySemester)),
		ObjectiveScores: make(map[string]int64, len(p.ObjectiveScores)),
		Scale:           p.Scale,
	}
	for s, courses := range p.BySemester {
		label := fmt.Sprintf("%d", s)
		list := make([]string, len(courses))
		for i, c := range courses {
			list[i] = string(c)
		}
		resp.Plan[label] = list
	}
	for tier, score := range p.ObjectiveScores {
		resp.ObjectiveScores[string(tier)] = score
	}
	for _, a := range p.Assignments {
		days := make([]string, len(a.Days))
		for i, d := range a.Days {
			days[i] = d.String()
		}
		resp.Assignments = append(resp.Assignments, dto.AssignmentOutput{
			CourseID:     string(a.CourseID),
			RID:          string(a.SectionID),
			Days:         days,
			StartMinute:  a.StartMinute,
			EndMinute:    a.EndMinute,
			InstructorID: a.InstructorID,
		})
	}
	return resp
}

func errorResponse(result *solver.Result, err error) *dto.SolveResponse {
	appErr := appErrors.FromError(err)
	status := "INFEASIBLE"
	if result != nil {
		status = string(result.Status)
	}
	resp := &dto.SolveResponse{
		Status: status,
		Error:  &dto.ErrorPayload{Code: appErr.Code, Message: appErr.Message},
	}
	if result != nil && result.FailedTier != "" {
		resp.Error.ConstraintID = string(result.FailedTier)
	}
	return resp
}

// planDataset flattens a solved plan's assignments into export's generic
// tabular shape: one row per scheduled section, ordered by semester then
// course id.
func planDataset(resp *dto.SolveResponse) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"semester", "course_id", "rid", "days", "start_minute", "end_minute", "instructor_id"},
	}
	semesterOf := make(map[string]string, len(resp.Assignments))
	for label, courses := range resp.Plan {
		for _, c := range courses {
			semesterOf[c] = label
		}
	}
	for _, a := range resp.Assignments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"semester":      semesterOf[a.CourseID],
			"course_id":     a.CourseID,
			"rid":           a.RID,
			"days":          strings.Join(a.Days, ""),
			"start_minute":  fmt.Sprintf("%d", a.StartMinute),
			"end_minute":    fmt.Sprintf("%d", a.EndMinute),
			"instructor_id": a.InstructorID,
		})
	}
	sort.SliceStable(dataset.Rows, func(i, j int) bool {
		si, _ := strconv.Atoi(dataset.Rows[i]["semester"])
		sj, _ := strconv.Atoi(dataset.Rows[j]["semester"])
		if si != sj {
			return si < sj
		}
		return dataset.Rows[i]["course_id"] < dataset.Rows[j]["course_id"]
	})
	return dataset
}

// ExportCSV renders a solved plan's assignments as CSV.
func (s *PlanService) ExportCSV(resp *dto.SolveResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("export: nil plan response")
	}
	return s.csv.Render(planDataset(resp))
}

// ExportPDF renders a solved plan's assignments as a tabular PDF report.
func (s *PlanService) ExportPDF(resp *dto.SolveResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("export: nil plan response")
	}
	return s.pdf.Render(planDataset(resp), "course schedule")
}

// cacheKey fingerprints a request by its canonical JSON encoding so an
// identical request (including constraint order) hits the cache.
func (s *PlanService) cacheKey(req dto.SolveRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return "plan:uncacheable"
	}
	sum := sha256.Sum256(payload)
	return "plan:" + hex.EncodeToString(sum[:])
}
