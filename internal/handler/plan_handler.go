package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/degreepath/scheduler/internal/dto"
	"github.com/degreepath/scheduler/internal/middleware"
	"github.com/degreepath/scheduler/internal/service"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
	"github.com/degreepath/scheduler/pkg/response"
)

// catalogRepository abstracts term-scoped catalog ingestion for the
// solve-by-term endpoint.
type catalogRepository interface {
	Relations(ctx context.Context, termID string) ([]dto.RelationInput, error)
	Groups(ctx context.Context, termID string) (map[string][]string, error)
	Hubs(ctx context.Context, termID string) (dto.HubsInput, error)
}

// PlanHandler exposes the solve and export endpoints over the engine's
// single typed input/output contract.
type PlanHandler struct {
	plans   *service.PlanService
	catalog catalogRepository
}

// NewPlanHandler constructs a PlanHandler. catalog may be nil, in which case
// SolveByTerm is unavailable and callers must supply relations/groups/hubs
// directly in the request body.
func NewPlanHandler(plans *service.PlanService, catalog catalogRepository) *PlanHandler {
	return &PlanHandler{plans: plans, catalog: catalog}
}

// Solve runs a full solve for the posted request body.
func (h *PlanHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, hit, err := h.plans.Solve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, nil, withRequester(c, middleware.ExtractMeta(c)))
}

// Export solves the posted request and renders the resulting plan as CSV
// or PDF, selected by the "format" query parameter (csv, the default, or
// pdf).
func (h *PlanHandler) Export(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, _, err := h.plans.Solve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if resp.Error != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInfeasible, resp.Error.Message))
		return
	}

	format := c.DefaultQuery("format", "csv")
	var payload []byte
	var contentType, filename string
	switch format {
	case "csv":
		payload, err = h.plans.ExportCSV(resp)
		contentType, filename = "text/csv", "plan.csv"
	case "pdf":
		payload, err = h.plans.ExportPDF(resp)
		contentType, filename = "application/pdf", "plan.pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, contentType, payload)
}

// SolveByTerm fills relations, groups, and hub membership from the catalog
// database for the given term, layering the posted body's semesters,
// completed courses, bookmarks, constraints, and tuning knobs on top.
func (h *PlanHandler) SolveByTerm(c *gin.Context) {
	if h.catalog == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog ingestion is not configured"))
		return
	}
	termID := c.Param("term_id")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "term_id is required"))
		return
	}

	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, err.Error()))
		return
	}

	ctx := c.Request.Context()
	relations, err := h.catalog.Relations(ctx, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	groups, err := h.catalog.Groups(ctx, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	hubs, err := h.catalog.Hubs(ctx, termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Relations = relations
	req.Groups = groups
	req.Hubs = hubs

	resp, hit, err := h.plans.Solve(ctx, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, nil, withRequester(c, middleware.ExtractMeta(c)))
}

// withRequester annotates response metadata with the requesting user's id,
// when the JWT middleware attached claims to the context.
func withRequester(c *gin.Context, meta map[string]interface{}) map[string]interface{} {
	claims := claimsFromContext(c)
	if claims == nil {
		return meta
	}
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["requested_by"] = claims.UserID
	return meta
}
