package assessment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/healthrisk/internal/platform/auth"
	"github.com/ehr/healthrisk/internal/platform/scoring"
	"github.com/ehr/healthrisk/pkg/pagination"
)

// Handler provides HTTP handlers for assessments.
type Handler struct {
	svc *Service
}

// NewHandler creates a new assessment handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the assessment routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/modules", h.ListModules)

	g := api.Group("", auth.RequireRole("patient", "clinician"))
	g.POST("/assessments", h.AssessBatch)
	g.POST("/assessments/:module", h.Assess)
	g.GET("/assessments", h.ListAssessments)
	g.GET("/assessments/:id", h.GetAssessment)
}

// ModuleInfo describes one module for clients building input forms.
type ModuleInfo struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Scale    scoring.Scale  `json:"scale"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	Bands    []scoring.Band `json:"bands"`
	Schema   scoring.Schema `json:"schema"`
	SubTypes []string       `json:"sub_types,omitempty"`
}

func (h *Handler) ListModules(c echo.Context) error {
	var out []ModuleInfo
	for _, m := range h.svc.Registry().All() {
		info := ModuleInfo{
			Type:   m.Type,
			Title:  m.Title,
			Scale:  m.Scale,
			Max:    m.Ceiling(),
			Bands:  m.Classifier.Bands(),
			Schema: m.Schema,
		}
		for _, st := range m.SubTypes {
			info.SubTypes = append(info.SubTypes, st.Name)
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

type assessResponse struct {
	*Outcome
	Summary Summary `json:"summary"`
}

func (h *Handler) Assess(c echo.Context) error {
	module := c.Param("module")
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	out, err := h.svc.Assess(c.Request().Context(), uid, module, raw)
	if err != nil {
		return toHTTPError(err)
	}
	status := http.StatusCreated
	if out.RecordID == nil {
		status = http.StatusOK
	}
	return c.JSON(status, assessResponse{Outcome: out, Summary: Summarize(out.Result)})
}

type batchRequest struct {
	Inputs map[string]map[string]interface{} `json:"inputs"`
}

func (h *Handler) AssessBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Inputs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "inputs is required")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	outs, err := h.svc.AssessMany(c.Request().Context(), uid, req.Inputs)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]assessResponse, len(outs))
	for i, o := range outs {
		resp[i] = assessResponse{Outcome: o, Summary: Summarize(o.Result)}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListAssessments(c echo.Context) error {
	pg := pagination.FromContext(c)
	uid := auth.UserIDFromContext(c.Request().Context())
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user identity required")
	}
	items, total, err := h.svc.ListHistory(c.Request().Context(), uid, c.QueryParam("module"), pg.Limit, pg.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	resp := pagination.NewResponse(items, total, pg.Limit, pg.Offset).
		WithLinks(c.Request().URL.Path, c.QueryParams())
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetAssessment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	ctx := c.Request().Context()
	if rec.UserID != auth.UserIDFromContext(ctx) && !auth.HasRole(ctx, "admin") {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func toHTTPError(err error) error {
	switch {
	case scoring.IsValidation(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnknownModule):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	case scoring.IsInvariantViolation(err):
		return echo.NewHTTPError(http.StatusInternalServerError, "internal scoring error")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
