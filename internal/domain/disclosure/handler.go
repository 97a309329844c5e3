package disclosure

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rotisserie/eris"

	"github.com/ehr/healthrisk/internal/domain/assessment"
	"github.com/ehr/healthrisk/internal/domain/readiness"
	"github.com/ehr/healthrisk/internal/platform/auth"
	"github.com/ehr/healthrisk/internal/platform/clock"
	"github.com/ehr/healthrisk/internal/platform/scoring"
)

// Handler provides HTTP handlers for readiness sessions and disclosure.
type Handler struct {
	sessions   *Manager
	assess     *assessment.Service
	sched      clock.Scheduler
	relaxation time.Duration
}

// NewHandler creates a new disclosure handler. Guided relaxation exercises
// wait on sched for the given duration.
func NewHandler(sessions *Manager, assess *assessment.Service, sched clock.Scheduler, relaxation time.Duration) *Handler {
	return &Handler{sessions: sessions, assess: assess, sched: sched, relaxation: relaxation}
}

// RegisterRoutes registers readiness and session routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("patient", "clinician"))
	g.POST("/readiness/assess", h.AssessReadiness)

	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:id", h.GetSession)
	g.DELETE("/sessions/:id", h.DeleteSession)
	g.POST("/sessions/:id/events", h.ApplyEvent)
	g.POST("/sessions/:id/disclosure", h.StartDisclosure)
	g.POST("/sessions/:id/disclosure/advance", h.AdvanceDisclosure)
}

type readinessResponse struct {
	readiness.EmotionalState
	Evaluation readiness.Evaluation `json:"evaluation"`
}

func (h *Handler) AssessReadiness(c echo.Context) error {
	var q readiness.Questionnaire
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	es, eval, err := readiness.AssessReadiness(q)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, readinessResponse{EmotionalState: es, Evaluation: eval})
}

func (h *Handler) CreateSession(c echo.Context) error {
	uid := auth.UserIDFromContext(c.Request().Context())
	return c.JSON(http.StatusCreated, h.sessions.Create(uid))
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.sessions.Get(id, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.sessions.Delete(id, auth.UserIDFromContext(c.Request().Context())); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// eventRequest is the wire form of a readiness event. Type selects which of
// the other fields is read.
type eventRequest struct {
	Type          string                      `json:"type"`
	Questionnaire *readiness.Questionnaire    `json:"questionnaire,omitempty"`
	Style         string                      `json:"style,omitempty"`
	Checklist     *readiness.SupportChecklist `json:"checklist,omitempty"`
	// Guided makes the server run the relaxation exercise before recording it.
	Guided bool `json:"guided,omitempty"`
}

func (h *Handler) ApplyEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var ev readiness.Event
	switch req.Type {
	case "anxiety_submitted":
		if req.Questionnaire == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "questionnaire is required")
		}
		ev = readiness.AnxietySubmitted{Questionnaire: *req.Questionnaire}
	case "style_chosen":
		ev = readiness.StyleChosen{Style: readiness.Style(req.Style)}
	case "relaxation_completed":
		ev = readiness.RelaxationCompleted{}
		if req.Guided {
			if ev, err = readiness.RunRelaxation(c.Request().Context(), h.sched, h.relaxation); err != nil {
				return echo.NewHTTPError(http.StatusRequestTimeout, "relaxation exercise interrupted")
			}
		}
	case "support_checked":
		if req.Checklist == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "checklist is required")
		}
		ev = readiness.SupportChecked{Checklist: *req.Checklist}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown event type")
	}

	v, err := h.sessions.Apply(id, auth.UserIDFromContext(c.Request().Context()), ev)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

type disclosureRequest struct {
	Module string                 `json:"module"`
	Input  map[string]interface{} `json:"input"`
}

type disclosureResponse struct {
	StartResult
	Session View `json:"session"`
}

func (h *Handler) StartDisclosure(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req disclosureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !assessment.IsValidModule(req.Module) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown assessment module")
	}

	ctx := c.Request().Context()
	uid := auth.UserIDFromContext(ctx)
	var outcome *assessment.Outcome
	compute := func(ctx context.Context) (*scoring.AssessmentResult, error) {
		out, err := h.assess.Assess(ctx, uid, req.Module, req.Input)
		if err != nil {
			return nil, err
		}
		outcome = out
		return out.Result, nil
	}

	v, res, err := h.sessions.StartDisclosure(ctx, id, uid, compute)
	if err != nil {
		return toHTTPError(err)
	}
	if res.NotMet != nil {
		return c.JSON(http.StatusOK, disclosureResponse{StartResult: res, Session: v})
	}
	h.sessions.RecordOutcome(id, outcome.RecordID, outcome.Warnings)
	v.RecordID = outcome.RecordID
	v.Warnings = outcome.Warnings
	return c.JSON(http.StatusCreated, disclosureResponse{StartResult: res, Session: v})
}

func (h *Handler) AdvanceDisclosure(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	step, err := h.sessions.Advance(id, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, step)
}

func toHTTPError(err error) error {
	switch {
	case scoring.IsValidation(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, eris.Cause(err).Error())
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, assessment.ErrUnknownModule):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotStarted), errors.Is(err, ErrAlreadyStarted), errors.Is(err, ErrCancelled):
		return echo.NewHTTPError(http.StatusConflict, eris.Cause(err).Error())
	case scoring.IsInvariantViolation(err):
		return echo.NewHTTPError(http.StatusInternalServerError, "internal scoring error")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
