package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

// WizardFactory starts a fresh wizard for one request.
type WizardFactory func(flow service.SubmissionFlow) (*service.SubmissionWizard, error)

type SubmissionHandler struct {
	newWizard WizardFactory
}

type submissionRequest struct {
	Kind  string                  `json:"kind"`
	Step  *int                    `json:"step,omitempty"`
	Draft service.SubmissionDraft `json:"draft"`
}

func RegisterSubmissions(e *echo.Echo, auth *Authenticator, newWizard WizardFactory) {
	handler := &SubmissionHandler{newWizard: newWizard}

	protected := e.Group("/api/v1/submissions", auth.RequireAuth())
	protected.POST("", handler.submit)
	protected.POST("/validate", handler.validateStep)
}

// submit replays the whole draft through the wizard: each step must pass
// before the next is checked, and the last step commits.
func (h *SubmissionHandler) submit(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	var req submissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	wizard, err := h.start(req)
	if err != nil {
		return writeError(c, err)
	}

	for {
		result, err := wizard.Submit(c.Request().Context(), userID)
		if err != nil {
			var fieldErr *domain.ValidationError
			if errors.As(err, &fieldErr) {
				return c.JSON(http.StatusUnprocessableEntity, util.Envelope{
					"error":  "validation failed",
					"step":   wizard.StepName(),
					"field":  fieldErr.Field,
					"reason": fieldErr.Reason,
				})
			}
			return writeError(c, err)
		}
		if !result.Advanced {
			return c.JSON(http.StatusCreated, util.Envelope{
				"listing": result.Listing,
				"state":   domain.ModerationStatePending,
			})
		}
	}
}

// validateStep checks one step without committing anything.
func (h *SubmissionHandler) validateStep(c echo.Context) error {
	var req submissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	wizard, err := h.start(req)
	if err != nil {
		return writeError(c, err)
	}
	target := 0
	if req.Step != nil {
		target = *req.Step
	}
	if target < 0 || target >= len(wizard.Steps()) {
		return c.JSON(http.StatusBadRequest, util.Error("step out of range"))
	}
	for wizard.Step() < target {
		if err := wizard.Next(); err != nil {
			return writeError(c, err)
		}
	}
	if err := wizard.Validate(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"step":     wizard.StepName(),
		"steps":    wizard.Steps(),
		"terminal": wizard.IsTerminal(),
	})
}

func (h *SubmissionHandler) start(req submissionRequest) (*service.SubmissionWizard, error) {
	wizard, err := h.newWizard(service.SubmissionFlow(strings.ToLower(strings.TrimSpace(req.Kind))))
	if err != nil {
		return nil, err
	}
	draft := req.Draft
	if err := wizard.Update(func(d *service.SubmissionDraft) { *d = draft }); err != nil {
		return nil, err
	}
	return wizard, nil
}
