package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

// writeError maps service errors onto HTTP statuses. Anything unrecognized is
// reported as a 500 without leaking the cause.
func writeError(c echo.Context, err error) error {
	var fieldErr *domain.ValidationError
	switch {
	case errors.As(err, &fieldErr):
		return c.JSON(http.StatusUnprocessableEntity, util.FieldError("validation failed", fieldErr.Field, fieldErr.Reason))
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, service.ErrReviewerConflict):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, domain.ErrListingNotFound):
		return c.JSON(http.StatusNotFound, util.Error("listing not found"))
	case errors.Is(err, domain.ErrComparisonLimitReached):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(err.Error()))
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrWizardAlreadySubmitted),
		errors.Is(err, domain.ErrDuplicateSlug):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, domain.ErrStore):
		c.Logger().Errorf("store failure: %v", err)
		return c.JSON(http.StatusServiceUnavailable, util.Error("listing store unavailable"))
	default:
		c.Logger().Errorf("unhandled error: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

var errInvalidListingID = errors.New("id must be a valid UUID")
