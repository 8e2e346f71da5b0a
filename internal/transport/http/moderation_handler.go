package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

type ModerationHandler struct {
	moderation *service.ModerationService
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func RegisterModeration(e *echo.Echo, auth *Authenticator, moderation *service.ModerationService) {
	handler := &ModerationHandler{moderation: moderation}

	owned := e.Group("/api/v1/manage/listings", auth.RequireAuth())
	owned.GET("/:id", handler.manage)
	owned.PATCH("/:id", handler.update)
	owned.DELETE("/:id", handler.softDelete)
	owned.GET("/:id/history", handler.history)

	moderator := e.Group("/api/v1/moderation/listings", auth.RequireAuth(), auth.RequireModerator())
	moderator.POST("/:id/approve", handler.approve)
	moderator.POST("/:id/reject", handler.reject)
	moderator.POST("/:id/feature", handler.feature)
	moderator.POST("/:id/unfeature", handler.unfeature)
	moderator.POST("/:id/ban", handler.ban)
}

func (h *ModerationHandler) manage(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	listingID, err := listingIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	listing, state, err := h.moderation.Manage(c.Request().Context(), userID, listingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"listing": listing, "state": state})
}

func (h *ModerationHandler) update(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	listingID, err := listingIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	var patch domain.ListingPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	listing, err := h.moderation.UpdateListing(c.Request().Context(), userID, listingID, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("listing", listing))
}

func (h *ModerationHandler) softDelete(c echo.Context) error {
	return h.transition(c, h.moderation.SoftDelete)
}

func (h *ModerationHandler) history(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	listingID, err := listingIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	limit, _ := parsePagination(c, 50, 0)
	events, err := h.moderation.History(c.Request().Context(), userID, listingID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("events", events))
}

func (h *ModerationHandler) approve(c echo.Context) error {
	return h.transition(c, h.moderation.Approve)
}

func (h *ModerationHandler) feature(c echo.Context) error {
	return h.transition(c, h.moderation.Feature)
}

func (h *ModerationHandler) unfeature(c echo.Context) error {
	return h.transition(c, h.moderation.Unfeature)
}

func (h *ModerationHandler) reject(c echo.Context) error {
	return h.transitionWithReason(c, h.moderation.Reject)
}

func (h *ModerationHandler) ban(c echo.Context) error {
	return h.transitionWithReason(c, h.moderation.Ban)
}

type transitionFunc func(ctx context.Context, actorID, listingID uuid.UUID) (*domain.Listing, error)

type reasonTransitionFunc func(ctx context.Context, actorID, listingID uuid.UUID, reason string) (*domain.Listing, error)

func (h *ModerationHandler) transition(c echo.Context, fn transitionFunc) error {
	userID, _ := CurrentUserID(c)
	listingID, err := listingIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	listing, err := fn(c.Request().Context(), userID, listingID)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondWithState(c, listing)
}

func (h *ModerationHandler) transitionWithReason(c echo.Context, fn reasonTransitionFunc) error {
	userID, _ := CurrentUserID(c)
	listingID, err := listingIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	var req reasonRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
		}
	}
	listing, err := fn(c.Request().Context(), userID, listingID, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondWithState(c, listing)
}

func (h *ModerationHandler) respondWithState(c echo.Context, listing *domain.Listing) error {
	body := util.Data("listing", listing)
	if state, err := h.moderation.State(c.Request().Context(), listing.ID); err == nil {
		body["state"] = state
	}
	return c.JSON(http.StatusOK, body)
}

func listingIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return uuid.Nil, errInvalidListingID
	}
	return id, nil
}
