package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

type BookmarkHandler struct {
	bookmarks *service.BookmarkService
}

func RegisterBookmarks(e *echo.Echo, auth *Authenticator, bookmarks *service.BookmarkService) {
	handler := &BookmarkHandler{bookmarks: bookmarks}

	protected := e.Group("/api/v1/users/me/bookmarks", auth.RequireAuth())
	protected.GET("", handler.listBookmarks)
	protected.GET("/ids", handler.listBookmarkIDs)
	protected.POST("/:listing_id/toggle", handler.toggleBookmark)
}

func (h *BookmarkHandler) toggleBookmark(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	listingID, err := uuid.Parse(strings.TrimSpace(c.Param("listing_id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("listing_id must be a valid UUID"))
	}

	state, err := h.bookmarks.Toggle(c.Request().Context(), userID, listingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"listing_id": listingID,
		"state":      state,
	})
}

func (h *BookmarkHandler) listBookmarks(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	limit, offset := parsePagination(c, 20, 0)

	items, err := h.bookmarks.ListSavedListings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Page("items", items, limit, offset))
}

func (h *BookmarkHandler) listBookmarkIDs(c echo.Context) error {
	userID, _ := CurrentUserID(c)
	saved, err := h.bookmarks.Saved(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("ids", saved.IDs()))
}
