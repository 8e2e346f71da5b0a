package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

type ListingHandler struct {
	catalog   *service.CatalogService
	bookmarks *service.BookmarkService
}

func RegisterListings(e *echo.Echo, auth *Authenticator, catalog *service.CatalogService, bookmarks *service.BookmarkService) {
	handler := &ListingHandler{catalog: catalog, bookmarks: bookmarks}

	public := e.Group("/api/v1/listings", auth.OptionalAuth())
	public.GET("", handler.browse)
	public.GET("/compare", handler.compare)
	public.GET("/:slug", handler.getBySlug)
}

func (h *ListingHandler) browse(c echo.Context) error {
	sel, err := parseFacetSelection(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	userID, _ := CurrentUserID(c)

	result, err := h.catalog.Browse(c.Request().Context(), userID, sel)
	if err != nil {
		return writeError(c, err)
	}

	body := util.Page("items", result.Listings, result.Limit, result.Offset)
	body["personalized"] = result.Profile != nil
	if userID != uuid.Nil && h.bookmarks != nil {
		saved, err := h.bookmarks.Saved(c.Request().Context(), userID)
		if err == nil {
			ids := make([]uuid.UUID, 0, len(result.Listings))
			for _, l := range result.Listings {
				if saved.Has(l.ID) {
					ids = append(ids, l.ID)
				}
			}
			body["saved_ids"] = ids
		}
	}
	return c.JSON(http.StatusOK, body)
}

func (h *ListingHandler) getBySlug(c echo.Context) error {
	listing, err := h.catalog.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	body := util.Data("listing", listing)
	if userID, ok := CurrentUserID(c); ok && h.bookmarks != nil {
		if saved, err := h.bookmarks.IsSaved(c.Request().Context(), userID, listing.ID); err == nil {
			body["saved"] = saved
		}
	}
	return c.JSON(http.StatusOK, body)
}

func (h *ListingHandler) compare(c echo.Context) error {
	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	if len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, util.Error("ids is required"))
	}
	listings, err := h.catalog.Compare(c.Request().Context(), ids)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("items", listings))
}

func parseFacetSelection(c echo.Context) (domain.FacetSelection, error) {
	limit, offset := parsePagination(c, 0, 0)
	sel := domain.FacetSelection{
		Query:    strings.TrimSpace(c.QueryParam("query")),
		Kind:     domain.ListingKind(strings.ToLower(strings.TrimSpace(c.QueryParam("kind")))),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Risk:     strings.TrimSpace(c.QueryParam("risk")),
		Effort:   strings.TrimSpace(c.QueryParam("effort")),
		Sort:     service.ParseListingSort(c.QueryParam("sort")),
		Limit:    limit,
		Offset:   offset,
	}
	if domain.FacetActive(string(sel.Kind)) && !sel.Kind.Valid() {
		return sel, errors.New("kind must be idea, franchise, or all")
	}
	if raw := strings.TrimSpace(c.QueryParam("personalize")); raw != "" {
		personalize, err := strconv.ParseBool(raw)
		if err != nil {
			return sel, errors.New("personalize must be true or false")
		}
		sel.Personalize = personalize
	}

	var err error
	if sel.MinIncome, err = parseOptionalAmount(c, "min_income"); err != nil {
		return sel, err
	}
	if sel.MinInvestment, err = parseOptionalAmount(c, "min_investment"); err != nil {
		return sel, err
	}
	if sel.MaxInvestment, err = parseOptionalAmount(c, "max_investment"); err != nil {
		return sel, err
	}
	if sel.MinInvestment != nil && sel.MaxInvestment != nil && *sel.MinInvestment > *sel.MaxInvestment {
		return sel, errors.New("min_investment must not exceed max_investment")
	}
	return sel, nil
}

func parseOptionalAmount(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", name)
	}
	return &v, nil
}

func parseIDList(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid listing id", trimmed)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePagination(c echo.Context, defaultLimit, defaultOffset int) (int, int) {
	limit := defaultLimit
	offset := defaultOffset
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
