package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/memory"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

type testServer struct {
	e         *echo.Echo
	tokens    *util.JWTManager
	listings  *memory.ListingRepo
	moderator uuid.UUID
}

func newTestServer(t *testing.T, seed ...domain.Listing) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	moderator := uuid.New()

	listingRepo := memory.NewListingRepo(seed...)
	eventRepo := memory.NewModerationEventRepo()
	identity := memory.NewIdentity(moderator)

	orchestrator := service.NewQueryOrchestrator(listingRepo, service.NewFacetCompiler(20), service.QueryOrchestratorConfig{Logger: logger})
	t.Cleanup(orchestrator.Close)
	catalog := service.NewCatalogService(orchestrator, listingRepo, memory.NewProfileRepo(), logger)
	bookmarks := service.NewBookmarkService(memory.NewBookmarkRepo(), listingRepo, logger)
	moderation := service.NewModerationService(listingRepo, eventRepo, identity, service.ModerationConfig{ForbidSelfApproval: true, Logger: logger})

	tokens := util.NewJWTManager("test-secret", time.Hour)
	auth := NewAuthenticator(tokens, identity)

	e := NewRouter([]string{"*"}, logger)
	RegisterListings(e, auth, catalog, bookmarks)
	RegisterBookmarks(e, auth, bookmarks)
	RegisterModeration(e, auth, moderation)
	RegisterSubmissions(e, auth, func(flow service.SubmissionFlow) (*service.SubmissionWizard, error) {
		return service.NewSubmissionWizard(flow, moderation, service.WizardOptions{Logger: logger})
	})
	return &testServer{e: e, tokens: tokens, listings: listingRepo, moderator: moderator}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := s.tokens.Generate(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, target, token, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec.Code, decoded
}

func publicListing(title string, income float64) domain.Listing {
	return domain.Listing{
		ID:         uuid.New(),
		Kind:       domain.ListingKindIdea,
		Title:      title,
		Slug:       strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		CategoryID: "food",
		RiskLevel:  domain.RiskLow,
		AuthorID:   uuid.New(),
		IsApproved: true,
		CreatedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Idea:       &domain.IdeaDetails{MonthlyIncomeMin: &income, EffortLevel: domain.EffortActive},
	}
}

func TestBrowseListings(t *testing.T) {
	hidden := publicListing("Hidden Draft", 1)
	hidden.IsApproved = false
	srv := newTestServer(t, publicListing("Tiffin Service", 20000), publicListing("Cloud Kitchen", 50000), hidden)

	status, body := srv.do(t, http.MethodGet, "/api/v1/listings?sort=income&kind=all", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	items := body["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 public listings, got %d", len(items))
	}
	if first := items[0].(map[string]any)["title"]; first != "Cloud Kitchen" {
		t.Fatalf("expected highest income first, got %v", first)
	}
	if body["personalized"] != false {
		t.Fatalf("anonymous browse must not be personalized")
	}

	status, body = srv.do(t, http.MethodGet, "/api/v1/listings?query=tiffin", "", "")
	if status != http.StatusOK || len(body["items"].([]any)) != 1 {
		t.Fatalf("search: %d %v", status, body)
	}

	status, _ = srv.do(t, http.MethodGet, "/api/v1/listings?kind=loan", "", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", status)
	}
}

func TestGetListingBySlug(t *testing.T) {
	listing := publicListing("Tea Stall", 8000)
	srv := newTestServer(t, listing)

	status, body := srv.do(t, http.MethodGet, "/api/v1/listings/tea-stall", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if _, ok := body["saved"]; ok {
		t.Fatalf("anonymous callers get no saved flag")
	}

	status, _ = srv.do(t, http.MethodGet, "/api/v1/listings/nope", "", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestCompareListings(t *testing.T) {
	a, b := publicListing("Alpha", 1), publicListing("Beta", 2)
	srv := newTestServer(t, a, b)

	status, body := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/listings/compare?ids=%s,%s", a.ID, b.ID), "", "")
	if status != http.StatusOK || len(body["items"].([]any)) != 2 {
		t.Fatalf("compare: %d %v", status, body)
	}

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		ids = append(ids, uuid.NewString())
	}
	status, _ = srv.do(t, http.MethodGet, "/api/v1/listings/compare?ids="+url.QueryEscape(strings.Join(ids, ",")), "", "")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 past the comparison limit, got %d", status)
	}

	status, _ = srv.do(t, http.MethodGet, "/api/v1/listings/compare?ids=bogus", "", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", status)
	}
}

func TestToggleBookmark(t *testing.T) {
	listing := publicListing("Laundry Pickup", 15000)
	srv := newTestServer(t, listing)
	target := fmt.Sprintf("/api/v1/users/me/bookmarks/%s/toggle", listing.ID)

	status, _ := srv.do(t, http.MethodPost, target, "", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", status)
	}

	token := srv.token(t, uuid.New())
	status, body := srv.do(t, http.MethodPost, target, token, "")
	if status != http.StatusOK || body["state"] != string(domain.BookmarkSaved) {
		t.Fatalf("first toggle: %d %v", status, body)
	}

	status, body = srv.do(t, http.MethodGet, "/api/v1/users/me/bookmarks/ids", token, "")
	if status != http.StatusOK || len(body["ids"].([]any)) != 1 {
		t.Fatalf("ids: %d %v", status, body)
	}

	status, body = srv.do(t, http.MethodGet, "/api/v1/listings/laundry-pickup", token, "")
	if status != http.StatusOK || body["saved"] != true {
		t.Fatalf("detail should report saved: %d %v", status, body)
	}

	status, body = srv.do(t, http.MethodPost, target, token, "")
	if status != http.StatusOK || body["state"] != string(domain.BookmarkUnsaved) {
		t.Fatalf("second toggle: %d %v", status, body)
	}

	status, _ = srv.do(t, http.MethodPost, "/api/v1/users/me/bookmarks/not-a-uuid/toggle", token, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

const ideaSubmission = `{
	"kind": "idea",
	"draft": {
		"title": "Mobile Car Wash",
		"category_id": "services",
		"short_description": "Doorstep washing for apartment complexes",
		"risk_level": "low",
		"effort_level": "active",
		"investment_min": "150000",
		"monthly_income_min": "40000",
		"skills": "operations, marketing"
	}
}`

func TestSubmissionAndModerationFlow(t *testing.T) {
	srv := newTestServer(t)
	author := uuid.New()
	authorToken := srv.token(t, author)
	moderatorToken := srv.token(t, srv.moderator)

	status, body := srv.do(t, http.MethodPost, "/api/v1/submissions/validate", authorToken, `{"kind":"idea","step":0,"draft":{"title":"x"}}`)
	if status != http.StatusUnprocessableEntity || body["field"] == nil {
		t.Fatalf("validate should block on the first bad field: %d %v", status, body)
	}

	status, body = srv.do(t, http.MethodPost, "/api/v1/submissions", authorToken, ideaSubmission)
	if status != http.StatusCreated {
		t.Fatalf("submit: %d %v", status, body)
	}
	if body["state"] != string(domain.ModerationStatePending) {
		t.Fatalf("expected pending, got %v", body["state"])
	}
	listingID := body["listing"].(map[string]any)["id"].(string)

	status, body = srv.do(t, http.MethodGet, "/api/v1/listings", "", "")
	if status != http.StatusOK || len(body["items"].([]any)) != 0 {
		t.Fatalf("pending listing must stay hidden: %d %v", status, body)
	}

	status, _ = srv.do(t, http.MethodPost, "/api/v1/moderation/listings/"+listingID+"/approve", authorToken, "")
	if status != http.StatusForbidden {
		t.Fatalf("authors are not moderators, got %d", status)
	}

	status, body = srv.do(t, http.MethodPost, "/api/v1/moderation/listings/"+listingID+"/approve", moderatorToken, "")
	if status != http.StatusOK || body["state"] != string(domain.ModerationStateApproved) {
		t.Fatalf("approve: %d %v", status, body)
	}

	status, _ = srv.do(t, http.MethodPost, "/api/v1/moderation/listings/"+listingID+"/approve", moderatorToken, "")
	if status != http.StatusConflict {
		t.Fatalf("approving twice must conflict, got %d", status)
	}

	status, body = srv.do(t, http.MethodGet, "/api/v1/listings", "", "")
	if status != http.StatusOK || len(body["items"].([]any)) != 1 {
		t.Fatalf("approved listing must be public: %d %v", status, body)
	}

	status, body = srv.do(t, http.MethodGet, "/api/v1/manage/listings/"+listingID+"/history", authorToken, "")
	if status != http.StatusOK || len(body["events"].([]any)) != 2 {
		t.Fatalf("history: %d %v", status, body)
	}

	status, _ = srv.do(t, http.MethodPatch, "/api/v1/manage/listings/"+listingID, srv.token(t, uuid.New()), `{"title":"Hijacked"}`)
	if status != http.StatusForbidden {
		t.Fatalf("strangers cannot edit, got %d", status)
	}

	status, body = srv.do(t, http.MethodDelete, "/api/v1/manage/listings/"+listingID, authorToken, "")
	if status != http.StatusOK || body["state"] != string(domain.ModerationStateDeleted) {
		t.Fatalf("delete: %d %v", status, body)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: "title", Reason: "is required"}, http.StatusUnprocessableEntity},
		{domain.ErrAuthenticationRequired, http.StatusUnauthorized},
		{service.ErrReviewerConflict, http.StatusForbidden},
		{fmt.Errorf("load: %w", domain.ErrListingNotFound), http.StatusNotFound},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.NewStoreError("find", errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("surprise"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if err := writeError(c, tc.err); err != nil {
				t.Fatalf("writeError: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestParseFacetSelection(t *testing.T) {
	e := echo.New()
	parse := func(query string) (domain.FacetSelection, error) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+query, nil), httptest.NewRecorder())
		return parseFacetSelection(c)
	}

	sel, err := parse("query=+tea+&kind=Franchise&min_income=100&personalize=true&limit=5&offset=10&sort=popular")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sel.Query != "tea" || sel.Kind != domain.ListingKindFranchise || *sel.MinIncome != 100 || !sel.Personalize {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if sel.Limit != 5 || sel.Offset != 10 || sel.Sort != domain.ListingSortPopular {
		t.Fatalf("unexpected paging %+v", sel)
	}

	for _, bad := range []string{"min_income=-1", "max_investment=abc", "personalize=maybe", "min_investment=10&max_investment=5"} {
		if _, err := parse(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSanitizeBody(t *testing.T) {
	summary := sanitizeBody([]byte(`{"title":"ok","password":"hunter2","nested":{"token":"abc"}}`), echo.MIMEApplicationJSON)
	raw, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, "hunter2") || strings.Contains(out, "abc") {
		t.Fatalf("secrets leaked: %s", out)
	}
	if !strings.Contains(out, "ok") {
		t.Fatalf("non-sensitive fields should survive: %s", out)
	}
}
