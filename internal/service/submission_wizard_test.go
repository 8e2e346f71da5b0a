package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/memory"
)

type recordingSubmitter struct {
	mu       sync.Mutex
	calls    []domain.Listing
	failures []error
}

func (s *recordingSubmitter) Submit(ctx context.Context, authorID uuid.UUID, listing domain.Listing) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, listing)
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		if err != nil {
			return nil, err
		}
	}
	out := listing.Clone()
	out.ID = uuid.New()
	return &out, nil
}

func fixedSuffix(values ...string) SuffixGenerator {
	i := 0
	return func() (string, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

func ideaDraft() SubmissionDraft {
	return SubmissionDraft{
		Title:            "EV Fleet Charging",
		CategoryID:       "mobility",
		ShortDescription: "Overnight charging for delivery fleets",
		RiskLevel:        "Medium",
		EffortLevel:      "semi-passive",
		InvestmentMin:    "₹ 5,00,000",
		InvestmentMax:    "12,00,000",
		MonthlyIncomeMin: "60000",
		MonthlyIncomeMax: "1_20_000",
		Skills:           "ops, Sales, ops ,",
	}
}

func TestSubmissionWizard_IdeaFlow(t *testing.T) {
	ctx := context.Background()
	author := uuid.New()
	submitter := &recordingSubmitter{}
	w, err := NewSubmissionWizard(SubmissionFlowIdea, submitter, WizardOptions{Suffix: fixedSuffix("k3x9"), Now: func() time.Time { return fixtureEpoch }})
	if err != nil {
		t.Fatalf("NewSubmissionWizard: %v", err)
	}
	if got := w.Steps(); len(got) != 2 || got[0] != "basics" || got[1] != "economics" {
		t.Fatalf("unexpected steps %v", got)
	}

	draft := ideaDraft()
	if err := w.Update(func(d *SubmissionDraft) { *d = draft }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := w.Submit(ctx, author)
	if err != nil {
		t.Fatalf("Submit from first step: %v", err)
	}
	if !res.Advanced || res.Step != "economics" || len(submitter.calls) != 0 {
		t.Fatalf("first submit must only advance, got %+v", res)
	}

	res, err = w.Submit(ctx, author)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Advanced || res.Listing == nil {
		t.Fatalf("expected a committed listing, got %+v", res)
	}
	l := res.Listing
	if l.Slug != "ev-fleet-charging-k3x9" {
		t.Fatalf("unexpected slug %q", l.Slug)
	}
	if l.Kind != domain.ListingKindIdea || l.Idea == nil || l.Franchise != nil {
		t.Fatalf("expected idea details only")
	}
	if l.RiskLevel != domain.RiskMedium || l.Idea.EffortLevel != domain.EffortSemiPassive {
		t.Fatalf("levels not normalized: %s %s", l.RiskLevel, l.Idea.EffortLevel)
	}
	if *l.InvestmentMin != 500000 || *l.InvestmentMax != 1200000 || *l.Idea.MonthlyIncomeMax != 120000 {
		t.Fatalf("amounts not coerced: %v %v %v", *l.InvestmentMin, *l.InvestmentMax, *l.Idea.MonthlyIncomeMax)
	}
	if len(l.Skills) != 2 || l.Skills[0] != "ops" || l.Skills[1] != "Sales" {
		t.Fatalf("unexpected skills %v", l.Skills)
	}
	if l.AuthorID != author || l.IsApproved {
		t.Fatalf("listing must be pending and owned by the author")
	}

	if _, err := w.Submit(ctx, author); !errors.Is(err, domain.ErrWizardAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if len(submitter.calls) != 1 {
		t.Fatalf("expected a single commit, got %d", len(submitter.calls))
	}
}

func TestSubmissionWizard_ForwardValidation(t *testing.T) {
	ctx := context.Background()
	w, _ := NewSubmissionWizard(SubmissionFlowIdea, &recordingSubmitter{}, WizardOptions{Suffix: fixedSuffix("aaaa")})
	draft := ideaDraft()
	draft.Title = ""
	_ = w.Update(func(d *SubmissionDraft) { *d = draft })

	_, err := w.Submit(ctx, uuid.New())
	var fieldErr *domain.ValidationError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}
	if w.Step() != 0 {
		t.Fatalf("wizard must stay on the failing step")
	}
}

func TestSubmissionWizard_StepChecks(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*SubmissionDraft)
		field string
	}{
		{"bad amount", func(d *SubmissionDraft) { d.InvestmentMin = "lots" }, "investment_min"},
		{"negative amount", func(d *SubmissionDraft) { d.MonthlyIncomeMin = "-10" }, "monthly_income_min"},
		{"range inverted", func(d *SubmissionDraft) { d.InvestmentMax = "100" }, "investment_max"},
		{"income range inverted", func(d *SubmissionDraft) { d.MonthlyIncomeMax = "10" }, "monthly_income_max"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := NewSubmissionWizard(SubmissionFlowIdea, &recordingSubmitter{}, WizardOptions{})
			draft := ideaDraft()
			tc.edit(&draft)
			_ = w.Update(func(d *SubmissionDraft) { *d = draft })
			if err := w.Next(); err != nil {
				t.Fatalf("basics should pass: %v", err)
			}
			err := w.Validate()
			var fieldErr *domain.ValidationError
			if !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
				t.Fatalf("expected error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestSubmissionWizard_FranchiseFlow(t *testing.T) {
	ctx := context.Background()
	listings := memory.NewListingRepo()
	moderation := NewModerationService(listings, memory.NewModerationEventRepo(), memory.NewIdentity(), ModerationConfig{})
	w, err := NewSubmissionWizard(" Franchise ", moderation, WizardOptions{Suffix: fixedSuffix("b7q2")})
	if err != nil {
		t.Fatalf("NewSubmissionWizard: %v", err)
	}
	_ = w.Update(func(d *SubmissionDraft) {
		*d = SubmissionDraft{
			Title:            "Chai Point",
			BrandName:        "Chai Point",
			CategoryID:       "food",
			ShortDescription: "Tea kiosks",
			InvestmentMin:    "800000",
			ROIMonthsMin:     "18",
			ROIMonthsMax:     "24",
			RiskLevel:        "low",
			EffortLevel:      "active",
			Media:            []string{" https://cdn.example.com/a.jpg ", ""},
		}
	})

	author := uuid.New()
	var res SubmitResult
	for i := 0; i < 3; i++ {
		res, err = w.Submit(ctx, author)
		if err != nil {
			t.Fatalf("Submit step %d: %v", i, err)
		}
	}
	if res.Listing == nil || res.Listing.Franchise == nil || res.Listing.Idea != nil {
		t.Fatalf("expected a franchise listing")
	}
	if res.Listing.Franchise.BrandName != "Chai Point" || *res.Listing.Franchise.ROIMonthsMax != 24 {
		t.Fatalf("franchise details not carried")
	}
	if len(res.Listing.Media) != 1 || res.Listing.Media[0] != "https://cdn.example.com/a.jpg" {
		t.Fatalf("media not cleaned: %v", res.Listing.Media)
	}
	stored, err := listings.FindBySlug(ctx, "chai-point-b7q2")
	if err != nil || stored.IsApproved {
		t.Fatalf("expected a pending stored listing, got %v", err)
	}
}

func TestSubmissionWizard_RetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	author := uuid.New()

	t.Run("store failure reuses the built listing", func(t *testing.T) {
		submitter := &recordingSubmitter{failures: []error{domain.NewStoreError("insert listing", errors.New("down"))}}
		w, _ := NewSubmissionWizard(SubmissionFlowIdea, submitter, WizardOptions{Suffix: fixedSuffix("aaaa", "bbbb")})
		draft := ideaDraft()
		_ = w.Update(func(d *SubmissionDraft) { *d = draft })
		_ = w.Next()

		if _, err := w.Submit(ctx, author); !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected store error, got %v", err)
		}
		res, err := w.Submit(ctx, author)
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
		if res.Listing.Slug != "ev-fleet-charging-aaaa" {
			t.Fatalf("retry must reuse the slug, got %s", res.Listing.Slug)
		}
	})

	t.Run("duplicate slug draws a new suffix", func(t *testing.T) {
		submitter := &recordingSubmitter{failures: []error{domain.ErrDuplicateSlug}}
		w, _ := NewSubmissionWizard(SubmissionFlowIdea, submitter, WizardOptions{Suffix: fixedSuffix("aaaa", "bbbb")})
		draft := ideaDraft()
		_ = w.Update(func(d *SubmissionDraft) { *d = draft })
		_ = w.Next()

		if _, err := w.Submit(ctx, author); !errors.Is(err, domain.ErrDuplicateSlug) {
			t.Fatalf("expected duplicate slug, got %v", err)
		}
		res, err := w.Submit(ctx, author)
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
		if res.Listing.Slug != "ev-fleet-charging-bbbb" {
			t.Fatalf("expected a fresh suffix, got %s", res.Listing.Slug)
		}
	})
}

func TestSubmissionWizard_Navigation(t *testing.T) {
	if _, err := NewSubmissionWizard("bogus", &recordingSubmitter{}, WizardOptions{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown flow, got %v", err)
	}
	w, _ := NewSubmissionWizard(SubmissionFlowFranchise, &recordingSubmitter{}, WizardOptions{})
	if w.Back() {
		t.Fatalf("cannot go back from the first step")
	}
	if err := w.Next(); err == nil {
		t.Fatalf("empty draft must not advance")
	}
	if _, err := w.Submit(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("empty draft must not submit")
	}
}

var slugPattern = regexp.MustCompile(`^ev-fleet-charging-[a-z0-9]{4}$`)

func TestBuildSlug(t *testing.T) {
	for i := 0; i < 20; i++ {
		suffix, err := NanoSuffix()
		if err != nil {
			t.Fatalf("NanoSuffix: %v", err)
		}
		slug, err := BuildSlug("EV Fleet Charging", suffix)
		if err != nil {
			t.Fatalf("BuildSlug: %v", err)
		}
		if !slugPattern.MatchString(slug) {
			t.Fatalf("slug %q does not match %s", slug, slugPattern)
		}
	}

	cases := map[string]string{
		"  Café   Crème!! ":  "cafe-creme",
		"Ölçü & Ağırlık":     "olcu-agirlik",
		"Chai–Point":         "chai-point",
		"Tea☕Shop":           "tea-shop",
		"Straße · Øl":        "strasse-ol",
		"100% Organic Farms": "100-organic-farms",
		"---":                "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}

	if slug, _ := BuildSlug("日本", "ab12"); slug != "listing-ab12" {
		t.Fatalf("expected fallback slug, got %q", slug)
	}
	if _, err := BuildSlug("title", "TOO-LONG"); err == nil {
		t.Fatalf("expected invalid suffix error")
	}
}

func TestBuildListingIsPure(t *testing.T) {
	author := uuid.New()
	a, err := BuildListing(ideaDraft(), SubmissionFlowIdea, author, "zz99", fixtureEpoch)
	if err != nil {
		t.Fatalf("BuildListing: %v", err)
	}
	b, _ := BuildListing(ideaDraft(), SubmissionFlowIdea, author, "zz99", fixtureEpoch)
	if a.Slug != b.Slug || *a.InvestmentMin != *b.InvestmentMin || !a.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("same inputs must build the same listing")
	}
}
