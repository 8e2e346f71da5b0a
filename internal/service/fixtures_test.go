package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

var fixtureEpoch = time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

func sptr(v string) *string { return &v }

type listingOpt func(*domain.Listing)

func approved() listingOpt { return func(l *domain.Listing) { l.IsApproved = true } }

func featured() listingOpt {
	return func(l *domain.Listing) {
		l.IsApproved = true
		l.IsFeatured = true
	}
}

func deleted() listingOpt {
	return func(l *domain.Listing) {
		ts := fixtureEpoch
		l.DeletedAt = &ts
	}
}

func authoredBy(id uuid.UUID) listingOpt { return func(l *domain.Listing) { l.AuthorID = id } }

func category(c string) listingOpt { return func(l *domain.Listing) { l.CategoryID = c } }

func risk(r domain.RiskLevel) listingOpt { return func(l *domain.Listing) { l.RiskLevel = r } }

func investment(min, max float64) listingOpt {
	return func(l *domain.Listing) {
		l.InvestmentMin = fptr(min)
		l.InvestmentMax = fptr(max)
	}
}

func income(min float64) listingOpt {
	return func(l *domain.Listing) {
		if l.Idea != nil {
			l.Idea.MonthlyIncomeMin = fptr(min)
		}
	}
}

func createdAt(offset time.Duration) listingOpt {
	return func(l *domain.Listing) { l.CreatedAt = fixtureEpoch.Add(offset) }
}

func popularity(n int64) listingOpt { return func(l *domain.Listing) { l.Popularity = n } }

func newIdea(title string, opts ...listingOpt) domain.Listing {
	l := domain.Listing{
		ID:         uuid.New(),
		Kind:       domain.ListingKindIdea,
		Title:      title,
		Slug:       Slugify(title) + "-" + uuid.NewString()[:4],
		CategoryID: "food",
		RiskLevel:  domain.RiskLow,
		AuthorID:   uuid.New(),
		CreatedAt:  fixtureEpoch,
		UpdatedAt:  fixtureEpoch,
		Idea:       &domain.IdeaDetails{EffortLevel: domain.EffortActive},
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func newFranchise(title string, opts ...listingOpt) domain.Listing {
	l := newIdea(title)
	l.Kind = domain.ListingKindFranchise
	l.Idea = nil
	l.Franchise = &domain.FranchiseDetails{BrandName: title, EffortLevel: domain.EffortSemiPassive}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func listingIDs(listings []domain.Listing) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func scoredIDs(listings []domain.ScoredListing) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func sameIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
