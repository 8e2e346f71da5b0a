package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ListingKind string

const (
	ListingKindIdea      ListingKind = "idea"
	ListingKindFranchise ListingKind = "franchise"
)

func (k ListingKind) Valid() bool {
	return k == ListingKindIdea || k == ListingKindFranchise
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

type EffortLevel string

const (
	EffortPassive     EffortLevel = "passive"
	EffortSemiPassive EffortLevel = "semi-passive"
	EffortActive      EffortLevel = "active"
)

func (e EffortLevel) Valid() bool {
	switch e {
	case EffortPassive, EffortSemiPassive, EffortActive:
		return true
	}
	return false
}

// Listing is the catalog envelope shared by both kinds. Exactly one of Idea
// or Franchise is set and it must agree with Kind.
type Listing struct {
	ID               uuid.UUID         `json:"id"`
	Kind             ListingKind       `json:"kind"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	CategoryID       string            `json:"category_id"`
	InvestmentMin    *float64          `json:"investment_min,omitempty"`
	InvestmentMax    *float64          `json:"investment_max,omitempty"`
	RiskLevel        RiskLevel         `json:"risk_level"`
	ShortDescription string            `json:"short_description"`
	FullDescription  string            `json:"full_description,omitempty"`
	RealityCheck     string            `json:"reality_check,omitempty"`
	Skills           []string          `json:"skills,omitempty"`
	Media            []string          `json:"media,omitempty"`
	AuthorID         uuid.UUID         `json:"author_id"`
	IsApproved       bool              `json:"is_approved"`
	IsFeatured       bool              `json:"is_featured"`
	DeletedAt        *time.Time        `json:"deleted_at,omitempty"`
	Popularity       int64             `json:"popularity"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Idea             *IdeaDetails      `json:"idea,omitempty"`
	Franchise        *FranchiseDetails `json:"franchise,omitempty"`
}

type IdeaDetails struct {
	MonthlyIncomeMin *float64    `json:"monthly_income_min,omitempty"`
	MonthlyIncomeMax *float64    `json:"monthly_income_max,omitempty"`
	EffortLevel      EffortLevel `json:"effort_level"`
}

type FranchiseDetails struct {
	BrandName    string      `json:"brand_name"`
	ROIMonthsMin *float64    `json:"roi_months_min,omitempty"`
	ROIMonthsMax *float64    `json:"roi_months_max,omitempty"`
	EffortLevel  EffortLevel `json:"effort_level"`
}

// IsPubliclyVisible reports whether the listing may be returned to callers
// that are neither its author nor a moderator.
func (l Listing) IsPubliclyVisible() bool {
	return l.IsApproved && l.DeletedAt == nil
}

func (l Listing) EffortLevel() EffortLevel {
	switch {
	case l.Idea != nil:
		return l.Idea.EffortLevel
	case l.Franchise != nil:
		return l.Franchise.EffortLevel
	}
	return ""
}

// MonthlyIncomeMin is only defined for ideas.
func (l Listing) MonthlyIncomeMin() *float64 {
	if l.Idea == nil {
		return nil
	}
	return l.Idea.MonthlyIncomeMin
}

func (l Listing) Validate() error {
	if !l.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "must be idea or franchise"}
	}
	if l.Kind == ListingKindIdea && (l.Idea == nil || l.Franchise != nil) {
		return &ValidationError{Field: "kind", Reason: "idea listings carry idea details only"}
	}
	if l.Kind == ListingKindFranchise && (l.Franchise == nil || l.Idea != nil) {
		return &ValidationError{Field: "kind", Reason: "franchise listings carry franchise details only"}
	}
	if strings.TrimSpace(l.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if l.RiskLevel != "" && !l.RiskLevel.Valid() {
		return &ValidationError{Field: "risk_level", Reason: "must be low, medium, or high"}
	}
	if effort := l.EffortLevel(); effort != "" && !effort.Valid() {
		return &ValidationError{Field: "effort_level", Reason: "must be passive, semi-passive, or active"}
	}
	if l.InvestmentMin != nil && l.InvestmentMax != nil && *l.InvestmentMin > *l.InvestmentMax {
		return &ValidationError{Field: "investment_max", Reason: "must not be less than investment_min"}
	}
	return nil
}

// ListingPatch is a partial update. Nil fields are left untouched; the slug
// is deliberately absent because it never changes after creation.
type ListingPatch struct {
	Title            *string      `json:"title,omitempty"`
	CategoryID       *string      `json:"category_id,omitempty"`
	InvestmentMin    *float64     `json:"investment_min,omitempty"`
	InvestmentMax    *float64     `json:"investment_max,omitempty"`
	RiskLevel        *RiskLevel   `json:"risk_level,omitempty"`
	ShortDescription *string      `json:"short_description,omitempty"`
	FullDescription  *string      `json:"full_description,omitempty"`
	RealityCheck     *string      `json:"reality_check,omitempty"`
	Skills           *[]string    `json:"skills,omitempty"`
	Media            *[]string    `json:"media,omitempty"`
	MonthlyIncomeMin *float64     `json:"monthly_income_min,omitempty"`
	MonthlyIncomeMax *float64     `json:"monthly_income_max,omitempty"`
	ROIMonthsMin     *float64     `json:"roi_months_min,omitempty"`
	ROIMonthsMax     *float64     `json:"roi_months_max,omitempty"`
	BrandName        *string      `json:"brand_name,omitempty"`
	EffortLevel      *EffortLevel `json:"effort_level,omitempty"`

	// Lifecycle flags are only set by the moderation service.
	IsApproved *bool `json:"-"`
	IsFeatured *bool `json:"-"`
}

func (p ListingPatch) IsEmpty() bool {
	return p == ListingPatch{}
}

// Apply returns a copy of l with the patch merged in.
func (p ListingPatch) Apply(l Listing) Listing {
	out := l.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.CategoryID != nil {
		out.CategoryID = strings.TrimSpace(*p.CategoryID)
	}
	if p.InvestmentMin != nil {
		out.InvestmentMin = copyFloat(p.InvestmentMin)
	}
	if p.InvestmentMax != nil {
		out.InvestmentMax = copyFloat(p.InvestmentMax)
	}
	if p.RiskLevel != nil {
		out.RiskLevel = *p.RiskLevel
	}
	if p.ShortDescription != nil {
		out.ShortDescription = strings.TrimSpace(*p.ShortDescription)
	}
	if p.FullDescription != nil {
		out.FullDescription = strings.TrimSpace(*p.FullDescription)
	}
	if p.RealityCheck != nil {
		out.RealityCheck = strings.TrimSpace(*p.RealityCheck)
	}
	if p.Skills != nil {
		out.Skills = append([]string(nil), (*p.Skills)...)
	}
	if p.Media != nil {
		out.Media = append([]string(nil), (*p.Media)...)
	}
	if p.IsApproved != nil {
		out.IsApproved = *p.IsApproved
	}
	if p.IsFeatured != nil {
		out.IsFeatured = *p.IsFeatured
	}
	if out.Idea != nil {
		if p.MonthlyIncomeMin != nil {
			out.Idea.MonthlyIncomeMin = copyFloat(p.MonthlyIncomeMin)
		}
		if p.MonthlyIncomeMax != nil {
			out.Idea.MonthlyIncomeMax = copyFloat(p.MonthlyIncomeMax)
		}
		if p.EffortLevel != nil {
			out.Idea.EffortLevel = *p.EffortLevel
		}
	}
	if out.Franchise != nil {
		if p.ROIMonthsMin != nil {
			out.Franchise.ROIMonthsMin = copyFloat(p.ROIMonthsMin)
		}
		if p.ROIMonthsMax != nil {
			out.Franchise.ROIMonthsMax = copyFloat(p.ROIMonthsMax)
		}
		if p.BrandName != nil {
			out.Franchise.BrandName = strings.TrimSpace(*p.BrandName)
		}
		if p.EffortLevel != nil {
			out.Franchise.EffortLevel = *p.EffortLevel
		}
	}
	return out
}

// Clone deep-copies pointer and slice fields.
func (l Listing) Clone() Listing {
	out := l
	out.InvestmentMin = copyFloat(l.InvestmentMin)
	out.InvestmentMax = copyFloat(l.InvestmentMax)
	if l.Skills != nil {
		out.Skills = append([]string(nil), l.Skills...)
	}
	if l.Media != nil {
		out.Media = append([]string(nil), l.Media...)
	}
	if l.DeletedAt != nil {
		ts := *l.DeletedAt
		out.DeletedAt = &ts
	}
	if l.Idea != nil {
		idea := *l.Idea
		idea.MonthlyIncomeMin = copyFloat(l.Idea.MonthlyIncomeMin)
		idea.MonthlyIncomeMax = copyFloat(l.Idea.MonthlyIncomeMax)
		out.Idea = &idea
	}
	if l.Franchise != nil {
		fr := *l.Franchise
		fr.ROIMonthsMin = copyFloat(l.Franchise.ROIMonthsMin)
		fr.ROIMonthsMax = copyFloat(l.Franchise.ROIMonthsMax)
		out.Franchise = &fr
	}
	return out
}

// ScoredListing pairs a listing with display-only personalization output.
type ScoredListing struct {
	Listing
	GoalProgress *int `json:"goal_progress,omitempty"`
}

func copyFloat(src *float64) *float64 {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}
