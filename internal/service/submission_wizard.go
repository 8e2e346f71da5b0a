package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/metrics"
)

type SubmissionFlow string

const (
	SubmissionFlowIdea      SubmissionFlow = "idea"
	SubmissionFlowFranchise SubmissionFlow = "franchise"
)

// SubmissionDraft holds raw form input. Numbers stay as text until the
// commit transform coerces them.
type SubmissionDraft struct {
	Title            string   `json:"title"`
	BrandName        string   `json:"brand_name"`
	CategoryID       string   `json:"category_id"`
	ShortDescription string   `json:"short_description"`
	FullDescription  string   `json:"full_description"`
	RiskLevel        string   `json:"risk_level"`
	EffortLevel      string   `json:"effort_level"`
	InvestmentMin    string   `json:"investment_min"`
	InvestmentMax    string   `json:"investment_max"`
	MonthlyIncomeMin string   `json:"monthly_income_min"`
	MonthlyIncomeMax string   `json:"monthly_income_max"`
	ROIMonthsMin     string   `json:"roi_months_min"`
	ROIMonthsMax     string   `json:"roi_months_max"`
	Skills           string   `json:"skills"`
	RealityCheck     string   `json:"reality_check"`
	Media            []string `json:"media"`
}

type ideaBasicsStep struct {
	Title            string `json:"title" validate:"required,min=3,max=120"`
	CategoryID       string `json:"category_id" validate:"required,max=64"`
	ShortDescription string `json:"short_description" validate:"required,max=280"`
	FullDescription  string `json:"full_description" validate:"max=5000"`
	RiskLevel        string `json:"risk_level" validate:"required,oneof=low medium high"`
	EffortLevel      string `json:"effort_level" validate:"required,oneof=passive semi-passive active"`
}

type ideaEconomicsStep struct {
	InvestmentMin    string `json:"investment_min" validate:"required,amount"`
	InvestmentMax    string `json:"investment_max" validate:"omitempty,amount"`
	MonthlyIncomeMin string `json:"monthly_income_min" validate:"required,amount"`
	MonthlyIncomeMax string `json:"monthly_income_max" validate:"omitempty,amount"`
	Skills           string `json:"skills" validate:"max=500"`
	RealityCheck     string `json:"reality_check" validate:"max=2000"`
}

type franchiseBrandStep struct {
	Title            string `json:"title" validate:"required,min=3,max=120"`
	BrandName        string `json:"brand_name" validate:"required,max=120"`
	CategoryID       string `json:"category_id" validate:"required,max=64"`
	ShortDescription string `json:"short_description" validate:"required,max=280"`
	FullDescription  string `json:"full_description" validate:"max=5000"`
}

type franchiseInvestmentStep struct {
	InvestmentMin string `json:"investment_min" validate:"required,amount"`
	InvestmentMax string `json:"investment_max" validate:"omitempty,amount"`
	ROIMonthsMin  string `json:"roi_months_min" validate:"required,amount"`
	ROIMonthsMax  string `json:"roi_months_max" validate:"omitempty,amount"`
	RiskLevel     string `json:"risk_level" validate:"required,oneof=low medium high"`
}

type franchiseOperationsStep struct {
	EffortLevel  string   `json:"effort_level" validate:"required,oneof=passive semi-passive active"`
	Skills       string   `json:"skills" validate:"max=500"`
	RealityCheck string   `json:"reality_check" validate:"max=2000"`
	Media        []string `json:"media" validate:"max=10,dive,url"`
}

type wizardStep struct {
	name   string
	view   func(d SubmissionDraft) any
	ranges [][2]string
}

var wizardFlows = map[SubmissionFlow][]wizardStep{
	SubmissionFlowIdea: {
		{
			name: "basics",
			view: func(d SubmissionDraft) any {
				return ideaBasicsStep{
					Title:            strings.TrimSpace(d.Title),
					CategoryID:       strings.TrimSpace(d.CategoryID),
					ShortDescription: strings.TrimSpace(d.ShortDescription),
					FullDescription:  strings.TrimSpace(d.FullDescription),
					RiskLevel:        strings.ToLower(strings.TrimSpace(d.RiskLevel)),
					EffortLevel:      strings.ToLower(strings.TrimSpace(d.EffortLevel)),
				}
			},
		},
		{
			name: "economics",
			view: func(d SubmissionDraft) any {
				return ideaEconomicsStep{
					InvestmentMin:    strings.TrimSpace(d.InvestmentMin),
					InvestmentMax:    strings.TrimSpace(d.InvestmentMax),
					MonthlyIncomeMin: strings.TrimSpace(d.MonthlyIncomeMin),
					MonthlyIncomeMax: strings.TrimSpace(d.MonthlyIncomeMax),
					Skills:           strings.TrimSpace(d.Skills),
					RealityCheck:     strings.TrimSpace(d.RealityCheck),
				}
			},
			ranges: [][2]string{
				{"investment_min", "investment_max"},
				{"monthly_income_min", "monthly_income_max"},
			},
		},
	},
	SubmissionFlowFranchise: {
		{
			name: "brand",
			view: func(d SubmissionDraft) any {
				return franchiseBrandStep{
					Title:            strings.TrimSpace(d.Title),
					BrandName:        strings.TrimSpace(d.BrandName),
					CategoryID:       strings.TrimSpace(d.CategoryID),
					ShortDescription: strings.TrimSpace(d.ShortDescription),
					FullDescription:  strings.TrimSpace(d.FullDescription),
				}
			},
		},
		{
			name: "investment",
			view: func(d SubmissionDraft) any {
				return franchiseInvestmentStep{
					InvestmentMin: strings.TrimSpace(d.InvestmentMin),
					InvestmentMax: strings.TrimSpace(d.InvestmentMax),
					ROIMonthsMin:  strings.TrimSpace(d.ROIMonthsMin),
					ROIMonthsMax:  strings.TrimSpace(d.ROIMonthsMax),
					RiskLevel:     strings.ToLower(strings.TrimSpace(d.RiskLevel)),
				}
			},
			ranges: [][2]string{
				{"investment_min", "investment_max"},
				{"roi_months_min", "roi_months_max"},
			},
		},
		{
			name: "operations",
			view: func(d SubmissionDraft) any {
				return franchiseOperationsStep{
					EffortLevel:  strings.ToLower(strings.TrimSpace(d.EffortLevel)),
					Skills:       strings.TrimSpace(d.Skills),
					RealityCheck: strings.TrimSpace(d.RealityCheck),
					Media:        cleanMedia(d.Media),
				}
			},
		},
	},
}

var stepValidator = newStepValidator()

func newStepValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if idx := strings.Index(name, ","); idx >= 0 {
			name = name[:idx]
		}
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := parseAmount(fl.Field().String())
		return err == nil
	})
	return v
}

// ListingSubmitter persists a built listing as a pending submission.
type ListingSubmitter interface {
	Submit(ctx context.Context, authorID uuid.UUID, listing domain.Listing) (*domain.Listing, error)
}

type WizardOptions struct {
	Suffix SuffixGenerator
	Now    func() time.Time
	Logger *zap.Logger
}

// SubmitResult tells the caller whether Submit advanced a step or committed.
type SubmitResult struct {
	Advanced bool            `json:"advanced"`
	Step     string          `json:"step"`
	Listing  *domain.Listing `json:"listing,omitempty"`
}

// SubmissionWizard walks an author through the steps of one flow. It is not
// safe for concurrent use.
type SubmissionWizard struct {
	flow      SubmissionFlow
	steps     []wizardStep
	current   int
	draft     SubmissionDraft
	submitter ListingSubmitter
	suffix    SuffixGenerator
	now       func() time.Time
	logger    *zap.Logger

	built     *domain.Listing
	submitted *domain.Listing
}

func NewSubmissionWizard(flow SubmissionFlow, submitter ListingSubmitter, opts WizardOptions) (*SubmissionWizard, error) {
	steps, ok := wizardFlows[SubmissionFlow(strings.ToLower(strings.TrimSpace(string(flow))))]
	if !ok {
		return nil, &domain.ValidationError{Field: "kind", Reason: "must be idea or franchise"}
	}
	if opts.Suffix == nil {
		opts.Suffix = NanoSuffix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &SubmissionWizard{
		flow:      SubmissionFlow(strings.ToLower(strings.TrimSpace(string(flow)))),
		steps:     steps,
		submitter: submitter,
		suffix:    opts.Suffix,
		now:       opts.Now,
		logger:    opts.Logger,
	}, nil
}

func (w *SubmissionWizard) Flow() SubmissionFlow { return w.flow }

func (w *SubmissionWizard) Steps() []string {
	names := make([]string, len(w.steps))
	for i, step := range w.steps {
		names[i] = step.name
	}
	return names
}

// Step is the zero-based index of the current step.
func (w *SubmissionWizard) Step() int { return w.current }

func (w *SubmissionWizard) StepName() string { return w.steps[w.current].name }

func (w *SubmissionWizard) IsTerminal() bool { return w.current == len(w.steps)-1 }

func (w *SubmissionWizard) Draft() SubmissionDraft {
	out := w.draft
	out.Media = append([]string(nil), w.draft.Media...)
	return out
}

// Update edits the draft. Edits after a successful submit are refused.
func (w *SubmissionWizard) Update(edit func(*SubmissionDraft)) error {
	if w.submitted != nil {
		return domain.ErrWizardAlreadySubmitted
	}
	edit(&w.draft)
	w.built = nil
	return nil
}

// Validate checks only the current step's fields.
func (w *SubmissionWizard) Validate() error {
	return validateStep(w.steps[w.current], w.draft)
}

// Next moves forward once the current step validates. It never moves past
// the last step.
func (w *SubmissionWizard) Next() error {
	if err := w.Validate(); err != nil {
		return err
	}
	if !w.IsTerminal() {
		w.current++
	}
	return nil
}

// Back moves to the previous step without validating anything.
func (w *SubmissionWizard) Back() bool {
	if w.current == 0 {
		return false
	}
	w.current--
	return true
}

// Submit on a non-terminal step behaves like Next. On the last step it
// re-validates every step, builds the listing once and hands it to the
// submitter.
func (w *SubmissionWizard) Submit(ctx context.Context, authorID uuid.UUID) (SubmitResult, error) {
	if w.submitted != nil {
		return SubmitResult{Step: w.StepName(), Listing: w.submitted}, domain.ErrWizardAlreadySubmitted
	}
	if !w.IsTerminal() {
		if err := w.Next(); err != nil {
			return SubmitResult{Step: w.StepName()}, err
		}
		return SubmitResult{Advanced: true, Step: w.StepName()}, nil
	}
	if authorID == uuid.Nil {
		return SubmitResult{Step: w.StepName()}, domain.ErrAuthenticationRequired
	}

	for i, step := range w.steps {
		if err := validateStep(step, w.draft); err != nil {
			w.current = i
			return SubmitResult{Step: w.StepName()}, err
		}
	}

	// A retry after a store failure reuses the listing built the first time.
	if w.built == nil || w.built.AuthorID != authorID {
		suffix, err := w.suffix()
		if err != nil {
			return SubmitResult{Step: w.StepName()}, err
		}
		listing, err := BuildListing(w.draft, w.flow, authorID, suffix, w.now())
		if err != nil {
			return SubmitResult{Step: w.StepName()}, err
		}
		w.built = &listing
	}

	created, err := w.submitter.Submit(ctx, authorID, w.built.Clone())
	if err != nil {
		metrics.Submissions.WithLabelValues(string(w.flow), "error").Inc()
		if errors.Is(err, domain.ErrDuplicateSlug) {
			// Next attempt draws a fresh suffix.
			w.built = nil
		}
		return SubmitResult{Step: w.StepName()}, err
	}
	w.submitted = created
	metrics.Submissions.WithLabelValues(string(w.flow), "ok").Inc()
	w.logger.Info("listing submitted",
		zap.String("listing_id", created.ID.String()),
		zap.String("slug", created.Slug),
		zap.String("flow", string(w.flow)),
	)
	return SubmitResult{Step: w.StepName(), Listing: created}, nil
}

// BuildListing converts a validated draft into a pending listing. It has no
// side effects: the same inputs always produce the same listing.
func BuildListing(d SubmissionDraft, flow SubmissionFlow, authorID uuid.UUID, suffix string, now time.Time) (domain.Listing, error) {
	slug, err := BuildSlug(d.Title, suffix)
	if err != nil {
		return domain.Listing{}, err
	}
	investMin, err := coerceAmount("investment_min", d.InvestmentMin)
	if err != nil {
		return domain.Listing{}, err
	}
	investMax, err := coerceAmount("investment_max", d.InvestmentMax)
	if err != nil {
		return domain.Listing{}, err
	}

	now = now.UTC()
	listing := domain.Listing{
		Title:            strings.TrimSpace(d.Title),
		Slug:             slug,
		CategoryID:       strings.TrimSpace(d.CategoryID),
		InvestmentMin:    investMin,
		InvestmentMax:    investMax,
		RiskLevel:        domain.RiskLevel(strings.ToLower(strings.TrimSpace(d.RiskLevel))),
		ShortDescription: strings.TrimSpace(d.ShortDescription),
		FullDescription:  strings.TrimSpace(d.FullDescription),
		RealityCheck:     strings.TrimSpace(d.RealityCheck),
		Skills:           splitSkills(d.Skills),
		Media:            cleanMedia(d.Media),
		AuthorID:         authorID,
		IsApproved:       false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	effort := domain.EffortLevel(strings.ToLower(strings.TrimSpace(d.EffortLevel)))

	switch flow {
	case SubmissionFlowIdea:
		incomeMin, err := coerceAmount("monthly_income_min", d.MonthlyIncomeMin)
		if err != nil {
			return domain.Listing{}, err
		}
		incomeMax, err := coerceAmount("monthly_income_max", d.MonthlyIncomeMax)
		if err != nil {
			return domain.Listing{}, err
		}
		listing.Kind = domain.ListingKindIdea
		listing.Idea = &domain.IdeaDetails{
			MonthlyIncomeMin: incomeMin,
			MonthlyIncomeMax: incomeMax,
			EffortLevel:      effort,
		}
	case SubmissionFlowFranchise:
		roiMin, err := coerceAmount("roi_months_min", d.ROIMonthsMin)
		if err != nil {
			return domain.Listing{}, err
		}
		roiMax, err := coerceAmount("roi_months_max", d.ROIMonthsMax)
		if err != nil {
			return domain.Listing{}, err
		}
		listing.Kind = domain.ListingKindFranchise
		listing.Franchise = &domain.FranchiseDetails{
			BrandName:    strings.TrimSpace(d.BrandName),
			ROIMonthsMin: roiMin,
			ROIMonthsMax: roiMax,
			EffortLevel:  effort,
		}
	default:
		return domain.Listing{}, &domain.ValidationError{Field: "kind", Reason: "must be idea or franchise"}
	}
	return listing, nil
}

func validateStep(step wizardStep, d SubmissionDraft) error {
	if err := stepValidator.Struct(step.view(d)); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &domain.ValidationError{Field: fieldName(fieldErrs[0]), Reason: friendlyMessage(fieldErrs[0])}
		}
		return err
	}
	values := draftAmounts(d)
	for _, pair := range step.ranges {
		lo, _ := parseAmount(values[pair[0]])
		hi, _ := parseAmount(values[pair[1]])
		if lo != nil && hi != nil && *lo > *hi {
			return &domain.ValidationError{Field: pair[1], Reason: "must be greater than or equal to " + pair[0]}
		}
	}
	return nil
}

// fieldName drops the dive index from slice element errors so callers see
// the form field ("media"), not "media[2]".
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if idx := strings.Index(name, "["); idx >= 0 {
		return name[:idx]
	}
	return name
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must not have more than %s entries", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "amount":
		return "must be a non-negative number"
	case "url":
		return "must contain valid URLs"
	default:
		return "is invalid"
	}
}

func draftAmounts(d SubmissionDraft) map[string]string {
	return map[string]string{
		"investment_min":     d.InvestmentMin,
		"investment_max":     d.InvestmentMax,
		"monthly_income_min": d.MonthlyIncomeMin,
		"monthly_income_max": d.MonthlyIncomeMax,
		"roi_months_min":     d.ROIMonthsMin,
		"roi_months_max":     d.ROIMonthsMax,
	}
}

var amountCleaner = strings.NewReplacer(",", "", " ", "", "_", "", "₹", "", "$", "")

// parseAmount accepts "1,50,000", "₹ 2500" or "$40" style input. Blank input
// is absent, not zero.
func parseAmount(raw string) (*float64, error) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return &v, nil
}

func coerceAmount(field, raw string) (*float64, error) {
	v, err := parseAmount(raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: "must be a non-negative number"}
	}
	return v, nil
}

// splitSkills splits on commas, trims, drops blanks and keeps the first
// spelling of case-insensitive duplicates.
func splitSkills(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func cleanMedia(raw []string) []string {
	var out []string
	for _, m := range raw {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
