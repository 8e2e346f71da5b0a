package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

const listingSelectColumns = `
	id, kind, title, slug, category_id, investment_min, investment_max, risk_level,
	short_description, full_description, reality_check, skills, media, author_id,
	is_approved, is_featured, deleted_at, popularity, created_at, updated_at,
	effort_level, monthly_income_min, monthly_income_max, brand_name, roi_months_min, roi_months_max
`

// listingRow is the flat table shape; kind-specific columns are NULL for the
// other kind.
type listingRow struct {
	ID               uuid.UUID       `db:"id"`
	Kind             string          `db:"kind"`
	Title            string          `db:"title"`
	Slug             string          `db:"slug"`
	CategoryID       sql.NullString  `db:"category_id"`
	InvestmentMin    sql.NullFloat64 `db:"investment_min"`
	InvestmentMax    sql.NullFloat64 `db:"investment_max"`
	RiskLevel        sql.NullString  `db:"risk_level"`
	ShortDescription sql.NullString  `db:"short_description"`
	FullDescription  sql.NullString  `db:"full_description"`
	RealityCheck     sql.NullString  `db:"reality_check"`
	Skills           pq.StringArray  `db:"skills"`
	Media            pq.StringArray  `db:"media"`
	AuthorID         uuid.UUID       `db:"author_id"`
	IsApproved       bool            `db:"is_approved"`
	IsFeatured       bool            `db:"is_featured"`
	DeletedAt        sql.NullTime    `db:"deleted_at"`
	Popularity       int64           `db:"popularity"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	EffortLevel      sql.NullString  `db:"effort_level"`
	MonthlyIncomeMin sql.NullFloat64 `db:"monthly_income_min"`
	MonthlyIncomeMax sql.NullFloat64 `db:"monthly_income_max"`
	BrandName        sql.NullString  `db:"brand_name"`
	ROIMonthsMin     sql.NullFloat64 `db:"roi_months_min"`
	ROIMonthsMax     sql.NullFloat64 `db:"roi_months_max"`
}

func (row listingRow) toDomain() domain.Listing {
	l := domain.Listing{
		ID:               row.ID,
		Kind:             domain.ListingKind(row.Kind),
		Title:            row.Title,
		Slug:             row.Slug,
		CategoryID:       row.CategoryID.String,
		InvestmentMin:    floatPtr(row.InvestmentMin),
		InvestmentMax:    floatPtr(row.InvestmentMax),
		RiskLevel:        domain.RiskLevel(row.RiskLevel.String),
		ShortDescription: row.ShortDescription.String,
		FullDescription:  row.FullDescription.String,
		RealityCheck:     row.RealityCheck.String,
		Skills:           []string(row.Skills),
		Media:            []string(row.Media),
		AuthorID:         row.AuthorID,
		IsApproved:       row.IsApproved,
		IsFeatured:       row.IsFeatured,
		Popularity:       row.Popularity,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.DeletedAt.Valid {
		ts := row.DeletedAt.Time
		l.DeletedAt = &ts
	}
	effort := domain.EffortLevel(row.EffortLevel.String)
	switch l.Kind {
	case domain.ListingKindFranchise:
		l.Franchise = &domain.FranchiseDetails{
			BrandName:    row.BrandName.String,
			ROIMonthsMin: floatPtr(row.ROIMonthsMin),
			ROIMonthsMax: floatPtr(row.ROIMonthsMax),
			EffortLevel:  effort,
		}
	default:
		l.Idea = &domain.IdeaDetails{
			MonthlyIncomeMin: floatPtr(row.MonthlyIncomeMin),
			MonthlyIncomeMax: floatPtr(row.MonthlyIncomeMax),
			EffortLevel:      effort,
		}
	}
	return l
}

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepo(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Find(ctx context.Context, query domain.CompiledQuery) ([]domain.Listing, error) {
	where, args, err := whereClause(query.Predicates, 1)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(query.Sorts)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(listingSelectColumns)
	builder.WriteString(" FROM listing WHERE ")
	builder.WriteString(where)
	builder.WriteString(" ORDER BY ")
	builder.WriteString(order)
	if query.Limit > 0 {
		args = append(args, query.Limit)
		builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if query.Offset > 0 {
		args = append(args, query.Offset)
		builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.QueryxContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Listing, 0)
	for rows.Next() {
		var row listingRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		items = append(items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingSelectColumns + ` FROM listing WHERE id = $1`
	var row listingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	l := row.toDomain()
	return &l, nil
}

func (r *ListingRepository) FindBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	query := `SELECT ` + listingSelectColumns + ` FROM listing WHERE slug = $1`
	var row listingRow
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		return nil, err
	}
	l := row.toDomain()
	return &l, nil
}

func (r *ListingRepository) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	query := `
		INSERT INTO listing (
			kind, title, slug, category_id, investment_min, investment_max, risk_level,
			short_description, full_description, reality_check, skills, media, author_id,
			is_approved, is_featured, effort_level, monthly_income_min, monthly_income_max,
			brand_name, roi_months_min, roi_months_max
		) VALUES (
			:kind, :title, :slug, :category_id, :investment_min, :investment_max, :risk_level,
			:short_description, :full_description, :reality_check, :skills, :media, :author_id,
			:is_approved, :is_featured, :effort_level, :monthly_income_min, :monthly_income_max,
			:brand_name, :roi_months_min, :roi_months_max
		)
		RETURNING ` + listingSelectColumns

	args := map[string]any{
		"kind":               string(listing.Kind),
		"title":              listing.Title,
		"slug":               listing.Slug,
		"category_id":        nullString(listing.CategoryID),
		"investment_min":     nullFloat(listing.InvestmentMin),
		"investment_max":     nullFloat(listing.InvestmentMax),
		"risk_level":         nullString(string(listing.RiskLevel)),
		"short_description":  nullString(listing.ShortDescription),
		"full_description":   nullString(listing.FullDescription),
		"reality_check":      nullString(listing.RealityCheck),
		"skills":             stringArray(listing.Skills),
		"media":              stringArray(listing.Media),
		"author_id":          listing.AuthorID,
		"is_approved":        listing.IsApproved,
		"is_featured":        listing.IsFeatured,
		"effort_level":       nullString(string(listing.EffortLevel())),
		"monthly_income_min": nil,
		"monthly_income_max": nil,
		"brand_name":         nil,
		"roi_months_min":     nil,
		"roi_months_max":     nil,
	}
	if listing.Idea != nil {
		args["monthly_income_min"] = nullFloat(listing.Idea.MonthlyIncomeMin)
		args["monthly_income_max"] = nullFloat(listing.Idea.MonthlyIncomeMax)
	}
	if listing.Franchise != nil {
		args["brand_name"] = nullString(listing.Franchise.BrandName)
		args["roi_months_min"] = nullFloat(listing.Franchise.ROIMonthsMin)
		args["roi_months_max"] = nullFloat(listing.Franchise.ROIMonthsMax)
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var row listingRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		l := row.toDomain()
		return &l, nil
	}
	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return nil, sql.ErrNoRows
}

// Update applies the patch only when the row still satisfies guard.
func (r *ListingRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ListingPatch, guard []domain.Predicate) (*domain.Listing, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", strings.TrimSpace(*patch.Title))
	}
	if patch.CategoryID != nil {
		set("category_id", nullString(strings.TrimSpace(*patch.CategoryID)))
	}
	if patch.InvestmentMin != nil {
		set("investment_min", *patch.InvestmentMin)
	}
	if patch.InvestmentMax != nil {
		set("investment_max", *patch.InvestmentMax)
	}
	if patch.RiskLevel != nil {
		set("risk_level", nullString(string(*patch.RiskLevel)))
	}
	if patch.ShortDescription != nil {
		set("short_description", nullString(strings.TrimSpace(*patch.ShortDescription)))
	}
	if patch.FullDescription != nil {
		set("full_description", nullString(strings.TrimSpace(*patch.FullDescription)))
	}
	if patch.RealityCheck != nil {
		set("reality_check", nullString(strings.TrimSpace(*patch.RealityCheck)))
	}
	if patch.Skills != nil {
		set("skills", stringArray(*patch.Skills))
	}
	if patch.Media != nil {
		set("media", stringArray(*patch.Media))
	}
	if patch.EffortLevel != nil {
		set("effort_level", nullString(string(*patch.EffortLevel)))
	}
	// Kind-specific columns only change on rows of the matching kind.
	setForKind := func(column string, kind domain.ListingKind, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = CASE WHEN kind = '%s' THEN $%d ELSE %s END", column, kind, len(args), column))
	}
	if patch.MonthlyIncomeMin != nil {
		setForKind("monthly_income_min", domain.ListingKindIdea, *patch.MonthlyIncomeMin)
	}
	if patch.MonthlyIncomeMax != nil {
		setForKind("monthly_income_max", domain.ListingKindIdea, *patch.MonthlyIncomeMax)
	}
	if patch.BrandName != nil {
		setForKind("brand_name", domain.ListingKindFranchise, strings.TrimSpace(*patch.BrandName))
	}
	if patch.ROIMonthsMin != nil {
		setForKind("roi_months_min", domain.ListingKindFranchise, *patch.ROIMonthsMin)
	}
	if patch.ROIMonthsMax != nil {
		setForKind("roi_months_max", domain.ListingKindFranchise, *patch.ROIMonthsMax)
	}
	if patch.IsApproved != nil {
		set("is_approved", *patch.IsApproved)
	}
	if patch.IsFeatured != nil {
		set("is_featured", *patch.IsFeatured)
	}

	args = append(args, id)
	idPlaceholder := len(args)
	where, guardArgs, err := whereClause(guard, len(args)+1)
	if err != nil {
		return nil, err
	}
	args = append(args, guardArgs...)

	query := fmt.Sprintf(`
		UPDATE listing
		SET %s
		WHERE id = $%d AND %s
		RETURNING %s
	`, strings.Join(setParts, ", "), idPlaceholder, where, listingSelectColumns)

	var row listingRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, err
	}
	l := row.toDomain()
	return &l, nil
}

func (r *ListingRepository) SoftDelete(ctx context.Context, id uuid.UUID, guard []domain.Predicate) error {
	where, guardArgs, err := whereClause(guard, 2)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE listing
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND %s
	`, where)

	result, err := r.db.ExecContext(ctx, query, append([]any{id}, guardArgs...)...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ListingRepository) IncrementPopularity(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE listing SET popularity = popularity + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.ListingRepository = (*ListingRepository)(nil)
