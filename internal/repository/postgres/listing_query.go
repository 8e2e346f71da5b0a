package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

var listingColumns = map[domain.Field]string{
	domain.FieldIsApproved:       "is_approved",
	domain.FieldIsFeatured:       "is_featured",
	domain.FieldDeletedAt:        "deleted_at",
	domain.FieldKind:             "kind",
	domain.FieldTitle:            "title",
	domain.FieldCategory:         "category_id",
	domain.FieldRiskLevel:        "risk_level",
	domain.FieldEffortLevel:      "effort_level",
	domain.FieldMonthlyIncomeMin: "monthly_income_min",
	domain.FieldInvestmentMin:    "investment_min",
	domain.FieldInvestmentMax:    "investment_max",
	domain.FieldAuthorID:         "author_id",
	domain.FieldPopularity:       "popularity",
	domain.FieldCreatedAt:        "created_at",
	domain.FieldID:               "id",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause renders predicates as an AND chain. Placeholders start at
// $start so callers can put their own arguments first.
func whereClause(preds []domain.Predicate, start int) (string, []any, error) {
	parts := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	idx := start
	for _, p := range preds {
		column, ok := listingColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported listing field %q", p.Field)
		}
		switch p.Op {
		case domain.OpIsNull:
			parts = append(parts, column+" IS NULL")
			continue
		case domain.OpEq:
			switch v := p.Value.(type) {
			case bool, uuid.UUID:
				parts = append(parts, fmt.Sprintf("%s = $%d", column, idx))
				args = append(args, v)
			case string:
				parts = append(parts, fmt.Sprintf("LOWER(%s) = LOWER($%d)", column, idx))
				args = append(args, v)
			default:
				return "", nil, fmt.Errorf("unsupported value %T for %s", p.Value, p.Field)
			}
		case domain.OpContainsFold:
			needle, ok := p.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("unsupported value %T for %s", p.Value, p.Field)
			}
			parts = append(parts, fmt.Sprintf(`%s ILIKE '%%' || $%d || '%%' ESCAPE '\'`, column, idx))
			args = append(args, likeEscaper.Replace(needle))
		case domain.OpGte, domain.OpLte:
			bound, ok := p.Value.(float64)
			if !ok {
				return "", nil, fmt.Errorf("unsupported value %T for %s", p.Value, p.Field)
			}
			op := ">="
			if p.Op == domain.OpLte {
				op = "<="
			}
			parts = append(parts, fmt.Sprintf("%s %s $%d", column, op, idx))
			args = append(args, bound)
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", p.Op)
		}
		idx++
	}
	if len(parts) == 0 {
		return "TRUE", args, nil
	}
	return strings.Join(parts, " AND "), args, nil
}

// orderClause keeps NULLs at the low end so they sort last when descending.
func orderClause(sorts []domain.SortTerm) (string, error) {
	if len(sorts) == 0 {
		return "created_at DESC NULLS LAST, id ASC", nil
	}
	parts := make([]string, 0, len(sorts))
	for _, term := range sorts {
		column, ok := listingColumns[term.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field %q", term.Field)
		}
		if term.Direction == domain.SortDesc {
			parts = append(parts, column+" DESC NULLS LAST")
		} else {
			parts = append(parts, column+" ASC NULLS FIRST")
		}
	}
	return strings.Join(parts, ", "), nil
}
