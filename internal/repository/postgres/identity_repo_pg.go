package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

// RoleRepository answers role membership from the role/user_role tables.
type RoleRepository struct {
	db        *sqlx.DB
	moderator []string
}

// NewRoleRepo treats any of moderatorRoles as moderator. With none given,
// "admin" and "moderator" are used.
func NewRoleRepo(db *sqlx.DB, moderatorRoles ...string) *RoleRepository {
	if len(moderatorRoles) == 0 {
		moderatorRoles = []string{"admin", "moderator"}
	}
	return &RoleRepository{db: db, moderator: moderatorRoles}
}

func (r *RoleRepository) IsModerator(ctx context.Context, userID uuid.UUID) (bool, error) {
	query, args, err := sqlx.In(`
		SELECT EXISTS (
			SELECT 1
			FROM user_role ur
			JOIN role ro ON ro.id = ur.role_id
			WHERE ur.user_id = ? AND ro.role_name IN (?)
		)
	`, userID, r.moderator)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := r.db.GetContext(ctx, &ok, r.db.Rebind(query), args...); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RoleRepository) AssignUserRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	const query = `
		INSERT INTO user_role (role_id, user_id)
		SELECT id, $2 FROM role WHERE role_name = $1
		ON CONFLICT (role_id, user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, roleName, userID)
	return err
}

var _ ports.Identity = (*RoleRepository)(nil)
