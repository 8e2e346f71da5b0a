package service

import (
	"database/sql"
	"errors"
)

// Adapters report a missing row, or a guard that matched nothing, as
// sql.ErrNoRows.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
