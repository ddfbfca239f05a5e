// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// namedQueryID runs a named INSERT ... RETURNING id query and scans the
// generated id.
func namedQueryID(ctx context.Context, db *sqlx.DB, query string, arg interface{}) (string, error) {
	rows, err := db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	var id string
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return "", err
		}
		return "", sql.ErrNoRows
	}
	if err = rows.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
