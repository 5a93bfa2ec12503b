package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// SQLRecordRepository runs compiled record statements on one database
type SQLRecordRepository struct {
	db      *sql.DB
	dialect sqlexpr.Dialect
}

// NewSQLRecordRepository creates a new SQLRecordRepository
func NewSQLRecordRepository(db *sql.DB, dialect sqlexpr.Dialect) *SQLRecordRepository {
	return &SQLRecordRepository{db: db, dialect: dialect}
}

// ListIDs runs the statement and returns the record ids in row order.
// Statements compiled for another dialect are rejected.
func (r *SQLRecordRepository) ListIDs(ctx context.Context, stmt *domain.CompiledStatement) ([]string, error) {
	if stmt == nil {
		return nil, fmt.Errorf("statement is required")
	}
	if stmt.Dialect != string(r.dialect) {
		return nil, fmt.Errorf("statement %s was compiled for %s, database speaks %s", stmt.ID, stmt.Dialect, r.dialect)
	}

	rows, err := r.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return ids, nil
}
