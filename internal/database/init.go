package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gridfuse/gridfuse/internal/database/schema"
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// InitializeDatabase creates the metadata tables if they don't exist
func InitializeDatabase(ctx context.Context, db *sql.DB, dialect sqlexpr.Dialect) error {
	for _, query := range schema.TableDefinitions(dialect) {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// CreateRecordTable creates a record table holding one column per field
func CreateRecordTable(ctx context.Context, db *sql.DB, dialect sqlexpr.Dialect, table, idColumn string, fields []*domain.FieldDescriptor) error {
	ddl, err := schema.RecordTable(dialect, table, idColumn, fields)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create record table %s: %w", table, err)
	}
	return nil
}
