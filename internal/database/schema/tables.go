// Package schema defines the metadata tables and the record table layout
// for each dialect.
package schema

import (
	"fmt"
	"strings"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// TableDefinitions returns the statements creating the metadata tables
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements
func TableDefinitions(dialect sqlexpr.Dialect) []string {
	if dialect == sqlexpr.SQLite {
		return []string{
			`CREATE TABLE IF NOT EXISTS fields (
				id TEXT PRIMARY KEY,
				table_id TEXT NOT NULL,
				name TEXT NOT NULL,
				type TEXT NOT NULL,
				cell_value_type TEXT NOT NULL,
				db_field_type TEXT NOT NULL,
				db_field_name TEXT NOT NULL,
				is_multiple_cell_value INTEGER NOT NULL DEFAULT 0,
				options TEXT NOT NULL DEFAULT '{}',
				position INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_fields_table_id ON fields (table_id, position)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS fields (
			id VARCHAR(64) PRIMARY KEY,
			table_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(32) NOT NULL,
			cell_value_type VARCHAR(16) NOT NULL,
			db_field_type VARCHAR(16) NOT NULL,
			db_field_name VARCHAR(255) NOT NULL,
			is_multiple_cell_value BOOLEAN NOT NULL DEFAULT FALSE,
			options JSONB NOT NULL DEFAULT '{}',
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fields_table_id ON fields (table_id, position)`,
	}
}

// ColumnType maps a field to the column type used to store its cells
func ColumnType(dialect sqlexpr.Dialect, field *domain.FieldDescriptor) string {
	if field.IsMultipleCellValue {
		if dialect == sqlexpr.SQLite {
			return "TEXT"
		}
		return "JSONB"
	}

	switch field.DbFieldType {
	case domain.DbFieldTypeInteger:
		if dialect == sqlexpr.SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case domain.DbFieldTypeReal:
		if dialect == sqlexpr.SQLite {
			return "REAL"
		}
		return "DOUBLE PRECISION"
	case domain.DbFieldTypeBoolean:
		return "BOOLEAN"
	case domain.DbFieldTypeDateTime:
		// SQLite keeps ISO-8601 UTC text, which orders like the instant
		if dialect == sqlexpr.SQLite {
			return "TEXT"
		}
		return "TIMESTAMPTZ"
	case domain.DbFieldTypeJSON:
		if dialect == sqlexpr.SQLite {
			return "TEXT"
		}
		return "JSONB"
	default:
		return "TEXT"
	}
}

// RecordTable returns the CREATE TABLE statement of a record table with
// one column per field plus the record id
func RecordTable(dialect sqlexpr.Dialect, table, idColumn string, fields []*domain.FieldDescriptor) (string, error) {
	if table == "" {
		return "", fmt.Errorf("table name is required")
	}

	columns := []string{dialect.QuoteIdent(idColumn) + " TEXT PRIMARY KEY"}
	seen := map[string]bool{idColumn: true}
	for _, f := range fields {
		if f.DbFieldName == "" {
			return "", fmt.Errorf("field %s has no column name", f.ID)
		}
		if seen[f.DbFieldName] {
			return "", fmt.Errorf("duplicate column %s", f.DbFieldName)
		}
		seen[f.DbFieldName] = true
		columns = append(columns, dialect.QuoteIdent(f.DbFieldName)+" "+ColumnType(dialect, f))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", dialect.QuoteIdent(table), strings.Join(columns, ",\n\t")), nil
}
