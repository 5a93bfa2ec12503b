package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/cache"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

var fieldColumns = []string{
	"id", "name", "type", "cell_value_type", "db_field_type",
	"db_field_name", "is_multiple_cell_value", "options",
}

// SQLFieldRepository stores field descriptors in the fields table. Reads
// are cached per table for ttl; writes through the repository invalidate
// the table's entry.
type SQLFieldRepository struct {
	db      *sql.DB
	dialect sqlexpr.Dialect
	cache   cache.Cache[[]*domain.FieldDescriptor]
	ttl     time.Duration
}

// NewSQLFieldRepository creates a new SQLFieldRepository. A zero ttl
// disables caching.
func NewSQLFieldRepository(db *sql.DB, dialect sqlexpr.Dialect, ttl time.Duration) *SQLFieldRepository {
	return &SQLFieldRepository{
		db:      db,
		dialect: dialect,
		cache:   cache.NewInMemoryCache[[]*domain.FieldDescriptor](time.Minute),
		ttl:     ttl,
	}
}

// ListByTable returns the descriptors of a table in position order
func (r *SQLFieldRepository) ListByTable(ctx context.Context, tableID string) ([]*domain.FieldDescriptor, error) {
	if r.ttl <= 0 {
		return r.listByTable(ctx, tableID)
	}
	return r.cache.GetOrSet(ctx, tableID, r.ttl, func(ctx context.Context) ([]*domain.FieldDescriptor, error) {
		return r.listByTable(ctx, tableID)
	})
}

func (r *SQLFieldRepository) listByTable(ctx context.Context, tableID string) ([]*domain.FieldDescriptor, error) {
	query, args, err := r.dialect.StatementBuilder().
		Select(fieldColumns...).
		From("fields").
		Where(sq.Eq{"table_id": tableID}).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []*domain.FieldDescriptor
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		if err := field.Validate(); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fields: %w", err)
	}

	return fields, nil
}

// Save inserts or replaces a field of a table
func (r *SQLFieldRepository) Save(ctx context.Context, tableID string, position int, field *domain.FieldDescriptor) error {
	if err := field.Validate(); err != nil {
		return err
	}

	options, err := json.Marshal(field.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal field options: %w", err)
	}

	query, args, err := r.dialect.StatementBuilder().
		Insert("fields").
		Columns(append([]string{"table_id", "position"}, fieldColumns...)...).
		Values(tableID, position, field.ID, field.Name, string(field.Type), string(field.CellValueType),
			string(field.DbFieldType), field.DbFieldName, field.IsMultipleCellValue, string(options)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			table_id = EXCLUDED.table_id,
			position = EXCLUDED.position,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			cell_value_type = EXCLUDED.cell_value_type,
			db_field_type = EXCLUDED.db_field_type,
			db_field_name = EXCLUDED.db_field_name,
			is_multiple_cell_value = EXCLUDED.is_multiple_cell_value,
			options = EXCLUDED.options`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save field %s: %w", field.ID, err)
	}

	r.cache.Delete(tableID)
	return nil
}

func scanField(rows *sql.Rows) (*domain.FieldDescriptor, error) {
	var (
		field   domain.FieldDescriptor
		options []byte
	)
	err := rows.Scan(
		&field.ID,
		&field.Name,
		&field.Type,
		&field.CellValueType,
		&field.DbFieldType,
		&field.DbFieldName,
		&field.IsMultipleCellValue,
		&options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan field: %w", err)
	}

	if len(options) > 0 {
		if err := json.Unmarshal(options, &field.Options); err != nil {
			return nil, fmt.Errorf("invalid options on field %s: %w", field.ID, err)
		}
	}

	return &field, nil
}

// Close stops the cache cleanup goroutine
func (r *SQLFieldRepository) Close() {
	r.cache.Stop()
}
