package sort

import (
	"fmt"
	"time"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// OrderFragment is one ORDER BY item. Timezones are inlined as validated
// literals, so fragments never carry bind arguments.
type OrderFragment struct {
	SQL string
}

// Adapter builds ORDER BY items for one dialect. NULLs always sort first
// ascending and last descending, whatever the engine's default.
type Adapter struct {
	dialect         sqlexpr.Dialect
	defaultTimeZone string
	now             func() time.Time
}

// NewAdapter creates a sort adapter. now is only used to pick the UTC
// offset of a timezone for SQLite, which has no zone database.
func NewAdapter(dialect sqlexpr.Dialect, defaultTimeZone string, now func() time.Time) *Adapter {
	if now == nil {
		now = time.Now
	}
	return &Adapter{dialect: dialect, defaultTimeZone: defaultTimeZone, now: now}
}

// BuildSort returns the ORDER BY item for a field and direction
func (a *Adapter) BuildSort(field *domain.FieldDescriptor, order domain.SortOrder) (OrderFragment, error) {
	switch order {
	case domain.SortOrderAsc:
		s, err := a.AscSQL(field)
		return OrderFragment{SQL: s}, err
	case domain.SortOrderDesc:
		s, err := a.DescSQL(field)
		return OrderFragment{SQL: s}, err
	}
	return OrderFragment{}, fmt.Errorf("invalid sort order: %s", order)
}

// AscSQL returns the ascending item as embeddable text
func (a *Adapter) AscSQL(field *domain.FieldDescriptor) (string, error) {
	key, err := a.Key(field)
	if err != nil {
		return "", err
	}
	return key + " ASC NULLS FIRST", nil
}

// DescSQL returns the descending item as embeddable text
func (a *Adapter) DescSQL(field *domain.FieldDescriptor) (string, error) {
	key, err := a.Key(field)
	if err != nil {
		return "", err
	}
	return key + " DESC NULLS LAST", nil
}

// Key returns the sort key expression of a field. Dates whose display hides
// the time sort by their local calendar day so same-day values tie.
func (a *Adapter) Key(field *domain.FieldDescriptor) (string, error) {
	if field == nil {
		return "", fmt.Errorf("field descriptor is required")
	}
	col := sqlexpr.Col(field.DbFieldName)
	if field.CellValueType != domain.CellValueTypeDateTime || field.IsMultipleCellValue || field.HasTime() {
		return sqlexpr.Render(a.dialect, col).SQL, nil
	}

	tz := field.TimeZone()
	if tz == "" {
		tz = a.defaultTimeZone
	}
	if tz == "" {
		tz = "UTC"
	}
	loc, err := domain.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("sort field %s: %w", field.ID, err)
	}

	var key sqlexpr.Expr
	if a.dialect == sqlexpr.SQLite {
		key = sqlexpr.Fn("strftime", sqlexpr.Str("%Y-%m-%d"), col, sqlexpr.Str(offsetModifier(a.now(), loc)))
	} else {
		key = sqlexpr.Fn("TO_CHAR", sqlexpr.Fn("TIMEZONE", sqlexpr.Str(loc.String()), col), sqlexpr.Str("YYYY-MM-DD"))
	}
	return sqlexpr.Render(a.dialect, key).SQL, nil
}

// offsetModifier renders a SQLite date modifier such as "+480 minutes"
func offsetModifier(at time.Time, loc *time.Location) string {
	_, offset := at.In(loc).Zone()
	return fmt.Sprintf("%+d minutes", offset/60)
}
