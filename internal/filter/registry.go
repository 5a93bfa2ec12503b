package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Gridfuse/gridfuse/internal/daterange"
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// AdapterKind selects the family of condition builders for a field
type AdapterKind string

const (
	KindString   AdapterKind = "string"
	KindNumber   AdapterKind = "number"
	KindBoolean  AdapterKind = "boolean"
	KindDateTime AdapterKind = "dateTime"
	KindMulti    AdapterKind = "multi"
)

// Kinds lists every adapter kind
var Kinds = []AdapterKind{KindString, KindNumber, KindBoolean, KindDateTime, KindMulti}

// KindOf resolves the adapter kind of a field. Multi-value fields always use
// the multi adapter. A number field stored as text goes through the string
// adapter, which coerces the filter value to a number.
func KindOf(field *domain.FieldDescriptor) AdapterKind {
	switch {
	case field.IsMultipleCellValue:
		return KindMulti
	case field.CellValueType == domain.CellValueTypeDateTime:
		return KindDateTime
	case field.CellValueType == domain.CellValueTypeBoolean:
		return KindBoolean
	case field.CellValueType == domain.CellValueTypeNumber && field.DbFieldType != domain.DbFieldTypeText:
		return KindNumber
	}
	return KindString
}

// Condition is the input of a builder for one filter leaf
type Condition struct {
	Dialect  sqlexpr.Dialect
	Field    *domain.FieldDescriptor
	Operator domain.Operator
	Value    Value
	Dates    *daterange.Calculator
}

// Column references the field's column
func (c *Condition) Column() sqlexpr.Expr {
	return sqlexpr.Col(c.Field.DbFieldName)
}

func (c *Condition) invalid(reason string) error {
	return domain.NewInvalidValueError(c.Field.ID, c.Operator, c.Value.Raw(), reason)
}

// BuilderFunc builds the predicate of one leaf
type BuilderFunc func(c *Condition) (sqlexpr.Expr, error)

type registryKey struct {
	dialect  sqlexpr.Dialect
	kind     AdapterKind
	operator domain.Operator
}

// Registry is the dispatch table from (dialect, kind, operator) to builder.
// It is read-only after NewRegistry returns and safe for concurrent use.
type Registry struct {
	builders map[registryKey]BuilderFunc
	dates    *daterange.Calculator
}

// NewRegistry creates a registry holding every built-in builder for both dialects
func NewRegistry(dates *daterange.Calculator) *Registry {
	r := &Registry{
		builders: make(map[registryKey]BuilderFunc),
		dates:    dates,
	}
	for _, d := range sqlexpr.Dialects {
		registerString(r, d)
		registerNumber(r, d)
		registerBoolean(r, d)
		registerDate(r, d)
	}
	registerMultiPostgres(r)
	registerMultiSQLite(r)
	return r
}

// Register adds or replaces a builder
func (r *Registry) Register(d sqlexpr.Dialect, kind AdapterKind, op domain.Operator, fn BuilderFunc) {
	r.builders[registryKey{dialect: d, kind: kind, operator: op}] = fn
}

func (r *Registry) registerAll(d sqlexpr.Dialect, kind AdapterKind, fns map[domain.Operator]BuilderFunc) {
	for op, fn := range fns {
		r.Register(d, kind, op, fn)
	}
}

// Lookup returns the builder for a combination, if any
func (r *Registry) Lookup(d sqlexpr.Dialect, kind AdapterKind, op domain.Operator) (BuilderFunc, bool) {
	fn, ok := r.builders[registryKey{dialect: d, kind: kind, operator: op}]
	return fn, ok
}

// Supported returns the operators registered for a kind, in domain.Operators order
func (r *Registry) Supported(d sqlexpr.Dialect, kind AdapterKind) []domain.Operator {
	var ops []domain.Operator
	for _, op := range domain.Operators {
		if _, ok := r.Lookup(d, kind, op); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Adapter returns the predicate adapter of a dialect
func (r *Registry) Adapter(d sqlexpr.Dialect) *Adapter {
	return &Adapter{dialect: d, registry: r}
}

// Adapter builds predicates for one dialect
type Adapter struct {
	dialect  sqlexpr.Dialect
	registry *Registry
}

// Dialect returns the adapter's dialect
func (a *Adapter) Dialect() sqlexpr.Dialect {
	return a.dialect
}

// Expr builds the predicate tree of one leaf. A nil expression with a nil
// error means the leaf has no value yet and places no constraint.
func (a *Adapter) Expr(field *domain.FieldDescriptor, op domain.Operator, raw json.RawMessage) (sqlexpr.Expr, error) {
	if field == nil {
		return nil, fmt.Errorf("field descriptor is required")
	}
	kind := KindOf(field)
	fn, ok := a.registry.Lookup(a.dialect, kind, op)
	if !ok {
		return nil, domain.NewUnsupportedOperatorError(field.ID, string(kind), op)
	}

	value := ParseValue(raw)
	if op.RequiresValue() && value.IsNull() {
		return nil, nil
	}

	expr, err := fn(&Condition{
		Dialect:  a.dialect,
		Field:    field,
		Operator: op,
		Value:    value,
		Dates:    a.registry.dates,
	})
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.FieldID == "" {
		return nil, cfgErr.WithLeaf(field.ID, op)
	}
	return expr, err
}

// BuildPredicate renders the predicate of one leaf. The fragment is empty
// when the leaf places no constraint.
func (a *Adapter) BuildPredicate(field *domain.FieldDescriptor, op domain.Operator, raw json.RawMessage) (sqlexpr.Fragment, error) {
	expr, err := a.Expr(field, op, raw)
	if err != nil {
		return sqlexpr.Fragment{}, err
	}
	return sqlexpr.Render(a.dialect, expr), nil
}

// OperatorTable lists supported operators per kind, with sorted keys for stable output
func (r *Registry) OperatorTable(d sqlexpr.Dialect) map[AdapterKind][]domain.Operator {
	table := make(map[AdapterKind][]domain.Operator, len(Kinds))
	for _, kind := range Kinds {
		table[kind] = r.Supported(d, kind)
	}
	return table
}

// SortedKinds returns the kinds of a table in name order
func SortedKinds(table map[AdapterKind][]domain.Operator) []AdapterKind {
	kinds := make([]AdapterKind, 0, len(table))
	for k := range table {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
