package service

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Gridfuse/gridfuse/internal/daterange"
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/internal/filter"
	fieldsort "github.com/Gridfuse/gridfuse/internal/sort"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// RecordIDColumn is the primary key column of every record table
const RecordIDColumn = "__id"

// QueryBuilder compiles filter trees and sort clauses into SQL for one dialect
type QueryBuilder struct {
	dialect sqlexpr.Dialect
	dates   *daterange.Calculator
	filters *filter.Adapter
	sorts   *fieldsort.Adapter
}

// CompiledQuery is the result of one compile pass. Where is empty when the
// filter places no constraint.
type CompiledQuery struct {
	Where   sqlexpr.Fragment
	OrderBy []string
}

// NewQueryBuilder creates a query builder. The calculator supplies "now",
// the week start and the default timezone for date filters and date sorts.
func NewQueryBuilder(dialect sqlexpr.Dialect, dates *daterange.Calculator) *QueryBuilder {
	return NewQueryBuilderWithRegistry(dialect, filter.NewRegistry(dates), dates)
}

// NewQueryBuilderWithRegistry creates a query builder sharing an existing
// registry. A builder without a calculator fails every Compile.
func NewQueryBuilderWithRegistry(dialect sqlexpr.Dialect, registry *filter.Registry, dates *daterange.Calculator) *QueryBuilder {
	qb := &QueryBuilder{
		dialect: dialect,
		dates:   dates,
		filters: registry.Adapter(dialect),
	}
	if dates != nil {
		qb.sorts = fieldsort.NewAdapter(dialect, dates.DefaultTimeZone, dates.Now)
	}
	return qb
}

// Dialect returns the builder's dialect
func (qb *QueryBuilder) Dialect() sqlexpr.Dialect {
	return qb.dialect
}

// Compile converts a filter tree and sort clauses into WHERE and ORDER BY
// fragments. Any failing leaf or sort clause fails the whole compile.
func (qb *QueryBuilder) Compile(tree *domain.FilterNode, sorts []domain.SortClause, fields domain.FieldMap) (*CompiledQuery, error) {
	if qb.dates == nil {
		return nil, filter.ErrNoDateCalculator
	}
	compiled := &CompiledQuery{}

	if tree != nil {
		if err := tree.Validate(); err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		expr, err := qb.parseNode(tree, fields)
		if err != nil {
			return nil, err
		}
		compiled.Where = sqlexpr.Render(qb.dialect, expr)
	}

	for i, clause := range sorts {
		if err := clause.Validate(); err != nil {
			return nil, fmt.Errorf("invalid sort %d: %w", i, err)
		}
		field, err := fields.Get(clause.FieldID)
		if err != nil {
			return nil, err
		}
		fragment, err := qb.sorts.BuildSort(field, clause.Order)
		if err != nil {
			return nil, err
		}
		compiled.OrderBy = append(compiled.OrderBy, fragment.SQL)
	}

	return compiled, nil
}

// BuildSQL compiles a full record id query against table, with
// dialect placeholders. The record id is the final sort key so that
// results are stable across pages.
func (qb *QueryBuilder) BuildSQL(table string, tree *domain.FilterNode, sorts []domain.SortClause, fields domain.FieldMap) (string, []interface{}, error) {
	if table == "" {
		return "", nil, fmt.Errorf("table cannot be empty")
	}

	compiled, err := qb.Compile(tree, sorts, fields)
	if err != nil {
		return "", nil, err
	}

	return qb.Select(table, compiled).ToSql()
}

// Select wraps a compiled query into a squirrel select of the record ids
func (qb *QueryBuilder) Select(table string, compiled *CompiledQuery) squirrel.SelectBuilder {
	id := qb.dialect.QuoteIdent(RecordIDColumn)
	query := qb.dialect.StatementBuilder().
		Select(id).
		From(qb.dialect.QuoteIdent(table))
	if !compiled.Where.IsEmpty() {
		query = query.Where(compiled.Where)
	}
	orderBy := make([]string, 0, len(compiled.OrderBy)+1)
	orderBy = append(orderBy, compiled.OrderBy...)
	return query.OrderBy(append(orderBy, id+" ASC")...)
}

// parseNode recursively parses a tree node. A nil expression means the
// node places no constraint.
func (qb *QueryBuilder) parseNode(node *domain.FilterNode, fields domain.FieldMap) (sqlexpr.Expr, error) {
	switch node.Kind {
	case domain.FilterNodeKindGroup:
		return qb.parseGroup(node.Group, fields)
	case domain.FilterNodeKindLeaf:
		return qb.parseLeaf(node.Leaf, fields)
	default:
		return nil, fmt.Errorf("invalid node kind: %s", node.Kind)
	}
}

// parseGroup joins the children with the group's conjunction. Children
// without constraints are dropped and an empty group is dropped entirely.
func (qb *QueryBuilder) parseGroup(group *domain.FilterGroup, fields domain.FieldMap) (sqlexpr.Expr, error) {
	if group == nil {
		return nil, fmt.Errorf("group cannot be nil")
	}

	var conditions []sqlexpr.Expr
	for _, child := range group.Children {
		condition, err := qb.parseNode(child, fields)
		if err != nil {
			return nil, err
		}
		if condition != nil {
			conditions = append(conditions, condition)
		}
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	if group.Conjunction == domain.ConjunctionOr {
		return sqlexpr.Or(conditions...), nil
	}
	return sqlexpr.And(conditions...), nil
}

// parseLeaf resolves the field and delegates to the dialect's adapter
func (qb *QueryBuilder) parseLeaf(leaf *domain.FilterLeaf, fields domain.FieldMap) (sqlexpr.Expr, error) {
	if leaf == nil {
		return nil, fmt.Errorf("leaf cannot be nil")
	}
	field, err := fields.Get(leaf.FieldID)
	if err != nil {
		return nil, err
	}
	return qb.filters.Expr(field, leaf.Operator, leaf.Value)
}
