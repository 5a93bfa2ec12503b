package filter

import (
	"strconv"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

func registerString(r *Registry, d sqlexpr.Dialect) {
	r.registerAll(d, KindString, map[domain.Operator]BuilderFunc{
		domain.OperatorIs:             stringIs,
		domain.OperatorIsNot:          stringIsNot,
		domain.OperatorContains:       stringContains,
		domain.OperatorDoesNotContain: stringDoesNotContain,
		domain.OperatorIsAnyOf:        stringIsAnyOf,
		domain.OperatorIsNoneOf:       stringIsNoneOf,
		domain.OperatorIsEmpty:        stringIsEmpty,
		domain.OperatorIsNotEmpty:     stringIsNotEmpty,
	})
}

// equalityValue returns the bound value for is/isNot. Fields whose cell value
// type is number are compared against the value coerced to a number and
// spelled in its shortest form, so "01.50" matches a stored "1.5".
func (c *Condition) equalityValue() (interface{}, error) {
	if c.Field.CellValueType == domain.CellValueTypeNumber {
		n, err := c.Value.Number()
		if err != nil {
			return nil, c.invalid(err.Error())
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	s, ok := c.Value.String()
	if !ok {
		return nil, c.invalid("expected a scalar value")
	}
	return s, nil
}

func (c *Condition) text() (string, error) {
	s, ok := c.Value.String()
	if !ok {
		return "", c.invalid("expected a scalar value")
	}
	return s, nil
}

func lower(e sqlexpr.Expr) sqlexpr.Expr {
	return sqlexpr.Fn("LOWER", e)
}

func stringIs(c *Condition) (sqlexpr.Expr, error) {
	v, err := c.equalityValue()
	if err != nil {
		return nil, err
	}
	return sqlexpr.Eq(lower(c.Column()), lower(sqlexpr.Arg(v))), nil
}

func stringIsNot(c *Condition) (sqlexpr.Expr, error) {
	v, err := c.equalityValue()
	if err != nil {
		return nil, err
	}
	return sqlexpr.IsDistinctFrom(lower(c.Column()), lower(sqlexpr.Arg(v))), nil
}

func containsPattern(s string) sqlexpr.Expr {
	return sqlexpr.Arg("%" + sqlexpr.EscapeLike(s) + "%")
}

func stringContains(c *Condition) (sqlexpr.Expr, error) {
	s, err := c.text()
	if err != nil {
		return nil, err
	}
	return sqlexpr.Like(c.Column(), containsPattern(s), true), nil
}

// stringDoesNotContain treats NULL as the empty string so NULL rows match
func stringDoesNotContain(c *Condition) (sqlexpr.Expr, error) {
	s, err := c.text()
	if err != nil {
		return nil, err
	}
	col := sqlexpr.Fn(c.Dialect.Coalesce(), c.Column(), sqlexpr.Str(""))
	return sqlexpr.NotLike(col, containsPattern(s), true), nil
}

func (c *Condition) list() ([]string, error) {
	values, err := c.Value.Strings()
	if err != nil {
		return nil, c.invalid(err.Error())
	}
	return values, nil
}

func listArgs(values []string) []sqlexpr.Expr {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return sqlexpr.Args(args...)
}

func stringIsAnyOf(c *Condition) (sqlexpr.Expr, error) {
	values, err := c.list()
	if err != nil {
		return nil, err
	}
	return sqlexpr.In(c.Column(), listArgs(values)...), nil
}

func stringIsNoneOf(c *Condition) (sqlexpr.Expr, error) {
	values, err := c.list()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return sqlexpr.True(), nil
	}
	return sqlexpr.Or(sqlexpr.IsNull(c.Column()), sqlexpr.NotIn(c.Column(), listArgs(values)...)), nil
}

func stringIsEmpty(c *Condition) (sqlexpr.Expr, error) {
	return sqlexpr.Or(sqlexpr.IsNull(c.Column()), sqlexpr.Eq(c.Column(), sqlexpr.Str(""))), nil
}

func stringIsNotEmpty(c *Condition) (sqlexpr.Expr, error) {
	return sqlexpr.And(sqlexpr.IsNotNull(c.Column()), sqlexpr.NotEq(c.Column(), sqlexpr.Str(""))), nil
}

// isNull and isNotNull serve the scalar kinds without an empty-string form
func isNull(c *Condition) (sqlexpr.Expr, error) {
	return sqlexpr.IsNull(c.Column()), nil
}

func isNotNull(c *Condition) (sqlexpr.Expr, error) {
	return sqlexpr.IsNotNull(c.Column()), nil
}
