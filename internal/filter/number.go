package filter

import (
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

func registerNumber(r *Registry, d sqlexpr.Dialect) {
	r.registerAll(d, KindNumber, map[domain.Operator]BuilderFunc{
		domain.OperatorIs:             numberCompare(sqlexpr.Eq),
		domain.OperatorIsNot:          numberCompare(sqlexpr.IsDistinctFrom),
		domain.OperatorIsGreater:      numberCompare(sqlexpr.Gt),
		domain.OperatorIsGreaterEqual: numberCompare(sqlexpr.GtOrEq),
		domain.OperatorIsLess:         numberCompare(sqlexpr.Lt),
		domain.OperatorIsLessEqual:    numberCompare(sqlexpr.LtOrEq),
		domain.OperatorIsEmpty:        isNull,
		domain.OperatorIsNotEmpty:     isNotNull,
	})
}

func numberCompare(cmp func(left, right sqlexpr.Expr) sqlexpr.Expr) BuilderFunc {
	return func(c *Condition) (sqlexpr.Expr, error) {
		n, err := c.Value.Number()
		if err != nil {
			return nil, c.invalid(err.Error())
		}
		return cmp(c.Column(), sqlexpr.Arg(n)), nil
	}
}
