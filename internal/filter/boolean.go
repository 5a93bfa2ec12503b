package filter

import (
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

func registerBoolean(r *Registry, d sqlexpr.Dialect) {
	r.registerAll(d, KindBoolean, map[domain.Operator]BuilderFunc{
		domain.OperatorIs:         booleanIs(false),
		domain.OperatorIsNot:      booleanIs(true),
		domain.OperatorIsEmpty:    isNull,
		domain.OperatorIsNotEmpty: isNotNull,
	})
}

// booleanIs matches checked cells for true and unchecked or NULL cells for false
func booleanIs(negate bool) BuilderFunc {
	return func(c *Condition) (sqlexpr.Expr, error) {
		b, err := c.Value.Bool()
		if err != nil {
			return nil, c.invalid(err.Error())
		}
		if negate {
			b = !b
		}
		if b {
			return sqlexpr.Eq(c.Column(), sqlexpr.Raw("TRUE")), nil
		}
		return sqlexpr.Or(sqlexpr.IsNull(c.Column()), sqlexpr.Eq(c.Column(), sqlexpr.Raw("FALSE"))), nil
	}
}
