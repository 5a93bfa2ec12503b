package filter

import (
	"errors"
	"time"

	"github.com/Gridfuse/gridfuse/internal/daterange"
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// SQLiteTimeLayout is how date cells are stored in SQLite tables. Boundaries
// are bound in the same layout so text comparison orders correctly.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000Z"

func registerDate(r *Registry, d sqlexpr.Dialect) {
	r.registerAll(d, KindDateTime, map[domain.Operator]BuilderFunc{
		domain.OperatorIs:             dateWithin(false),
		domain.OperatorIsWithIn:       dateWithin(false),
		domain.OperatorIsNot:          dateWithin(true),
		domain.OperatorIsOnOrAfter:    dateOnOrAfter,
		domain.OperatorIsGreaterEqual: dateOnOrAfter,
		domain.OperatorIsOnOrBefore:   dateOnOrBefore,
		domain.OperatorIsLessEqual:    dateOnOrBefore,
		domain.OperatorIsAfter:        dateAfter,
		domain.OperatorIsGreater:      dateAfter,
		domain.OperatorIsBefore:       dateBefore,
		domain.OperatorIsLess:         dateBefore,
		domain.OperatorIsEmpty:        isNull,
		domain.OperatorIsNotEmpty:     isNotNull,
	})
}

// ErrNoDateCalculator is returned for date leaves compiled without a calculator
var ErrNoDateCalculator = errors.New("no date calculator configured")

func (c *Condition) calculator() (*daterange.Calculator, error) {
	if c.Dates == nil {
		return nil, ErrNoDateCalculator
	}
	return c.Dates, nil
}

// interval resolves the date query. Ranges widen instant modes to their day.
func (c *Condition) interval(asRange bool) (daterange.Interval, error) {
	calc, err := c.calculator()
	if err != nil {
		return daterange.Interval{}, err
	}
	q, err := c.Value.DateQuery()
	if err != nil {
		return daterange.Interval{}, err
	}
	if asRange {
		return calc.ComputeRange(q, c.Field)
	}
	return calc.Compute(q, c.Field)
}

// boundary binds an instant in the representation the dialect stores
func (c *Condition) boundary(t time.Time) sqlexpr.Expr {
	if c.Dialect == sqlexpr.SQLite {
		return sqlexpr.Arg(t.UTC().Format(SQLiteTimeLayout))
	}
	return sqlexpr.Arg(t.UTC())
}

func dateWithin(negate bool) BuilderFunc {
	return func(c *Condition) (sqlexpr.Expr, error) {
		iv, err := c.interval(true)
		if err != nil {
			return nil, err
		}
		within := sqlexpr.And(
			sqlexpr.GtOrEq(c.Column(), c.boundary(iv.Start)),
			sqlexpr.Lt(c.Column(), c.boundary(iv.End)),
		)
		if !negate {
			return within, nil
		}
		return sqlexpr.Or(sqlexpr.Not(within), sqlexpr.IsNull(c.Column())), nil
	}
}

func dateOnOrAfter(c *Condition) (sqlexpr.Expr, error) {
	iv, err := c.interval(false)
	if err != nil {
		return nil, err
	}
	return sqlexpr.GtOrEq(c.Column(), c.boundary(iv.Start)), nil
}

func dateOnOrBefore(c *Condition) (sqlexpr.Expr, error) {
	iv, err := c.interval(false)
	if err != nil {
		return nil, err
	}
	if iv.Instant {
		return sqlexpr.LtOrEq(c.Column(), c.boundary(iv.Start)), nil
	}
	return sqlexpr.Lt(c.Column(), c.boundary(iv.End)), nil
}

func dateAfter(c *Condition) (sqlexpr.Expr, error) {
	iv, err := c.interval(false)
	if err != nil {
		return nil, err
	}
	if iv.Instant {
		return sqlexpr.Gt(c.Column(), c.boundary(iv.Start)), nil
	}
	return sqlexpr.GtOrEq(c.Column(), c.boundary(iv.End)), nil
}

func dateBefore(c *Condition) (sqlexpr.Expr, error) {
	iv, err := c.interval(false)
	if err != nil {
		return nil, err
	}
	return sqlexpr.Lt(c.Column(), c.boundary(iv.Start)), nil
}
