package filter

import (
	"encoding/json"

	"github.com/lib/pq"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// Multi-value cells are JSON arrays: jsonb in Postgres, JSON text in SQLite.
// Both dialects agree on the empty-list truth table: hasAllOf, hasNoneOf and
// isNoneOf of [] match every row, hasAnyOf and isAnyOf of [] match none, and
// a NULL cell is the empty set.

type multiBuilder func(c *Condition, values []string) sqlexpr.Expr

func withList(fn multiBuilder) BuilderFunc {
	return func(c *Condition) (sqlexpr.Expr, error) {
		values, err := c.list()
		if err != nil {
			return nil, err
		}
		return fn(c, values), nil
	}
}

func registerMultiPostgres(r *Registry) {
	hasAnyOf := withList(func(c *Condition, values []string) sqlexpr.Expr {
		if len(values) == 0 {
			return sqlexpr.False()
		}
		return jsonbExists("jsonb_exists_any", c, values)
	})
	hasNoneOf := withList(func(c *Condition, values []string) sqlexpr.Expr {
		if len(values) == 0 {
			return sqlexpr.True()
		}
		return sqlexpr.Not(sqlexpr.Fn("COALESCE", jsonbExists("jsonb_exists_any", c, values), sqlexpr.Raw("FALSE")))
	})

	r.registerAll(sqlexpr.Postgres, KindMulti, map[domain.Operator]BuilderFunc{
		domain.OperatorHasAnyOf:  hasAnyOf,
		domain.OperatorIsAnyOf:   hasAnyOf,
		domain.OperatorHasNoneOf: hasNoneOf,
		domain.OperatorIsNoneOf:  hasNoneOf,
		domain.OperatorHasAllOf: withList(func(c *Condition, values []string) sqlexpr.Expr {
			if len(values) == 0 {
				return sqlexpr.True()
			}
			return jsonbExists("jsonb_exists_all", c, values)
		}),
		domain.OperatorIsExactly: withList(func(c *Condition, values []string) sqlexpr.Expr {
			set := jsonbOrEmpty(c)
			return sqlexpr.And(
				sqlexpr.Op("@>", set, jsonbArg(values)),
				sqlexpr.Op("<@", set, jsonbArg(values)),
			)
		}),
		domain.OperatorIsEmpty: func(c *Condition) (sqlexpr.Expr, error) {
			return sqlexpr.Or(
				sqlexpr.IsNull(c.Column()),
				sqlexpr.Eq(sqlexpr.Fn("jsonb_array_length", c.Column()), sqlexpr.Raw("0")),
			), nil
		},
		domain.OperatorIsNotEmpty: func(c *Condition) (sqlexpr.Expr, error) {
			return sqlexpr.And(
				sqlexpr.IsNotNull(c.Column()),
				sqlexpr.Gt(sqlexpr.Fn("jsonb_array_length", c.Column()), sqlexpr.Raw("0")),
			), nil
		},
	})
}

func jsonbExists(fn string, c *Condition, values []string) sqlexpr.Expr {
	return sqlexpr.Fn(fn, c.Column(), sqlexpr.Cast(sqlexpr.Arg(pq.Array(values)), "text[]"))
}

func jsonbOrEmpty(c *Condition) sqlexpr.Expr {
	return sqlexpr.Fn("COALESCE", c.Column(), sqlexpr.Raw("'[]'::jsonb"))
}

func jsonbArg(values []string) sqlexpr.Expr {
	// []string always marshals
	b, _ := json.Marshal(values)
	return sqlexpr.Cast(sqlexpr.Arg(string(b)), "jsonb")
}

func registerMultiSQLite(r *Registry) {
	hasAnyOf := withList(func(c *Condition, values []string) sqlexpr.Expr {
		if len(values) == 0 {
			return sqlexpr.False()
		}
		return sqlexpr.Exists(jsonEachWhere(c, sqlexpr.In(jsonValue, listArgs(values)...)))
	})
	hasNoneOf := withList(func(c *Condition, values []string) sqlexpr.Expr {
		if len(values) == 0 {
			return sqlexpr.True()
		}
		return sqlexpr.NotExists(jsonEachWhere(c, sqlexpr.In(jsonValue, listArgs(values)...)))
	})
	hasAllOf := func(c *Condition, values []string) sqlexpr.Expr {
		if len(values) == 0 {
			return sqlexpr.True()
		}
		return sqlexpr.Eq(jsonDistinctCount(c, values), sqlexpr.Arg(len(values)))
	}
	isEmpty := func(c *Condition) (sqlexpr.Expr, error) {
		return sqlexpr.Or(
			sqlexpr.IsNull(c.Column()),
			sqlexpr.Eq(sqlexpr.Fn("json_array_length", c.Column()), sqlexpr.Raw("0")),
		), nil
	}

	r.registerAll(sqlexpr.SQLite, KindMulti, map[domain.Operator]BuilderFunc{
		domain.OperatorHasAnyOf:  hasAnyOf,
		domain.OperatorIsAnyOf:   hasAnyOf,
		domain.OperatorHasNoneOf: hasNoneOf,
		domain.OperatorIsNoneOf:  hasNoneOf,
		domain.OperatorHasAllOf:  withList(hasAllOf),
		domain.OperatorIsExactly: func(c *Condition) (sqlexpr.Expr, error) {
			values, err := c.list()
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return isEmpty(c)
			}
			return sqlexpr.And(
				hasAllOf(c, values),
				sqlexpr.NotExists(jsonEachWhere(c, sqlexpr.NotIn(jsonValue, listArgs(values)...))),
			), nil
		},
		domain.OperatorIsEmpty: isEmpty,
		domain.OperatorIsNotEmpty: func(c *Condition) (sqlexpr.Expr, error) {
			return sqlexpr.And(
				sqlexpr.IsNotNull(c.Column()),
				sqlexpr.Gt(sqlexpr.Fn("json_array_length", c.Column()), sqlexpr.Raw("0")),
			), nil
		},
	})
}

var jsonValue = sqlexpr.Raw("json_each.value")

// jsonEachWhere renders SELECT 1 FROM json_each(col) WHERE cond
func jsonEachWhere(c *Condition, cond sqlexpr.Expr) sqlexpr.Expr {
	return sqlexpr.Seq(
		sqlexpr.Raw("SELECT 1 FROM "),
		sqlexpr.Fn("json_each", c.Column()),
		sqlexpr.Raw(" WHERE "),
		cond,
	)
}

func jsonDistinctCount(c *Condition, values []string) sqlexpr.Expr {
	return sqlexpr.Seq(
		sqlexpr.Raw("(SELECT COUNT(DISTINCT json_each.value) FROM "),
		sqlexpr.Fn("json_each", c.Column()),
		sqlexpr.Raw(" WHERE "),
		sqlexpr.In(jsonValue, listArgs(values)...),
		sqlexpr.Raw(")"),
	)
}
