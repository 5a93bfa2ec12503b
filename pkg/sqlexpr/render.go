package sqlexpr

import (
	"strings"
)

// likeEscape is the escape character declared on every LIKE pattern
const likeEscape = `\`

// Fragment is rendered SQL text with "?" placeholders and its bound arguments.
// It implements squirrel.Sqlizer so it can be passed to Where().
type Fragment struct {
	SQL  string
	Args []interface{}
}

// ToSql implements squirrel.Sqlizer
func (f Fragment) ToSql() (string, []interface{}, error) {
	return f.SQL, f.Args, nil
}

// IsEmpty returns true when the fragment carries no SQL
func (f Fragment) IsEmpty() bool {
	return f.SQL == ""
}

// Render turns an expression tree into dialect-specific SQL.
func Render(d Dialect, expr Expr) Fragment {
	if expr == nil {
		return Fragment{}
	}
	w := &writer{dialect: d}
	expr.writeTo(w)
	return Fragment{SQL: w.sb.String(), Args: w.args}
}

// EscapeLike escapes LIKE wildcards so the value matches literally
func EscapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

type writer struct {
	dialect Dialect
	sb      strings.Builder
	args    []interface{}
}

func (w *writer) write(s string) {
	w.sb.WriteString(s)
}

func (w *writer) join(items []Expr, sep string) {
	for i, item := range items {
		if i > 0 {
			w.write(sep)
		}
		item.writeTo(w)
	}
}

func (c column) writeTo(w *writer) {
	w.write(w.dialect.QuoteIdent(c.name))
}

func (p param) writeTo(w *writer) {
	w.write("?")
	w.args = append(w.args, p.value)
}

func (r raw) writeTo(w *writer) {
	w.write(r.sql)
}

func (s stringLiteral) writeTo(w *writer) {
	w.write(w.dialect.QuoteString(s.value))
}

func (f function) writeTo(w *writer) {
	w.write(f.name)
	w.write("(")
	w.join(f.args, ", ")
	w.write(")")
}

func (c cast) writeTo(w *writer) {
	w.write("CAST(")
	c.expr.writeTo(w)
	w.write(" AS ")
	w.write(c.typ)
	w.write(")")
}

func (b binary) writeTo(w *writer) {
	b.left.writeTo(w)
	w.write(" " + b.op + " ")
	b.right.writeTo(w)
}

func (d distinct) writeTo(w *writer) {
	d.left.writeTo(w)
	if w.dialect == SQLite {
		w.write(" IS NOT ")
	} else {
		w.write(" IS DISTINCT FROM ")
	}
	d.right.writeTo(w)
}

func (l logical) writeTo(w *writer) {
	switch len(l.items) {
	case 0:
		if l.op == "AND" {
			True().writeTo(w)
		} else {
			False().writeTo(w)
		}
	case 1:
		l.items[0].writeTo(w)
	default:
		w.write("(")
		w.join(l.items, " "+l.op+" ")
		w.write(")")
	}
}

func (n not) writeTo(w *writer) {
	// multi-item groups already carry their parentheses
	if l, ok := n.expr.(logical); ok && len(l.items) > 1 {
		w.write("NOT ")
		l.writeTo(w)
		return
	}
	w.write("NOT (")
	n.expr.writeTo(w)
	w.write(")")
}

func (n nullCheck) writeTo(w *writer) {
	n.expr.writeTo(w)
	if n.negate {
		w.write(" IS NOT NULL")
	} else {
		w.write(" IS NULL")
	}
}

func (l like) writeTo(w *writer) {
	op := " LIKE "
	if l.negate {
		op = " NOT LIKE "
	}

	switch {
	case l.insensitive && w.dialect == Postgres:
		l.expr.writeTo(w)
		if l.negate {
			w.write(" NOT ILIKE ")
		} else {
			w.write(" ILIKE ")
		}
		l.pattern.writeTo(w)
	case l.insensitive:
		Fn("LOWER", l.expr).writeTo(w)
		w.write(op)
		Fn("LOWER", l.pattern).writeTo(w)
	default:
		l.expr.writeTo(w)
		w.write(op)
		l.pattern.writeTo(w)
	}
	w.write(" ESCAPE " + w.dialect.QuoteString(likeEscape))
}

func (i in) writeTo(w *writer) {
	if len(i.values) == 0 {
		if i.negate {
			True().writeTo(w)
		} else {
			False().writeTo(w)
		}
		return
	}
	i.expr.writeTo(w)
	if i.negate {
		w.write(" NOT IN (")
	} else {
		w.write(" IN (")
	}
	w.join(i.values, ", ")
	w.write(")")
}

func (e exists) writeTo(w *writer) {
	if e.negate {
		w.write("NOT ")
	}
	w.write("EXISTS (")
	e.query.writeTo(w)
	w.write(")")
}

func (s sequence) writeTo(w *writer) {
	for _, part := range s.parts {
		part.writeTo(w)
	}
}
