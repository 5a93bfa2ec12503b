package sqlexpr

// Expr is a node of the predicate AST. Nodes are rendered into SQL text
// with "?" placeholders by Render.
type Expr interface {
	writeTo(w *writer)
}

type column struct {
	name string
}

type param struct {
	value interface{}
}

type raw struct {
	sql string
}

type stringLiteral struct {
	value string
}

type function struct {
	name string
	args []Expr
}

type cast struct {
	expr Expr
	typ  string
}

type binary struct {
	op    string
	left  Expr
	right Expr
}

type distinct struct {
	left  Expr
	right Expr
}

type logical struct {
	op    string
	items []Expr
}

type not struct {
	expr Expr
}

type nullCheck struct {
	expr   Expr
	negate bool
}

type like struct {
	expr        Expr
	pattern     Expr
	negate      bool
	insensitive bool
}

type in struct {
	expr   Expr
	values []Expr
	negate bool
}

type exists struct {
	query  Expr
	negate bool
}

type sequence struct {
	parts []Expr
}

// Col references a column. The name is quoted by the dialect.
func Col(name string) Expr { return column{name: name} }

// Arg binds a value as a placeholder argument.
func Arg(value interface{}) Expr { return param{value: value} }

// Args binds each value as its own placeholder.
func Args(values ...interface{}) []Expr {
	out := make([]Expr, len(values))
	for i, v := range values {
		out[i] = Arg(v)
	}
	return out
}

// Raw inserts constant SQL text verbatim. Never pass user input.
func Raw(sql string) Expr { return raw{sql: sql} }

// Str renders a quoted string literal.
func Str(value string) Expr { return stringLiteral{value: value} }

// Fn renders name(args...).
func Fn(name string, args ...Expr) Expr { return function{name: name, args: args} }

// Cast renders CAST(expr AS typ).
func Cast(expr Expr, typ string) Expr { return cast{expr: expr, typ: typ} }

func Eq(left, right Expr) Expr    { return binary{op: "=", left: left, right: right} }
func NotEq(left, right Expr) Expr { return binary{op: "<>", left: left, right: right} }
func Gt(left, right Expr) Expr    { return binary{op: ">", left: left, right: right} }
func GtOrEq(left, right Expr) Expr {
	return binary{op: ">=", left: left, right: right}
}
func Lt(left, right Expr) Expr { return binary{op: "<", left: left, right: right} }
func LtOrEq(left, right Expr) Expr {
	return binary{op: "<=", left: left, right: right}
}

// Op renders "left op right" for operators without a dedicated node,
// such as the jsonb containment operators.
func Op(op string, left, right Expr) Expr { return binary{op: op, left: left, right: right} }

// IsDistinctFrom is the NULL-safe inequality.
func IsDistinctFrom(left, right Expr) Expr { return distinct{left: left, right: right} }

// And joins items with AND. An empty And is always true.
func And(items ...Expr) Expr { return logical{op: "AND", items: items} }

// Or joins items with OR. An empty Or is always false.
func Or(items ...Expr) Expr { return logical{op: "OR", items: items} }

func Not(expr Expr) Expr { return not{expr: expr} }

func IsNull(expr Expr) Expr    { return nullCheck{expr: expr} }
func IsNotNull(expr Expr) Expr { return nullCheck{expr: expr, negate: true} }

// Like renders a LIKE comparison. When insensitive is set the dialect
// picks ILIKE or lower-cases both sides.
func Like(expr, pattern Expr, insensitive bool) Expr {
	return like{expr: expr, pattern: pattern, insensitive: insensitive}
}

func NotLike(expr, pattern Expr, insensitive bool) Expr {
	return like{expr: expr, pattern: pattern, negate: true, insensitive: insensitive}
}

func In(expr Expr, values ...Expr) Expr    { return in{expr: expr, values: values} }
func NotIn(expr Expr, values ...Expr) Expr { return in{expr: expr, values: values, negate: true} }

// Exists renders EXISTS (query).
func Exists(query Expr) Expr    { return exists{query: query} }
func NotExists(query Expr) Expr { return exists{query: query, negate: true} }

// Seq concatenates parts without separators. Used for sub-selects.
func Seq(parts ...Expr) Expr { return sequence{parts: parts} }

// True and False are dialect-neutral constant predicates.
func True() Expr  { return raw{sql: "1 = 1"} }
func False() Expr { return raw{sql: "1 = 0"} }
