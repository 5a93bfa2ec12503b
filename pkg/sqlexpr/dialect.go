package sqlexpr

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect identifies one of the supported SQL backends
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Dialects lists every supported dialect in a stable order
var Dialects = []Dialect{Postgres, SQLite}

// ParseDialect converts a configuration string into a Dialect
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s (must be 'postgres' or 'sqlite')", s)
	}
}

// Validate checks if the dialect is supported
func (d Dialect) Validate() error {
	switch d {
	case Postgres, SQLite:
		return nil
	}
	return fmt.Errorf("invalid dialect: %s", d)
}

// PlaceholderFormat returns the squirrel placeholder format used by the driver
func (d Dialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// StatementBuilder returns a squirrel builder bound to the dialect's placeholders
func (d Dialect) StatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.PlaceholderFormat())
}

// QuoteIdent quotes a column reference. Dotted references such as
// "t.name" are quoted part by part.
func (d Dialect) QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// QuoteString renders s as a single-quoted SQL string literal
func (d Dialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Coalesce returns the dialect's NULL-coalescing function name
func (d Dialect) Coalesce() string {
	if d == SQLite {
		return "IFNULL"
	}
	return "COALESCE"
}
