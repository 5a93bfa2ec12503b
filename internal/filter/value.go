package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Gridfuse/gridfuse/internal/domain"
)

// Value wraps the raw JSON value of a filter leaf. Its shape (scalar, array
// or date query object) is only known once the operator and field are.
type Value struct {
	raw    json.RawMessage
	result gjson.Result
}

// ParseValue wraps a raw leaf value
func ParseValue(raw json.RawMessage) Value {
	return Value{raw: raw, result: gjson.ParseBytes(raw)}
}

// Raw returns the JSON text of the value
func (v Value) Raw() string {
	return string(v.raw)
}

// IsNull returns true for a missing or JSON null value
func (v Value) IsNull() bool {
	return len(v.raw) == 0 || v.result.Type == gjson.Null
}

// IsArray returns true when the value is a JSON array
func (v Value) IsArray() bool {
	return v.result.IsArray()
}

// IsDateQuery returns true when the value is an object carrying a mode
func (v Value) IsDateQuery() bool {
	return v.result.IsObject() && v.result.Get("mode").Exists()
}

// String returns the scalar as text. Numbers keep their JSON spelling.
func (v Value) String() (string, bool) {
	return scalarString(v.result)
}

// Number coerces a JSON number or numeric string
func (v Value) Number() (float64, error) {
	switch v.result.Type {
	case gjson.Number:
		return v.result.Num, nil
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.result.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected a number, got %s", v.result.Type)
}

// Bool coerces a JSON boolean or "true"/"false" string
func (v Value) Bool() (bool, error) {
	switch v.result.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(v.result.Str))
		if err != nil {
			return false, fmt.Errorf("not a boolean")
		}
		return b, nil
	}
	return false, fmt.Errorf("expected a boolean, got %s", v.result.Type)
}

// Strings returns the elements of an array value, or the scalar as a
// one-element list. Duplicates are dropped, first occurrence wins.
func (v Value) Strings() ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsArray() {
		s, ok := v.String()
		if !ok {
			return nil, fmt.Errorf("expected a list of values")
		}
		return []string{s}, nil
	}

	var out []string
	seen := map[string]bool{}
	var bad error
	v.result.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.Null {
			return true
		}
		s, ok := scalarString(item)
		if !ok {
			bad = fmt.Errorf("list elements must be scalars")
			return false
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// DateQuery decodes a date query object. A bare timestamp string is read
// as an exactDate query.
func (v Value) DateQuery() (domain.DateQueryValue, error) {
	if v.result.Type == gjson.String {
		t, err := time.Parse(time.RFC3339Nano, v.result.Str)
		if err != nil {
			return domain.DateQueryValue{}, domain.NewConfigurationError(domain.DateModeExactDate, "invalid date: "+v.result.Str)
		}
		return domain.DateQueryValue{Mode: domain.DateModeExactDate, ExactDate: &t}, nil
	}
	if !v.IsDateQuery() {
		return domain.DateQueryValue{}, domain.NewConfigurationError("", "expected a date query object")
	}

	var q domain.DateQueryValue
	if err := json.Unmarshal(v.raw, &q); err != nil {
		return domain.DateQueryValue{}, domain.NewConfigurationError(domain.DateMode(v.result.Get("mode").String()), err.Error())
	}
	return q, nil
}

func scalarString(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.Str, true
	case gjson.Number:
		return r.Raw, true
	case gjson.True:
		return "true", true
	case gjson.False:
		return "false", true
	}
	return "", false
}
