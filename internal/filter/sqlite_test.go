package filter

import (
	"database/sql"
	"encoding/json"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// setupSQLite seeds five rows covering NULLs, empty strings and empty lists
func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE records (
		__id TEXT PRIMARY KEY,
		name TEXT,
		age REAL,
		num_text TEXT,
		done BOOLEAN,
		due TEXT,
		tags TEXT
	)`)
	require.NoError(t, err)

	rows := []struct {
		id      string
		name    interface{}
		age     interface{}
		numText interface{}
		done    interface{}
		due     interface{}
		tags    interface{}
	}{
		{"r1", "Ann", 30, "1.5", true, "2024-03-14T16:00:00.000Z", `["a","b"]`},
		{"r2", "bob", 20, "2", false, "2024-03-15T16:00:00.000Z", `["b"]`},
		{"r3", nil, nil, nil, nil, nil, nil},
		{"r4", "50% off", 5, "abc", true, "2024-03-13T20:00:00.000Z", `[]`},
		{"r5", "", 0, "1.50", false, "2024-03-15T15:59:59.999Z", `["c","a","b"]`},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO records VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.id, r.name, r.age, r.numText, r.done, r.due, r.tags)
		require.NoError(t, err)
	}
	return db
}

func matchingIDs(t *testing.T, db *sql.DB, predicate sqlexpr.Fragment) []string {
	t.Helper()
	query, args, err := sqlexpr.SQLite.StatementBuilder().
		Select("__id").From("records").Where(predicate).OrderBy("__id").ToSql()
	require.NoError(t, err)

	rows, err := db.Query(query, args...)
	require.NoError(t, err, query)
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestSQLiteExecution(t *testing.T) {
	db := setupSQLite(t)
	adapter := newTestRegistry().Adapter(sqlexpr.SQLite)

	dq := func(mode domain.DateMode) map[string]interface{} {
		return map[string]interface{}{"mode": mode, "timeZone": "Asia/Singapore"}
	}

	testCases := []struct {
		name     string
		field    *domain.FieldDescriptor
		operator domain.Operator
		value    interface{}
		expected []string
	}{
		{"string is ignores case", nameField, domain.OperatorIs, "ANN", []string{"r1"}},
		{"string isNot includes null and empty", nameField, domain.OperatorIsNot, "ann", []string{"r2", "r3", "r4", "r5"}},
		{"contains matches wildcards literally", nameField, domain.OperatorContains, "%", []string{"r4"}},
		{"doesNotContain includes null", nameField, domain.OperatorDoesNotContain, "B", []string{"r1", "r3", "r4", "r5"}},
		{"string isEmpty", nameField, domain.OperatorIsEmpty, nil, []string{"r3", "r5"}},
		{"string isNotEmpty", nameField, domain.OperatorIsNotEmpty, nil, []string{"r1", "r2", "r4"}},
		{"isNoneOf keeps nulls", nameField, domain.OperatorIsNoneOf, []string{"Ann"}, []string{"r2", "r3", "r4", "r5"}},
		{"isNoneOf empty list", nameField, domain.OperatorIsNoneOf, []string{}, []string{"r1", "r2", "r3", "r4", "r5"}},
		{"isAnyOf empty list", nameField, domain.OperatorIsAnyOf, []string{}, []string{}},
		{"number text coerced", numTextField, domain.OperatorIs, "1.50", []string{"r1"}},
		{"number isGreater", ageField, domain.OperatorIsGreater, 10, []string{"r1", "r2"}},
		{"number isNot includes null", ageField, domain.OperatorIsNot, 20, []string{"r1", "r3", "r4", "r5"}},
		{"number isLess excludes null", ageField, domain.OperatorIsLess, 10, []string{"r4", "r5"}},
		{"number is zero", ageField, domain.OperatorIs, 0, []string{"r5"}},
		{"boolean is true", doneField, domain.OperatorIs, true, []string{"r1", "r4"}},
		{"boolean is false includes null", doneField, domain.OperatorIs, false, []string{"r2", "r3", "r5"}},
		{"date is today is half-open", dueField, domain.OperatorIs, dq(domain.DateModeToday), []string{"r1", "r5"}},
		{"date isNot today", dueField, domain.OperatorIsNot, dq(domain.DateModeToday), []string{"r2", "r3", "r4"}},
		{"date isOnOrAfter yesterday", dueField, domain.OperatorIsOnOrAfter, dq(domain.DateModeYesterday), []string{"r1", "r2", "r4", "r5"}},
		{"date isBefore today", dueField, domain.OperatorIsBefore, dq(domain.DateModeToday), []string{"r4"}},
		{"date isEmpty", dueField, domain.OperatorIsEmpty, nil, []string{"r3"}},
		{"hasAnyOf", tagsField, domain.OperatorHasAnyOf, []string{"a"}, []string{"r1", "r5"}},
		{"hasAnyOf empty list", tagsField, domain.OperatorHasAnyOf, []string{}, []string{}},
		{"hasAllOf", tagsField, domain.OperatorHasAllOf, []string{"a", "b"}, []string{"r1", "r5"}},
		{"hasAllOf empty list matches every row", tagsField, domain.OperatorHasAllOf, []string{}, []string{"r1", "r2", "r3", "r4", "r5"}},
		{"hasNoneOf includes null and empty", tagsField, domain.OperatorHasNoneOf, []string{"a"}, []string{"r2", "r3", "r4"}},
		{"isNoneOf empty list matches every row", tagsField, domain.OperatorIsNoneOf, []string{}, []string{"r1", "r2", "r3", "r4", "r5"}},
		{"isExactly ignores order", tagsField, domain.OperatorIsExactly, []string{"b", "a"}, []string{"r1"}},
		{"isExactly single", tagsField, domain.OperatorIsExactly, []string{"b"}, []string{"r2"}},
		{"isExactly empty list", tagsField, domain.OperatorIsExactly, []string{}, []string{"r3", "r4"}},
		{"multi isEmpty", tagsField, domain.OperatorIsEmpty, nil, []string{"r3", "r4"}},
		{"multi isNotEmpty", tagsField, domain.OperatorIsNotEmpty, nil, []string{"r1", "r2", "r5"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var value json.RawMessage
			if tc.value != nil {
				value = raw(t, tc.value)
			}
			predicate, err := adapter.BuildPredicate(tc.field, tc.operator, value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, matchingIDs(t, db, predicate), predicate.SQL)
		})
	}
}
