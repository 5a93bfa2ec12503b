package filter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gridfuse/gridfuse/internal/domain"
)

func TestValue_Shapes(t *testing.T) {
	t.Run("null", func(t *testing.T) {
		assert.True(t, ParseValue(nil).IsNull())
		assert.True(t, ParseValue(json.RawMessage(`null`)).IsNull())
		assert.False(t, ParseValue(json.RawMessage(`""`)).IsNull())
	})

	t.Run("array and date query", func(t *testing.T) {
		assert.True(t, ParseValue(json.RawMessage(`["a"]`)).IsArray())
		assert.True(t, ParseValue(json.RawMessage(`{"mode":"today"}`)).IsDateQuery())
		assert.False(t, ParseValue(json.RawMessage(`{"timeZone":"UTC"}`)).IsDateQuery())
	})

	t.Run("string keeps number spelling", func(t *testing.T) {
		s, ok := ParseValue(json.RawMessage(`1.50`)).String()
		assert.True(t, ok)
		assert.Equal(t, "1.50", s)

		_, ok = ParseValue(json.RawMessage(`{"a":1}`)).String()
		assert.False(t, ok)
	})
}

func TestValue_Number(t *testing.T) {
	n, err := ParseValue(json.RawMessage(`42.5`)).Number()
	require.NoError(t, err)
	assert.Equal(t, 42.5, n)

	n, err = ParseValue(json.RawMessage(`" -3 "`)).Number()
	require.NoError(t, err)
	assert.Equal(t, float64(-3), n)

	_, err = ParseValue(json.RawMessage(`"abc"`)).Number()
	assert.Error(t, err)

	_, err = ParseValue(json.RawMessage(`true`)).Number()
	assert.Error(t, err)
}

func TestValue_Bool(t *testing.T) {
	b, err := ParseValue(json.RawMessage(`true`)).Bool()
	require.NoError(t, err)
	assert.True(t, b)

	b, err = ParseValue(json.RawMessage(`"false"`)).Bool()
	require.NoError(t, err)
	assert.False(t, b)

	_, err = ParseValue(json.RawMessage(`1.5`)).Bool()
	assert.Error(t, err)
}

func TestValue_Strings(t *testing.T) {
	values, err := ParseValue(json.RawMessage(`["b", 1, true, null, "b"]`)).Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "1", "true"}, values)

	values, err = ParseValue(json.RawMessage(`[]`)).Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{}, values)

	values, err = ParseValue(json.RawMessage(`"solo"`)).Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, values)

	_, err = ParseValue(json.RawMessage(`[{"id":"x"}]`)).Strings()
	assert.Error(t, err)
}

func TestValue_DateQuery(t *testing.T) {
	q, err := ParseValue(json.RawMessage(`{"mode":"daysAgo","numberOfDays":3,"timeZone":"Asia/Singapore"}`)).DateQuery()
	require.NoError(t, err)
	assert.Equal(t, domain.DateModeDaysAgo, q.Mode)
	require.NotNil(t, q.NumberOfDays)
	assert.Equal(t, 3, *q.NumberOfDays)
	assert.Equal(t, "Asia/Singapore", q.TimeZone)

	q, err = ParseValue(json.RawMessage(`"2024-03-20T18:30:45Z"`)).DateQuery()
	require.NoError(t, err)
	assert.Equal(t, domain.DateModeExactDate, q.Mode)
	require.NotNil(t, q.ExactDate)
	assert.True(t, q.ExactDate.Equal(time.Date(2024, 3, 20, 18, 30, 45, 0, time.UTC)))

	_, err = ParseValue(json.RawMessage(`{"mode":"today","numberOfDays":"x"}`)).DateQuery()
	assert.True(t, domain.IsConfigurationError(err))
}
