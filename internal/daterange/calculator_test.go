package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gridfuse/gridfuse/internal/domain"
)

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func fixedNow(s string) func() time.Time {
	t := utc(s)
	return func() time.Time { return t }
}

func intPtr(n int) *int { return &n }

func TestCalculator_PeriodModes(t *testing.T) {
	// Friday 2024-03-15 10:00 in Singapore (UTC+8)
	calc := NewCalculator(fixedNow("2024-03-15T02:00:00Z"), time.Sunday, "")

	testCases := []struct {
		name  string
		value domain.DateQueryValue
		start string
		end   string
	}{
		{"today", domain.DateQueryValue{Mode: domain.DateModeToday}, "2024-03-14T16:00:00Z", "2024-03-15T16:00:00Z"},
		{"tomorrow", domain.DateQueryValue{Mode: domain.DateModeTomorrow}, "2024-03-15T16:00:00Z", "2024-03-16T16:00:00Z"},
		{"yesterday", domain.DateQueryValue{Mode: domain.DateModeYesterday}, "2024-03-13T16:00:00Z", "2024-03-14T16:00:00Z"},
		{"current week", domain.DateQueryValue{Mode: domain.DateModeCurrentWeek}, "2024-03-09T16:00:00Z", "2024-03-16T16:00:00Z"},
		{"last week", domain.DateQueryValue{Mode: domain.DateModeLastWeek}, "2024-03-02T16:00:00Z", "2024-03-09T16:00:00Z"},
		{"next week period", domain.DateQueryValue{Mode: domain.DateModeNextWeekPeriod}, "2024-03-16T16:00:00Z", "2024-03-23T16:00:00Z"},
		{"current month", domain.DateQueryValue{Mode: domain.DateModeCurrentMonth}, "2024-02-29T16:00:00Z", "2024-03-31T16:00:00Z"},
		{"next month period", domain.DateQueryValue{Mode: domain.DateModeNextMonthPeriod}, "2024-03-31T16:00:00Z", "2024-04-30T16:00:00Z"},
		{"current year", domain.DateQueryValue{Mode: domain.DateModeCurrentYear}, "2023-12-31T16:00:00Z", "2024-12-31T16:00:00Z"},
		{"last year", domain.DateQueryValue{Mode: domain.DateModeLastYear}, "2022-12-31T16:00:00Z", "2023-12-31T16:00:00Z"},
		{"past week", domain.DateQueryValue{Mode: domain.DateModePastWeek}, "2024-03-07T16:00:00Z", "2024-03-15T16:00:00Z"},
		{"past month", domain.DateQueryValue{Mode: domain.DateModePastMonth}, "2024-02-14T16:00:00Z", "2024-03-15T16:00:00Z"},
		{"next week", domain.DateQueryValue{Mode: domain.DateModeNextWeek}, "2024-03-14T16:00:00Z", "2024-03-22T16:00:00Z"},
		{"past number of days", domain.DateQueryValue{Mode: domain.DateModePastNumberOfDays, NumberOfDays: intPtr(2)}, "2024-03-12T16:00:00Z", "2024-03-15T16:00:00Z"},
		{"next number of days", domain.DateQueryValue{Mode: domain.DateModeNextNumberOfDays, NumberOfDays: intPtr(2)}, "2024-03-14T16:00:00Z", "2024-03-17T16:00:00Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.value.TimeZone = "Asia/Singapore"
			iv, err := calc.Compute(tc.value, nil)
			require.NoError(t, err)
			assert.False(t, iv.Instant)
			assert.Equal(t, utc(tc.start), iv.Start)
			assert.Equal(t, utc(tc.end), iv.End)
			assert.Equal(t, time.UTC, iv.Start.Location())
		})
	}
}

func TestCalculator_TodayIsHalfOpen(t *testing.T) {
	calc := NewCalculator(fixedNow("2024-03-15T02:00:00Z"), time.Sunday, "Asia/Singapore")
	iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeToday}, nil)
	require.NoError(t, err)

	midnight := utc("2024-03-14T16:00:00Z")
	nextMidnight := utc("2024-03-15T16:00:00Z")

	contains := func(ts time.Time) bool { return !ts.Before(iv.Start) && ts.Before(iv.End) }
	assert.True(t, contains(midnight), "local midnight starts today")
	assert.False(t, contains(nextMidnight), "next local midnight is tomorrow")
	assert.True(t, contains(nextMidnight.Add(-time.Millisecond)))
}

func TestCalculator_WeekStart(t *testing.T) {
	calc := NewCalculator(fixedNow("2024-03-15T02:00:00Z"), time.Monday, "Asia/Singapore")
	iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeCurrentWeek}, nil)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-03-10T16:00:00Z"), iv.Start)
	assert.Equal(t, utc("2024-03-17T16:00:00Z"), iv.End)

	// On the week start day itself the week begins today
	calc.Now = fixedNow("2024-03-11T02:00:00Z")
	iv, err = calc.Compute(domain.DateQueryValue{Mode: domain.DateModeCurrentWeek}, nil)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-03-10T16:00:00Z"), iv.Start)
}

func TestCalculator_MonthClamping(t *testing.T) {
	// 2024-03-31 12:00 in Singapore
	calc := NewCalculator(fixedNow("2024-03-31T04:00:00Z"), time.Sunday, "Asia/Singapore")

	t.Run("last month spans February", func(t *testing.T) {
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeLastMonth}, nil)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-01-31T16:00:00Z"), iv.Start)
		assert.Equal(t, utc("2024-02-29T16:00:00Z"), iv.End)
		assert.Equal(t, 29*24*time.Hour, iv.End.Sub(iv.Start))
	})

	t.Run("one month ago clamps to leap day", func(t *testing.T) {
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeOneMonthAgo}, nil)
		require.NoError(t, err)
		assert.True(t, iv.Instant)
		assert.Equal(t, utc("2024-02-29T04:00:00Z"), iv.Start)
		assert.Equal(t, iv.Start, iv.End)
	})

	t.Run("one month ago in a non leap year", func(t *testing.T) {
		c := NewCalculator(fixedNow("2023-03-31T04:00:00Z"), time.Sunday, "Asia/Singapore")
		iv, err := c.Compute(domain.DateQueryValue{Mode: domain.DateModeOneMonthAgo}, nil)
		require.NoError(t, err)
		assert.Equal(t, utc("2023-02-28T04:00:00Z"), iv.Start)
	})

	t.Run("one month from now on the 31st", func(t *testing.T) {
		c := NewCalculator(fixedNow("2024-01-31T04:00:00Z"), time.Sunday, "Asia/Singapore")
		iv, err := c.Compute(domain.DateQueryValue{Mode: domain.DateModeOneMonthFromNow}, nil)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-02-29T04:00:00Z"), iv.Start)
	})
}

func TestCalculator_InstantModes(t *testing.T) {
	calc := NewCalculator(fixedNow("2024-03-15T02:00:00Z"), time.Sunday, "Asia/Singapore")

	testCases := []struct {
		name  string
		value domain.DateQueryValue
		at    string
	}{
		{"one week ago", domain.DateQueryValue{Mode: domain.DateModeOneWeekAgo}, "2024-03-08T02:00:00Z"},
		{"one week from now", domain.DateQueryValue{Mode: domain.DateModeOneWeekFromNow}, "2024-03-22T02:00:00Z"},
		{"days ago", domain.DateQueryValue{Mode: domain.DateModeDaysAgo, NumberOfDays: intPtr(3)}, "2024-03-12T02:00:00Z"},
		{"days from now", domain.DateQueryValue{Mode: domain.DateModeDaysFromNow, NumberOfDays: intPtr(20)}, "2024-04-04T02:00:00Z"},
		{"zero days ago", domain.DateQueryValue{Mode: domain.DateModeDaysAgo, NumberOfDays: intPtr(0)}, "2024-03-15T02:00:00Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := calc.Compute(tc.value, nil)
			require.NoError(t, err)
			assert.True(t, iv.Instant)
			assert.Equal(t, utc(tc.at), iv.Start)
			assert.Equal(t, utc(tc.at), iv.End)
		})
	}

	t.Run("range widens an instant to its local day", func(t *testing.T) {
		iv, err := calc.ComputeRange(domain.DateQueryValue{Mode: domain.DateModeDaysAgo, NumberOfDays: intPtr(3)}, nil)
		require.NoError(t, err)
		assert.False(t, iv.Instant)
		assert.Equal(t, utc("2024-03-11T16:00:00Z"), iv.Start)
		assert.Equal(t, utc("2024-03-12T16:00:00Z"), iv.End)
	})

	t.Run("range leaves periods untouched", func(t *testing.T) {
		plain, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeLastWeek}, nil)
		require.NoError(t, err)
		widened, err := calc.ComputeRange(domain.DateQueryValue{Mode: domain.DateModeLastWeek}, nil)
		require.NoError(t, err)
		assert.Equal(t, plain, widened)
	})
}

func TestCalculator_ExactDate(t *testing.T) {
	calc := NewCalculator(fixedNow("2024-03-15T02:00:00Z"), time.Sunday, "Asia/Singapore")
	exact := utc("2024-03-20T18:30:45Z") // 2024-03-21 02:30:45 in Singapore

	t.Run("exact date is the local day", func(t *testing.T) {
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeExactDate, ExactDate: &exact}, nil)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-20T16:00:00Z"), iv.Start)
		assert.Equal(t, utc("2024-03-21T16:00:00Z"), iv.End)
	})

	t.Run("exact format date follows the field precision", func(t *testing.T) {
		field := &domain.FieldDescriptor{
			ID:            "fldDate",
			CellValueType: domain.CellValueTypeDateTime,
			Options: domain.FieldOptions{Formatting: &domain.DatetimeFormatting{
				Time: domain.TimeFormatting24HM,
			}},
		}
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeExactFormatDate, ExactDate: &exact}, field)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-20T18:30:00Z"), iv.Start)
		assert.Equal(t, utc("2024-03-20T18:31:00Z"), iv.End)

		field.Options.Formatting.Time = domain.TimeFormattingHMS
		iv, err = calc.Compute(domain.DateQueryValue{Mode: domain.DateModeExactFormatDate, ExactDate: &exact}, field)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-20T18:30:45Z"), iv.Start)
		assert.Equal(t, utc("2024-03-20T18:30:46Z"), iv.End)

		field.Options.Formatting.Time = domain.TimeFormattingNone
		iv, err = calc.Compute(domain.DateQueryValue{Mode: domain.DateModeExactFormatDate, ExactDate: &exact}, field)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-20T16:00:00Z"), iv.Start)
	})
}

func TestCalculator_DaylightSaving(t *testing.T) {
	// 2024-03-10 is the spring-forward day in New York
	calc := NewCalculator(fixedNow("2024-03-10T16:00:00Z"), time.Sunday, "America/New_York")
	iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeToday}, nil)
	require.NoError(t, err)
	assert.Equal(t, utc("2024-03-10T05:00:00Z"), iv.Start)
	assert.Equal(t, utc("2024-03-11T04:00:00Z"), iv.End)
	assert.Equal(t, 23*time.Hour, iv.End.Sub(iv.Start))
}

func TestCalculator_TimeZoneResolution(t *testing.T) {
	now := fixedNow("2024-03-15T02:00:00Z")
	field := &domain.FieldDescriptor{
		ID:      "fldDate",
		Options: domain.FieldOptions{Formatting: &domain.DatetimeFormatting{TimeZone: "Asia/Tokyo"}},
	}

	t.Run("query zone wins", func(t *testing.T) {
		calc := NewCalculator(now, time.Sunday, "UTC")
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeToday, TimeZone: "Asia/Singapore"}, field)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-14T16:00:00Z"), iv.Start)
	})

	t.Run("field zone is the fallback", func(t *testing.T) {
		calc := NewCalculator(now, time.Sunday, "UTC")
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeToday}, field)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-14T15:00:00Z"), iv.Start)
	})

	t.Run("default zone then UTC", func(t *testing.T) {
		calc := NewCalculator(now, time.Sunday, "Asia/Singapore")
		iv, err := calc.Compute(domain.DateQueryValue{Mode: domain.DateModeToday}, nil)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-14T16:00:00Z"), iv.Start)

		calc.DefaultTimeZone = ""
		iv, err = calc.Compute(domain.DateQueryValue{Mode: domain.DateModeToday}, nil)
		require.NoError(t, err)
		assert.Equal(t, utc("2024-03-15T00:00:00Z"), iv.Start)
	})
}

func TestCalculator_Errors(t *testing.T) {
	calc := NewCalculator(fixedNow("2024-03-15T02:00:00Z"), time.Sunday, "UTC")

	testCases := []struct {
		name  string
		value domain.DateQueryValue
	}{
		{"invalid timezone", domain.DateQueryValue{Mode: domain.DateModeToday, TimeZone: "Mars/Olympus"}},
		{"missing number of days", domain.DateQueryValue{Mode: domain.DateModeDaysAgo}},
		{"missing exact date", domain.DateQueryValue{Mode: domain.DateModeExactDate}},
		{"unknown mode", domain.DateQueryValue{Mode: "fortnight"}},
		{"empty mode", domain.DateQueryValue{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := calc.Compute(tc.value, nil)
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err), "got %T", err)
			assert.Equal(t, Interval{}, iv)
		})
	}

	t.Run("pure function rejects missing parameters", func(t *testing.T) {
		_, err := ComputeInterval(domain.DateModeNextNumberOfDays, time.UTC, time.Now(), time.Sunday, nil, nil, PrecisionDay)
		assert.True(t, domain.IsConfigurationError(err))
	})
}

func TestParseWeekday(t *testing.T) {
	testCases := map[string]time.Weekday{
		"":        time.Sunday,
		"sunday":  time.Sunday,
		"Monday":  time.Monday,
		" sat ":   time.Saturday,
		"THU":     time.Thursday,
		"friday":  time.Friday,
		"tue":     time.Tuesday,
		"wed":     time.Wednesday,
	}
	for input, expected := range testCases {
		got, err := ParseWeekday(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
}
