package daterange

import (
	"fmt"
	"strings"
	"time"

	"github.com/Gridfuse/gridfuse/internal/domain"
)

// Interval is a half-open UTC time range [Start, End).
// Instant intervals have Start == End and mark a single boundary.
type Interval struct {
	Start   time.Time
	End     time.Time
	Instant bool
}

// Precision is the granularity exactFormatDate truncates to
type Precision int

const (
	PrecisionDay Precision = iota
	PrecisionMinute
	PrecisionSecond
)

// PrecisionFor returns the display precision of a date field
func PrecisionFor(field *domain.FieldDescriptor) Precision {
	if field == nil || field.Options.Formatting == nil {
		return PrecisionDay
	}
	switch field.Options.Formatting.Time {
	case domain.TimeFormatting24HM:
		return PrecisionMinute
	case domain.TimeFormattingHMS:
		return PrecisionSecond
	}
	return PrecisionDay
}

// Calculator maps date query values to UTC intervals.
// Now is called once per computation so results are deterministic for a fixed clock.
type Calculator struct {
	Now             func() time.Time
	WeekStart       time.Weekday
	DefaultTimeZone string
}

// NewCalculator creates a calculator. A nil now uses the system clock.
func NewCalculator(now func() time.Time, weekStart time.Weekday, defaultTimeZone string) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{Now: now, WeekStart: weekStart, DefaultTimeZone: defaultTimeZone}
}

// Location resolves the timezone of a query: the query's own zone, then the
// field's display zone, then the calculator default, then UTC.
func (c *Calculator) Location(q domain.DateQueryValue, field *domain.FieldDescriptor) (*time.Location, error) {
	name := q.TimeZone
	if name == "" && field != nil {
		name = field.TimeZone()
	}
	if name == "" {
		name = c.DefaultTimeZone
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := domain.LoadLocation(name)
	if err != nil {
		return nil, domain.NewConfigurationError(q.Mode, fmt.Sprintf("invalid timezone: %s", name))
	}
	return loc, nil
}

// Compute returns the interval of q. Instant modes return an instant interval.
func (c *Calculator) Compute(q domain.DateQueryValue, field *domain.FieldDescriptor) (Interval, error) {
	if err := q.Validate(); err != nil {
		return Interval{}, err
	}
	loc, err := c.Location(q, field)
	if err != nil {
		return Interval{}, err
	}
	return ComputeInterval(q.Mode, loc, c.Now(), c.WeekStart, q.ExactDate, q.NumberOfDays, PrecisionFor(field))
}

// ComputeRange is Compute with instant modes widened to the local calendar
// day that contains the instant. Used by equality and window operators.
func (c *Calculator) ComputeRange(q domain.DateQueryValue, field *domain.FieldDescriptor) (Interval, error) {
	iv, err := c.Compute(q, field)
	if err != nil || !iv.Instant {
		return iv, err
	}
	loc, err := c.Location(q, field)
	if err != nil {
		return Interval{}, err
	}
	return dayOf(iv.Start.In(loc)), nil
}

// ComputeInterval is the pure calculation behind Compute. All calendar
// arithmetic happens in loc and the result is converted to UTC.
func ComputeInterval(mode domain.DateMode, loc *time.Location, now time.Time, weekStart time.Weekday,
	exactDate *time.Time, numberOfDays *int, precision Precision) (Interval, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := startOfDay(now)

	days := func() (int, error) {
		if numberOfDays == nil {
			return 0, domain.NewConfigurationError(mode, "numberOfDays is required")
		}
		if *numberOfDays < 0 {
			return 0, domain.NewConfigurationError(mode, "numberOfDays cannot be negative")
		}
		return *numberOfDays, nil
	}

	switch mode {
	case domain.DateModeToday:
		return period(today, addDays(today, 1)), nil
	case domain.DateModeTomorrow:
		return period(addDays(today, 1), addDays(today, 2)), nil
	case domain.DateModeYesterday:
		return period(addDays(today, -1), today), nil

	case domain.DateModeCurrentWeek, domain.DateModeLastWeek, domain.DateModeNextWeekPeriod:
		start := addDays(startOfWeek(today, weekStart), 7*offsetOf(mode))
		return period(start, addDays(start, 7)), nil

	case domain.DateModeCurrentMonth, domain.DateModeLastMonth, domain.DateModeNextMonthPeriod:
		y, m, _ := today.Date()
		start := time.Date(y, m+time.Month(offsetOf(mode)), 1, 0, 0, 0, 0, loc)
		return period(start, start.AddDate(0, 1, 0)), nil

	case domain.DateModeCurrentYear, domain.DateModeLastYear, domain.DateModeNextYearPeriod:
		start := time.Date(today.Year()+offsetOf(mode), time.January, 1, 0, 0, 0, 0, loc)
		return period(start, start.AddDate(1, 0, 0)), nil

	case domain.DateModeOneWeekAgo:
		return instant(now.AddDate(0, 0, -7)), nil
	case domain.DateModeOneWeekFromNow:
		return instant(now.AddDate(0, 0, 7)), nil
	case domain.DateModeOneMonthAgo:
		return instant(addMonths(now, -1)), nil
	case domain.DateModeOneMonthFromNow:
		return instant(addMonths(now, 1)), nil
	case domain.DateModeDaysAgo, domain.DateModeDaysFromNow:
		n, err := days()
		if err != nil {
			return Interval{}, err
		}
		if mode == domain.DateModeDaysAgo {
			n = -n
		}
		return instant(now.AddDate(0, 0, n)), nil

	case domain.DateModeExactDate, domain.DateModeExactFormatDate:
		if exactDate == nil {
			return Interval{}, domain.NewConfigurationError(mode, "exactDate is required")
		}
		local := exactDate.In(loc)
		if mode == domain.DateModeExactDate {
			return dayOf(local), nil
		}
		return truncate(local, precision), nil

	case domain.DateModePastWeek:
		return period(addDays(today, -7), addDays(today, 1)), nil
	case domain.DateModePastMonth:
		return period(addMonths(today, -1), addDays(today, 1)), nil
	case domain.DateModePastYear:
		return period(addMonths(today, -12), addDays(today, 1)), nil
	case domain.DateModeNextWeek:
		return period(today, addDays(today, 8)), nil
	case domain.DateModeNextMonth:
		return period(today, addDays(addMonths(today, 1), 1)), nil
	case domain.DateModeNextYear:
		return period(today, addDays(addMonths(today, 12), 1)), nil
	case domain.DateModePastNumberOfDays:
		n, err := days()
		if err != nil {
			return Interval{}, err
		}
		return period(addDays(today, -n), addDays(today, 1)), nil
	case domain.DateModeNextNumberOfDays:
		n, err := days()
		if err != nil {
			return Interval{}, err
		}
		return period(today, addDays(today, n+1)), nil
	}

	return Interval{}, domain.NewConfigurationError(mode, "unknown mode")
}

// offsetOf returns -1, 0 or +1 for last, current and next period modes
func offsetOf(mode domain.DateMode) int {
	switch mode {
	case domain.DateModeLastWeek, domain.DateModeLastMonth, domain.DateModeLastYear:
		return -1
	case domain.DateModeNextWeekPeriod, domain.DateModeNextMonthPeriod, domain.DateModeNextYearPeriod:
		return 1
	}
	return 0
}

func period(start, end time.Time) Interval {
	return Interval{Start: start.UTC(), End: end.UTC()}
}

func instant(t time.Time) Interval {
	return Interval{Start: t.UTC(), End: t.UTC(), Instant: true}
}

func dayOf(t time.Time) Interval {
	start := startOfDay(t)
	return period(start, addDays(start, 1))
}

func truncate(t time.Time, precision Precision) Interval {
	y, m, d := t.Date()
	switch precision {
	case PrecisionMinute:
		start := time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, t.Location())
		return period(start, start.Add(time.Minute))
	case PrecisionSecond:
		start := time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
		return period(start, start.Add(time.Second))
	}
	return dayOf(t)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addDays moves by calendar days, keeping the wall clock across DST changes
func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func startOfWeek(day time.Time, weekStart time.Weekday) time.Time {
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return addDays(day, -back)
}

// addMonths moves by calendar months, clamping the day to the last valid
// day of the target month (Jan 31 - 1 month is the last day of December,
// Mar 31 - 1 month is Feb 28 or 29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// ParseWeekday converts a configured week start such as "sunday" or "Mon"
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sun", "sunday":
		return time.Sunday, nil
	case "mon", "monday":
		return time.Monday, nil
	case "tue", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("invalid week start: %s", s)
}
