package domain

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// DateMode selects how a date filter value is turned into a time window
type DateMode string

const (
	DateModeToday           DateMode = "today"
	DateModeTomorrow        DateMode = "tomorrow"
	DateModeYesterday       DateMode = "yesterday"
	DateModeCurrentWeek     DateMode = "currentWeek"
	DateModeLastWeek        DateMode = "lastWeek"
	DateModeNextWeekPeriod  DateMode = "nextWeekPeriod"
	DateModeCurrentMonth    DateMode = "currentMonth"
	DateModeLastMonth       DateMode = "lastMonth"
	DateModeNextMonthPeriod DateMode = "nextMonthPeriod"
	DateModeCurrentYear     DateMode = "currentYear"
	DateModeLastYear        DateMode = "lastYear"
	DateModeNextYearPeriod  DateMode = "nextYearPeriod"
	DateModeOneWeekAgo      DateMode = "oneWeekAgo"
	DateModeOneWeekFromNow  DateMode = "oneWeekFromNow"
	DateModeOneMonthAgo     DateMode = "oneMonthAgo"
	DateModeOneMonthFromNow DateMode = "oneMonthFromNow"
	DateModeDaysAgo         DateMode = "daysAgo"
	DateModeDaysFromNow     DateMode = "daysFromNow"
	DateModeExactDate       DateMode = "exactDate"
	DateModeExactFormatDate DateMode = "exactFormatDate"

	// Rolling windows used by isWithIn
	DateModePastWeek         DateMode = "pastWeek"
	DateModePastMonth        DateMode = "pastMonth"
	DateModePastYear         DateMode = "pastYear"
	DateModeNextWeek         DateMode = "nextWeek"
	DateModeNextMonth        DateMode = "nextMonth"
	DateModeNextYear         DateMode = "nextYear"
	DateModePastNumberOfDays DateMode = "pastNumberOfDays"
	DateModeNextNumberOfDays DateMode = "nextNumberOfDays"
)

// DateModes lists every known mode
var DateModes = []DateMode{
	DateModeToday, DateModeTomorrow, DateModeYesterday,
	DateModeCurrentWeek, DateModeLastWeek, DateModeNextWeekPeriod,
	DateModeCurrentMonth, DateModeLastMonth, DateModeNextMonthPeriod,
	DateModeCurrentYear, DateModeLastYear, DateModeNextYearPeriod,
	DateModeOneWeekAgo, DateModeOneWeekFromNow, DateModeOneMonthAgo, DateModeOneMonthFromNow,
	DateModeDaysAgo, DateModeDaysFromNow,
	DateModeExactDate, DateModeExactFormatDate,
	DateModePastWeek, DateModePastMonth, DateModePastYear,
	DateModeNextWeek, DateModeNextMonth, DateModeNextYear,
	DateModePastNumberOfDays, DateModeNextNumberOfDays,
}

// IsKnown returns true for a supported mode
func (m DateMode) IsKnown() bool {
	for _, mode := range DateModes {
		if mode == m {
			return true
		}
	}
	return false
}

// IsInstant returns true for modes that resolve to a single boundary
// instant rather than a calendar period
func (m DateMode) IsInstant() bool {
	switch m {
	case DateModeOneWeekAgo, DateModeOneWeekFromNow, DateModeOneMonthAgo, DateModeOneMonthFromNow,
		DateModeDaysAgo, DateModeDaysFromNow:
		return true
	}
	return false
}

// RequiresNumberOfDays returns true when NumberOfDays must be supplied
func (m DateMode) RequiresNumberOfDays() bool {
	switch m {
	case DateModeDaysAgo, DateModeDaysFromNow, DateModePastNumberOfDays, DateModeNextNumberOfDays:
		return true
	}
	return false
}

// RequiresExactDate returns true when ExactDate must be supplied
func (m DateMode) RequiresExactDate() bool {
	return m == DateModeExactDate || m == DateModeExactFormatDate
}

// DateQueryValue is the structured value of a date filter
type DateQueryValue struct {
	Mode         DateMode   `json:"mode" valid:"required"`
	TimeZone     string     `json:"timeZone,omitempty"`
	ExactDate    *time.Time `json:"exactDate,omitempty"`
	NumberOfDays *int       `json:"numberOfDays,omitempty"`
}

// Validate checks that the mode is known and its parameters are present.
// Timezone resolution is left to the calculator since it may fall back
// to the field's configuration.
func (v *DateQueryValue) Validate() error {
	if _, err := govalidator.ValidateStruct(v); err != nil {
		return NewConfigurationError(v.Mode, err.Error())
	}
	if !v.Mode.IsKnown() {
		return NewConfigurationError(v.Mode, "unknown mode")
	}
	if v.Mode.RequiresNumberOfDays() {
		if v.NumberOfDays == nil {
			return NewConfigurationError(v.Mode, "numberOfDays is required")
		}
		if *v.NumberOfDays < 0 {
			return NewConfigurationError(v.Mode, "numberOfDays cannot be negative")
		}
	}
	if v.Mode.RequiresExactDate() && v.ExactDate == nil {
		return NewConfigurationError(v.Mode, "exactDate is required")
	}
	return nil
}
