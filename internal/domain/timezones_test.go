package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidTimezone(t *testing.T) {
	t.Run("Valid timezones", func(t *testing.T) {
		validTimezones := []string{
			"UTC",
			"America/New_York",
			"America/Los_Angeles",
			"Europe/London",
			"Asia/Singapore",
			"Asia/Tokyo",
			"Australia/Sydney",
			"Pacific/Auckland",
		}

		for _, tz := range validTimezones {
			t.Run(tz, func(t *testing.T) {
				assert.True(t, IsValidTimezone(tz), "Timezone %s should be valid", tz)
			})
		}
	})

	t.Run("Invalid timezones", func(t *testing.T) {
		invalidTimezones := []string{
			"",
			"Local",
			"Invalid/Timezone",
			"America/FakeCity",
			"Random_String",
			"../etc/passwd",
			"/etc/localtime",
			" UTC ",
		}

		for _, tz := range invalidTimezones {
			t.Run(tz, func(t *testing.T) {
				assert.False(t, IsValidTimezone(tz), "Timezone %s should be invalid", tz)
			})
		}
	})

	t.Run("Case sensitivity", func(t *testing.T) {
		assert.True(t, IsValidTimezone("America/New_York"))
		assert.False(t, IsValidTimezone("america/new_york"))
	})
}

func TestLoadLocation(t *testing.T) {
	t.Run("returns the same location on repeated calls", func(t *testing.T) {
		first, err := LoadLocation("Asia/Singapore")
		require.NoError(t, err)
		second, err := LoadLocation("Asia/Singapore")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, "Asia/Singapore", first.String())
	})

	t.Run("invalid name is a configuration error", func(t *testing.T) {
		_, err := LoadLocation("Mars/Olympus")
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), "Mars/Olympus")
	})
}
