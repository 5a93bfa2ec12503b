package domain

import (
	"context"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Gridfuse/gridfuse/pkg/cache"
)

// locationTTL bounds how long a loaded *time.Location is reused
const locationTTL = time.Hour

var locations = cache.NewInMemoryCache[*time.Location](10 * time.Minute)

// LoadLocation resolves an IANA timezone name, caching the result.
// Empty names, "Local" and names with path tricks are rejected so the
// result only depends on the embedded tz database.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return nil, NewConfigurationError("", "invalid timezone: "+name)
	}

	loc, err := locations.GetOrSet(context.Background(), name, locationTTL, func(context.Context) (*time.Location, error) {
		return time.LoadLocation(name)
	})
	if err != nil {
		return nil, NewConfigurationError("", "invalid timezone: "+name)
	}
	return loc, nil
}

// IsValidTimezone checks if a timezone name is a valid IANA identifier
func IsValidTimezone(name string) bool {
	_, err := LoadLocation(name)
	return err == nil
}
