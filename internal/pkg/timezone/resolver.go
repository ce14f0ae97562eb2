package timezone

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sysconfig"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Resolver converts between UTC instants and calendar values in the
// configured timezone. It never returns errors: an unknown or unreadable
// timezone falls back to UTC.
type Resolver struct {
	settings sysconfig.Provider
	now      func() time.Time
}

// NewResolver creates a resolver. A nil now defaults to time.Now.
func NewResolver(settings sysconfig.Provider, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{settings: settings, now: now}
}

type locationProvider interface {
	Location() *time.Location
}

// Location returns the configured location or UTC. Providers that cache a
// resolved location, like *sysconfig.Store, are asked for it directly.
func (r *Resolver) Location() *time.Location {
	if r.settings == nil {
		return time.UTC
	}
	if lp, ok := r.settings.(locationProvider); ok {
		if loc := lp.Location(); loc != nil {
			return loc
		}
		return time.UTC
	}
	s := r.settings.Settings()
	loc, err := s.Location()
	if err != nil {
		slog.Warn("Invalid timezone in system config, falling back to UTC", "timezone", s.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// Now returns the current instant in the configured location.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.Location())
}

// CurrentDate returns today's calendar date as YYYY-MM-DD.
func (r *Resolver) CurrentDate() string {
	return r.Now().Format(DateLayout)
}

// DateOf returns the calendar date of an instant in the configured location.
func (r *Resolver) DateOf(t time.Time) string {
	return t.In(r.Location()).Format(DateLayout)
}

// CurrentTime returns the local wall-clock time as HH:MM.
func (r *Resolver) CurrentTime() string {
	return r.Now().Format(TimeLayout)
}

// CurrentWeekdayName returns the full English weekday name for today.
func (r *Resolver) CurrentWeekdayName() string {
	return r.Now().Weekday().String()
}

// MinutesSinceMidnight returns the local time of day in minutes.
func (r *Resolver) MinutesSinceMidnight() int {
	n := r.Now()
	return n.Hour()*60 + n.Minute()
}

// StartOfDay returns local midnight for a YYYY-MM-DD date.
func (r *Resolver) StartOfDay(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, r.Location())
}

// WeekdayOf returns the weekday name for a YYYY-MM-DD date.
func WeekdayOf(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return d.Weekday().String(), nil
}

// PreviousDate returns the calendar day before a YYYY-MM-DD date.
func PreviousDate(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(DateLayout), nil
}
