// Package clock supplies the current instant in one fixed civil timezone and
// the day arithmetic built on it.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // containers frequently ship without zoneinfo
)

// DefaultTimezone is the civil zone orders are counted in.
const DefaultTimezone = "Asia/Tokyo"

// DayLayout formats a civil day as stored on orders.
const DayLayout = "2006-01-02"

// Clock returns the current instant in its civil location.
type Clock interface {
	Now() time.Time
}

// Civil is the production Clock.
type Civil struct {
	loc *time.Location
}

// New returns a Clock reporting wall time in loc.
func New(loc *time.Location) *Civil {
	return &Civil{loc: loc}
}

// Load resolves the named zone and returns a Clock for it.
func Load(name string) (*Civil, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return New(loc), nil
}

func (c *Civil) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the civil zone.
func (c *Civil) Location() *time.Location {
	return c.loc
}

// Day formats the civil day t falls on, in t's location.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// SameDay reports whether a and b fall on the same civil day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return Day(a.In(loc)) == Day(b.In(loc))
}

// EndOfDay returns 23:59:59 of the civil day t falls on.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// UntilEndOfDay is the TTL of a marker written at t. It is never below one
// second so a marker set at 23:59:59 still expires on its own.
func UntilEndOfDay(t time.Time) time.Duration {
	ttl := EndOfDay(t).Sub(t).Truncate(time.Second)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

// Fixed is a Clock frozen at a settable instant, for tests and tooling.
type Fixed struct {
	at time.Time
}

func NewFixed(at time.Time) *Fixed {
	return &Fixed{at: at}
}

func (f *Fixed) Now() time.Time {
	return f.at
}

// Set moves the clock to at.
func (f *Fixed) Set(at time.Time) {
	f.at = at
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.at = f.at.Add(d)
}
