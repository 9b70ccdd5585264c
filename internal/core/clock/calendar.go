package clock

import (
	"fmt"
	"strings"
	"time"
)

// Calendar holds the days the shop does not take orders. It is built once at
// startup and read-only afterwards.
type Calendar struct {
	closed map[string]struct{}
}

// NewCalendar parses days in YYYY-MM-DD form. Blank entries are ignored.
func NewCalendar(days []string) (*Calendar, error) {
	closed := make(map[string]struct{}, len(days))
	for _, raw := range days {
		day := strings.TrimSpace(raw)
		if day == "" {
			continue
		}
		if _, err := time.Parse(DayLayout, day); err != nil {
			return nil, fmt.Errorf("calendar: invalid day %q: %w", day, err)
		}
		closed[day] = struct{}{}
	}
	return &Calendar{closed: closed}, nil
}

// IsClosed reports whether t falls on a closed day. A nil Calendar is always open.
func (c *Calendar) IsClosed(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.closed[Day(t)]
	return ok
}
