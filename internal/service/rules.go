package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rules holds the per-deployment booking constraints.  Open and LastSeating
// are minutes since midnight; both bounds are inclusive.
type Rules struct {
	Open          int
	LastSeating   int
	ClosedWeekday time.Weekday
	Location      *time.Location
}

// DefaultRules opens at 10:30, takes the last seating at 21:30 and closes
// on Tuesdays, in the process's local time zone.
func DefaultRules() Rules {
	return Rules{
		Open:          10*60 + 30,
		LastSeating:   21*60 + 30,
		ClosedWeekday: time.Tuesday,
		Location:      time.Local,
	}
}

// NewRules builds Rules from configuration text: open and lastSeating as
// HH:MM, weekday as an English day name and tz as an IANA zone name (empty
// means local time).
func NewRules(open, lastSeating, weekday, tz string) (Rules, error) {
	r := DefaultRules()
	var err error
	if r.Open, err = ParseClock(open); err != nil {
		return Rules{}, fmt.Errorf("open time: %w", err)
	}
	if r.LastSeating, err = ParseClock(lastSeating); err != nil {
		return Rules{}, fmt.Errorf("last seating time: %w", err)
	}
	if r.Open > r.LastSeating {
		return Rules{}, fmt.Errorf("open time %s is after last seating %s", open, lastSeating)
	}
	if r.ClosedWeekday, err = ParseWeekday(weekday); err != nil {
		return Rules{}, err
	}
	if tz != "" {
		if r.Location, err = time.LoadLocation(tz); err != nil {
			return Rules{}, fmt.Errorf("time zone: %w", err)
		}
	}
	return r, nil
}

// ParseClock converts HH:MM into minutes since midnight.  Unlike
// reservation times, configuration may name any minute of the day.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return hour*60 + minute, nil
}

// ParseWeekday accepts a full or three-letter English day name.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
