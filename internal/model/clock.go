package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.In(time.UTC).Before(o.In(time.UTC))
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.In(time.UTC).After(o.In(time.UTC))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

func (d Date) String() string {
	return d.In(time.UTC).Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time without date. 24:00:00 is allowed and
// denotes the end of the day.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	var t TimeOfDay
	var n int
	var err error
	switch strings.Count(s, ":") {
	case 1:
		n, err = fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute)
		if err == nil && n != 2 {
			err = fmt.Errorf("short read")
		}
	case 2:
		n, err = fmt.Sscanf(s, "%d:%d:%d", &t.Hour, &t.Minute, &t.Second)
		if err == nil && n != 3 {
			err = fmt.Errorf("short read")
		}
	default:
		err = fmt.Errorf("unexpected format")
	}
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if !t.valid() {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: out of range", s)
	}
	return t, nil
}

// MustTimeOfDay is ParseTimeOfDay for constants; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ClockOf returns the wall-clock time of t.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) valid() bool {
	if t.Hour == 24 {
		return t.Minute == 0 && t.Second == 0
	}
	return t.Hour >= 0 && t.Hour < 24 &&
		t.Minute >= 0 && t.Minute < 60 &&
		t.Second >= 0 && t.Second < 60
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Seconds() < o.Seconds()
}

// On returns the instant at time t on date d in loc.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, loc)
}

// String formats as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
