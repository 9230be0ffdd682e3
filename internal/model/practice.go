package model

import (
	"strings"
	"time"
)

// DayHours is the opening-hours entry of one weekday. Times are HH:MM or
// HH:MM:SS strings as delivered by the practice configuration.
type DayHours struct {
	Open       bool    `json:"open"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
}

// OpeningHours maps lowercase English weekday names to their hours.
type OpeningHours map[string]DayHours

// WeekdayKey returns the OpeningHours key for a weekday.
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// For returns the entry for the weekday of date, if configured.
func (h OpeningHours) For(date Date) (DayHours, bool) {
	if h == nil {
		return DayHours{}, false
	}
	day, ok := h[WeekdayKey(date.Weekday())]
	return day, ok
}

// Practice is the practice instance; only its opening hours matter here.
type Practice struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	OpeningHours OpeningHours `json:"opening_hours"`
}
