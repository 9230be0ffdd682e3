// Package availability derives the open and break windows of a practice day
// from the practice-wide opening hours.
package availability

import (
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

const (
	DefaultStart = "08:00:00"
	DefaultEnd   = "20:00:00"
)

// Window is a time-of-day range formatted as HH:MM:SS strings.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultWindow is used when a day has no usable configuration.
var DefaultWindow = Window{Start: DefaultStart, End: DefaultEnd}

// On returns the window as absolute instants on date d in loc. A malformed
// window falls back to the default bounds.
func (w Window) On(d model.Date, loc *time.Location) (time.Time, time.Time) {
	start, end, ok := w.clocks()
	if !ok {
		start, end, _ = DefaultWindow.clocks()
	}
	return start.On(d, loc), end.On(d, loc)
}

// Interval is On packed as a model.Interval.
func (w Window) Interval(d model.Date, loc *time.Location) model.Interval {
	start, end := w.On(d, loc)
	return model.Interval{Start: start, End: end}
}

func (w Window) clocks() (model.TimeOfDay, model.TimeOfDay, bool) {
	start, err := model.ParseTimeOfDay(w.Start)
	if err != nil {
		return model.TimeOfDay{}, model.TimeOfDay{}, false
	}
	end, err := model.ParseTimeOfDay(w.End)
	if err != nil {
		return model.TimeOfDay{}, model.TimeOfDay{}, false
	}
	if !start.Before(end) {
		return model.TimeOfDay{}, model.TimeOfDay{}, false
	}
	return start, end, true
}

// normalize parses both bounds and reformats them as HH:MM:SS.
func normalize(start, end string) (Window, bool) {
	w := Window{Start: start, End: end}
	s, e, ok := w.clocks()
	if !ok {
		return Window{}, false
	}
	return Window{Start: s.String(), End: e.String()}, true
}

// OpenWindow returns the opening window for date. Missing, closed or
// malformed days yield DefaultWindow.
func OpenWindow(hours model.OpeningHours, date model.Date) Window {
	day, ok := hours.For(date)
	if !ok || !day.Open {
		return DefaultWindow
	}
	w, ok := normalize(day.Start, day.End)
	if !ok {
		return DefaultWindow
	}
	return w
}

// BreakWindow returns the break of date, or nil unless the day is open and
// both break bounds are set and well formed.
func BreakWindow(hours model.OpeningHours, date model.Date) *Window {
	day, ok := hours.For(date)
	if !ok || !day.Open {
		return nil
	}
	if day.BreakStart == nil || day.BreakEnd == nil {
		return nil
	}
	if *day.BreakStart == "" || *day.BreakEnd == "" {
		return nil
	}
	w, ok := normalize(*day.BreakStart, *day.BreakEnd)
	if !ok {
		return nil
	}
	return &w
}

// VisibleBounds returns the earliest opening and the latest closing over the
// dates in [from, to]. It is the time axis a calendar shows for that range.
func VisibleBounds(hours model.OpeningHours, from, to model.Date) Window {
	if to.Before(from) {
		to = from
	}

	var earliest, latest model.TimeOfDay
	first := true
	for d := from; !d.After(to); d = d.AddDays(1) {
		start, end, _ := OpenWindow(hours, d).clocks()
		if first || start.Before(earliest) {
			earliest = start
		}
		if first || latest.Before(end) {
			latest = end
		}
		first = false
	}
	return Window{Start: earliest.String(), End: latest.String()}
}
