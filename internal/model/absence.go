package model

import (
	"time"
)

// AbsenceType classifies why a practitioner is unavailable.
type AbsenceType string

const (
	AbsenceVacation  AbsenceType = "vacation"
	AbsenceSickLeave AbsenceType = "sick_leave"
	AbsenceTraining  AbsenceType = "training"
	AbsenceOther     AbsenceType = "other"
)

// Valid reports whether t is a known absence type.
func (t AbsenceType) Valid() bool {
	switch t {
	case AbsenceVacation, AbsenceSickLeave, AbsenceTraining, AbsenceOther:
		return true
	}
	return false
}

// Absence blocks one practitioner over a range of days, either fully or
// between StartTime and EndTime on each day.
type Absence struct {
	ID             int64       `json:"id"`
	PractitionerID int64       `json:"practitioner"`
	Type           AbsenceType `json:"absence_type"`
	StartDate      Date        `json:"start_date"`
	EndDate        Date        `json:"end_date"`
	StartTime      *TimeOfDay  `json:"start_time"`
	EndTime        *TimeOfDay  `json:"end_time"`
	IsFullDay      bool        `json:"is_full_day"`
	IsApproved     bool        `json:"is_approved"`
	Notes          string      `json:"notes"`
}

// Interval is a half-open time interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether i and o share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Intervals returns the blocked intervals of the absence in loc. A full-day
// absence yields one interval spanning the whole date range; a partial one
// yields one interval per day.
func (a Absence) Intervals(loc *time.Location) []Interval {
	if a.EndDate.Before(a.StartDate) {
		return nil
	}
	if a.IsFullDay {
		return []Interval{{
			Start: a.StartDate.In(loc),
			End:   a.EndDate.AddDays(1).In(loc),
		}}
	}

	from := TimeOfDay{}
	to := TimeOfDay{Hour: 24}
	if a.StartTime != nil {
		from = *a.StartTime
	}
	if a.EndTime != nil {
		to = *a.EndTime
	}
	if !from.Before(to) {
		return nil
	}

	var out []Interval
	for d := a.StartDate; !d.After(a.EndDate); d = d.AddDays(1) {
		out = append(out, Interval{Start: from.On(d, loc), End: to.On(d, loc)})
	}
	return out
}

// Covers reports whether the absence range includes date d.
func (a Absence) Covers(d Date) bool {
	return !d.Before(a.StartDate) && !d.After(a.EndDate)
}
