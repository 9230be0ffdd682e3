package model

import (
	"time"

	"github.com/google/uuid"
)

// SeriesSpec requests a recurring series of appointments for one
// prescription. It is consumed once and never stored.
type SeriesSpec struct {
	PrescriptionID          int64     `json:"prescription_id"`
	PatientID               int64     `json:"patient"`
	TreatmentID             int64     `json:"treatment"`
	StartDate               Date      `json:"start_date"`
	StartTime               TimeOfDay `json:"start_time"`
	IntervalDays            int       `json:"days_between_sessions"`
	Count                   int       `json:"number_of_appointments"`
	PreferredPractitionerID *int64    `json:"practitioner,omitempty"`
	PreferredRoomID         *int64    `json:"room,omitempty"`
	DurationMinutes         int       `json:"duration_minutes"`
	Notes                   string    `json:"notes,omitempty"`
}

// StartAt returns the start of the i-th appointment of the series.
func (s SeriesSpec) StartAt(i int, loc *time.Location) time.Time {
	return s.StartTime.On(s.StartDate.AddDays(i*s.IntervalDays), loc)
}

// SkipReason tells why a series slot produced no appointment.
type SkipReason string

const (
	SkipBreak              SkipReason = "break"
	SkipAppointment        SkipReason = "appointment"
	SkipAbsence            SkipReason = "absence"
	SkipNoFreePractitioner SkipReason = "no_free_practitioner"
	SkipNoFreeRoom         SkipReason = "no_free_room"
)

// SeriesSkip records one skipped slot. Index is zero-based, Number is the
// one-based position shown to users.
type SeriesSkip struct {
	Index      int        `json:"index"`
	Number     int        `json:"number"`
	Start      time.Time  `json:"start"`
	Reason     SkipReason `json:"reason"`
	Resource   *Resource  `json:"resource,omitempty"`
	ConflictID int64      `json:"conflict_id,omitempty"`
}

// SeriesResult is the outcome of a series generation.
type SeriesResult struct {
	SeriesID  uuid.UUID     `json:"series_id"`
	Requested int           `json:"requested"`
	Created   []Appointment `json:"created"`
	Skipped   []SeriesSkip  `json:"skipped"`
}

// Complete reports whether every requested slot was created.
func (r SeriesResult) Complete() bool {
	return len(r.Created) == r.Requested
}
