package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPlanned     AppointmentStatus = "planned"
	StatusCompleted   AppointmentStatus = "completed"
	StatusReadyToBill AppointmentStatus = "ready_to_bill"
	StatusBilled      AppointmentStatus = "billed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no_show"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []AppointmentStatus{
	StatusPlanned,
	StatusCompleted,
	StatusReadyToBill,
	StatusBilled,
	StatusCancelled,
	StatusNoShow,
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OccupiesResources reports whether an appointment in this status still
// blocks its practitioner and room.
func (s AppointmentStatus) OccupiesResources() bool {
	return s != StatusCancelled
}

var ErrInvalidDuration = errors.New("appointment duration must be positive")

// Appointment is a timed booking bound to one practitioner and one room.
type Appointment struct {
	ID              int64             `json:"id"`
	PatientID       int64             `json:"patient"`
	PractitionerID  int64             `json:"practitioner"`
	RoomID          int64             `json:"room"`
	TreatmentID     int64             `json:"treatment"`
	PrescriptionID  *int64            `json:"prescription,omitempty"`
	SeriesID        *uuid.UUID        `json:"series_id,omitempty"`
	Start           time.Time         `json:"appointment_date"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// End returns the exclusive end of the appointment.
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Validate checks the appointment invariants.
func (a Appointment) Validate() error {
	if a.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ResourceID returns the id the appointment is bound to on the given axis.
func (a Appointment) ResourceID(kind ResourceKind) int64 {
	switch kind {
	case ResourcePractitioner:
		return a.PractitionerID
	case ResourceRoom:
		return a.RoomID
	}
	return 0
}

// BoundTo reports whether the appointment is bound to r.
func (a Appointment) BoundTo(r Resource) bool {
	return r.ID != 0 && a.ResourceID(r.Kind) == r.ID
}

// Resources returns the practitioner and room the appointment occupies.
func (a Appointment) Resources() []Resource {
	return []Resource{PractitionerResource(a.PractitionerID), RoomResource(a.RoomID)}
}

// Assign binds the appointment to r on r's axis.
func (a *Appointment) Assign(r Resource) {
	switch r.Kind {
	case ResourcePractitioner:
		a.PractitionerID = r.ID
	case ResourceRoom:
		a.RoomID = r.ID
	}
}

// SameGeometry reports whether a and b occupy the same slot on the same
// resources.
func (a Appointment) SameGeometry(b Appointment) bool {
	return a.Start.Equal(b.Start) &&
		a.DurationMinutes == b.DurationMinutes &&
		a.PractitionerID == b.PractitionerID &&
		a.RoomID == b.RoomID
}
