// Package backend defines the operations the scheduler drives against the
// practice backend, and the errors those operations report.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

var (
	ErrTransport  = errors.New("backend unreachable")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid request")
)

// TransportError wraps network failures and 5xx responses.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIError is a 4xx response that maps to nothing more specific.
type APIError struct {
	Op     string
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: backend rejected request (%d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Detail, e.Status)
}

// Is makes a 400 from the server match ErrValidation.
func (e *APIError) Is(target error) bool {
	return target == ErrValidation && e.Status == http.StatusBadRequest
}

// AppointmentFilter narrows ListAppointments. Zero fields are ignored.
// Dates are inclusive.
type AppointmentFilter struct {
	From           model.Date
	To             model.Date
	PractitionerID int64
	RoomID         int64
}

// Matches reports whether a falls inside the filter, evaluating dates in loc.
func (f AppointmentFilter) Matches(a model.Appointment, loc *time.Location) bool {
	if f.PractitionerID != 0 && a.PractitionerID != f.PractitionerID {
		return false
	}
	if f.RoomID != 0 && a.RoomID != f.RoomID {
		return false
	}
	d := model.DateOf(a.Start.In(loc))
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

// AbsenceFilter narrows ListAbsences. An absence matches the date range when
// it overlaps it.
type AbsenceFilter struct {
	From           model.Date
	To             model.Date
	PractitionerID int64
	ApprovedOnly   bool
}

func (f AbsenceFilter) Matches(a model.Absence) bool {
	if f.ApprovedOnly && !a.IsApproved {
		return false
	}
	if f.PractitionerID != 0 && a.PractitionerID != f.PractitionerID {
		return false
	}
	if !f.From.IsZero() && a.EndDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.StartDate.After(f.To) {
		return false
	}
	return true
}

// AppointmentPatch is a partial update. A geometry patch sets any of Start,
// DurationMinutes, PractitionerID and RoomID; a status patch sets only Status.
type AppointmentPatch struct {
	Start           *time.Time               `json:"appointment_date,omitempty"`
	DurationMinutes *int                     `json:"duration_minutes,omitempty"`
	PractitionerID  *int64                   `json:"practitioner,omitempty"`
	RoomID          *int64                   `json:"room,omitempty"`
	Status          *model.AppointmentStatus `json:"status,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
}

// GeometryPatch builds the patch that places an appointment like next.
func GeometryPatch(next model.Appointment) AppointmentPatch {
	start := next.Start
	duration := next.DurationMinutes
	practitioner := next.PractitionerID
	room := next.RoomID
	return AppointmentPatch{
		Start:           &start,
		DurationMinutes: &duration,
		PractitionerID:  &practitioner,
		RoomID:          &room,
	}
}

// StatusPatch builds a status-only patch.
func StatusPatch(s model.AppointmentStatus) AppointmentPatch {
	return AppointmentPatch{Status: &s}
}

// TouchesGeometry reports whether the patch changes placement.
func (p AppointmentPatch) TouchesGeometry() bool {
	return p.Start != nil || p.DurationMinutes != nil || p.PractitionerID != nil || p.RoomID != nil
}

// Apply returns a with the patch applied.
func (p AppointmentPatch) Apply(a model.Appointment) model.Appointment {
	if p.Start != nil {
		a.Start = *p.Start
	}
	if p.DurationMinutes != nil {
		a.DurationMinutes = *p.DurationMinutes
	}
	if p.PractitionerID != nil {
		a.PractitionerID = *p.PractitionerID
	}
	if p.RoomID != nil {
		a.RoomID = *p.RoomID
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	return a
}

// Store is the record-level contract: appointments, absences, catalogs and
// practice settings.
type Store interface {
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, patch AppointmentPatch) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error

	ListAbsences(ctx context.Context, filter AbsenceFilter) ([]model.Absence, error)
	CreateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error)
	UpdateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error)
	DeleteAbsence(ctx context.Context, id int64) error

	ListPractitioners(ctx context.Context) ([]model.Practitioner, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	GetOpeningHours(ctx context.Context) (model.OpeningHours, error)
	UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error
}

// Backend is a Store that can also expand a series on its side.
type Backend interface {
	Store
	CreateSeries(ctx context.Context, spec model.SeriesSpec) (model.SeriesResult, error)
}
