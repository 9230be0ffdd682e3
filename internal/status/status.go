// Package status drives appointments through their lifecycle and decides
// which changes an appointment still accepts.
package status

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotMutable        = errors.New("appointment is not mutable")
)

// IllegalTransitionError is returned for a pair outside the transition table.
type IllegalTransitionError struct {
	From model.AppointmentStatus
	To   model.AppointmentStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// NotMutableError is returned when geometry changes hit a non-planned
// appointment.
type NotMutableError struct {
	AppointmentID int64
	Status        model.AppointmentStatus
}

func (e *NotMutableError) Error() string {
	return fmt.Sprintf("appointment %d is %s and cannot be moved or resized", e.AppointmentID, e.Status)
}

func (e *NotMutableError) Is(target error) bool {
	return target == ErrNotMutable
}

// Targets returns the statuses reachable from s in one step.
func Targets(s model.AppointmentStatus) []model.AppointmentStatus {
	switch s {
	case model.StatusPlanned:
		return []model.AppointmentStatus{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow}
	case model.StatusCompleted:
		return []model.AppointmentStatus{model.StatusReadyToBill, model.StatusCancelled}
	case model.StatusReadyToBill:
		return []model.AppointmentStatus{model.StatusBilled, model.StatusCompleted}
	case model.StatusBilled:
		return []model.AppointmentStatus{model.StatusReadyToBill}
	case model.StatusCancelled:
		return []model.AppointmentStatus{model.StatusPlanned}
	case model.StatusNoShow:
		return []model.AppointmentStatus{model.StatusPlanned, model.StatusCancelled}
	}
	return nil
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, t := range Targets(from) {
		if t == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of appt in status to. Nothing but Status
// changes.
func Transition(appt model.Appointment, to model.AppointmentStatus) (model.Appointment, error) {
	if !CanTransition(appt.Status, to) {
		return appt, &IllegalTransitionError{From: appt.Status, To: to}
	}
	appt.Status = to
	return appt, nil
}

// CheckMutable fails unless appt still accepts move and resize.
func CheckMutable(appt model.Appointment) error {
	if appt.Status != model.StatusPlanned {
		return &NotMutableError{AppointmentID: appt.ID, Status: appt.Status}
	}
	return nil
}

// Label is the human name of a status.
func Label(s model.AppointmentStatus) string {
	switch s {
	case model.StatusPlanned:
		return "Planned"
	case model.StatusCompleted:
		return "Completed"
	case model.StatusReadyToBill:
		return "Ready to bill"
	case model.StatusBilled:
		return "Billed"
	case model.StatusCancelled:
		return "Cancelled"
	case model.StatusNoShow:
		return "No-show"
	}
	return string(s)
}

// Emoji is the marker used next to a status in chat screens.
func Emoji(s model.AppointmentStatus) string {
	switch s {
	case model.StatusPlanned:
		return "🗓"
	case model.StatusCompleted:
		return "✅"
	case model.StatusReadyToBill:
		return "🧾"
	case model.StatusBilled:
		return "💶"
	case model.StatusCancelled:
		return "❌"
	case model.StatusNoShow:
		return "🚫"
	}
	return "❔"
}
