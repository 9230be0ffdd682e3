package common

import (
	"errors"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
)

var (
	ErrNoSession             = errors.New("no calendar session for chat")
	ErrNoMessage             = errors.New("no message in callback")
	ErrAppointmentNotVisible = errors.New("appointment is not on the calendar")
)

// ErrorMessage returns the text shown to the user for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSession):
		return "The calendar has expired. Open it again with /calendar."
	case errors.Is(err, ErrNoMessage):
		return "This message can no longer be updated."
	case errors.Is(err, ErrAppointmentNotVisible):
		return "The appointment is no longer on this calendar."
	case errors.Is(err, callbacktypes.ErrInvalidFormat):
		return "Unknown button."
	case errors.Is(err, calendar.ErrNoView):
		return "The calendar is not loaded yet."
	}
	return calendar.Message(err)
}
