package calendar

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

// Message turns a rejection into the sentence shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var c *conflict.Conflict
	var ite *status.IllegalTransitionError
	var ana *status.ActionNotAllowedError
	var api *backend.APIError

	switch {
	case errors.As(err, &c):
		switch c.Kind {
		case conflict.KindBreak:
			return "That time overlaps the practice break."
		case conflict.KindAbsence:
			return "The practitioner is absent at that time."
		default:
			return fmt.Sprintf("That time overlaps appointment #%d.", c.ConflictID)
		}
	case errors.Is(err, status.ErrNotMutable):
		return "Only planned appointments can be moved or resized."
	case errors.As(err, &ana):
		return fmt.Sprintf("%s → %s is not available from here.", status.Label(ana.From), status.Label(ana.To))
	case errors.As(err, &ite):
		return fmt.Sprintf("Status cannot change from %s to %s.", status.Label(ite.From), status.Label(ite.To))
	case errors.Is(err, ErrMutationInFlight):
		return "This appointment is still being saved. Try again in a moment."
	case errors.Is(err, backend.ErrTransport):
		return "The server could not be reached. The change was undone, please try again."
	case errors.Is(err, backend.ErrNotFound):
		return "The appointment no longer exists."
	case errors.Is(err, model.ErrInvalidDuration):
		return "The duration must be longer than zero."
	case errors.Is(err, ErrInvalidSelection):
		return "Select a range that ends after it starts."
	case errors.As(err, &api):
		return "The server refused the change: " + api.Detail
	}
	return "The change could not be saved."
}
