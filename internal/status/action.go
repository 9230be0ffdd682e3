package status

import (
	"fmt"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// Action is the UI surface a status change comes from.
type Action string

const (
	ActionEdit    Action = "edit"
	ActionDrag    Action = "drag"
	ActionMenu    Action = "menu"
	ActionBilling Action = "billing"
)

// ActionNotAllowedError is returned when a table transition is valid but not
// reachable from the given action.
type ActionNotAllowedError struct {
	Action Action
	From   model.AppointmentStatus
	To     model.AppointmentStatus
}

func (e *ActionNotAllowedError) Error() string {
	return fmt.Sprintf("%s cannot change status %s -> %s", e.Action, e.From, e.To)
}

func (e *ActionNotAllowedError) Is(target error) bool {
	return target == ErrIllegalTransition
}

func touchesBilled(from, to model.AppointmentStatus) bool {
	return from == model.StatusBilled || to == model.StatusBilled
}

// Permits reports whether action may trigger from -> to. The pair must also
// be in the table.
func (a Action) Permits(from, to model.AppointmentStatus) bool {
	if !CanTransition(from, to) {
		return false
	}
	switch a {
	case ActionDrag:
		return false
	case ActionEdit, ActionMenu:
		return !touchesBilled(from, to)
	case ActionBilling:
		return touchesBilled(from, to)
	}
	return false
}

// TransitionBy is Transition gated by the action that triggered it.
func TransitionBy(action Action, appt model.Appointment, to model.AppointmentStatus) (model.Appointment, error) {
	if !CanTransition(appt.Status, to) {
		return appt, &IllegalTransitionError{From: appt.Status, To: to}
	}
	if !action.Permits(appt.Status, to) {
		return appt, &ActionNotAllowedError{Action: action, From: appt.Status, To: to}
	}
	appt.Status = to
	return appt, nil
}

// Allowed lists the targets action may reach from s, in table order.
func Allowed(action Action, s model.AppointmentStatus) []model.AppointmentStatus {
	var out []model.AppointmentStatus
	for _, t := range Targets(s) {
		if action.Permits(s, t) {
			out = append(out, t)
		}
	}
	return out
}
