package callbacks

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
)

// mutate runs an appointment button through the engine pipeline.
func (h *Handler) mutate(ctx context.Context, sess *state.Session, data callbacktypes.Data) error {
	e := sess.Engine
	a, ok := e.Appointment(data.AppointmentID)
	if !ok {
		return common.ErrAppointmentNotVisible
	}

	var err error
	switch data.Kind {
	case callbacktypes.KindMove:
		_, err = e.Move(ctx, calendar.MoveRequest{
			AppointmentID: a.ID,
			Start:         a.Start.Add(time.Duration(data.DeltaMinutes) * time.Minute),
		})
	case callbacktypes.KindResize:
		_, err = e.Resize(ctx, calendar.ResizeRequest{
			AppointmentID:   a.ID,
			DurationMinutes: a.DurationMinutes + data.DeltaMinutes,
		})
	case callbacktypes.KindReassign:
		resource := data.Resource
		_, err = e.Move(ctx, calendar.MoveRequest{
			AppointmentID: a.ID,
			Start:         a.Start,
			Resource:      &resource,
		})
	case callbacktypes.KindStatus:
		_, err = e.ChangeStatus(ctx, a.ID, data.Status, common.ActionFor(a.Status, data.Status))
	case callbacktypes.KindDelete:
		if err = e.Delete(ctx, a.ID); err == nil {
			sess.Select(0)
		}
	default:
		return fmt.Errorf("%w: %s", callbacktypes.ErrInvalidFormat, data)
	}

	if err != nil {
		return rejectedError{err}
	}
	return nil
}
