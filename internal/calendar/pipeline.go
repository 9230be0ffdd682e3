package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

type mutationKind string

const (
	mutationGeometry mutationKind = "geometry"
	mutationStatus   mutationKind = "status"
	mutationCreate   mutationKind = "create"
	mutationDelete   mutationKind = "delete"
)

// mutation is one gesture travelling through
// propose -> validateLocally -> sendRemote -> commitOrRevert.
type mutation struct {
	id            uuid.UUID
	kind          mutationKind
	appointmentID int64
	optimistic    bool

	// change builds the proposed appointment from the visible one.
	change func(model.Appointment) (model.Appointment, error)
	target model.AppointmentStatus
	action status.Action

	before model.Appointment
	after  model.Appointment
}

// MoveRequest drags an appointment to a new start and, optionally, to
// another resource of either axis.
type MoveRequest struct {
	AppointmentID int64
	Start         time.Time
	Resource      *model.Resource
}

// ResizeRequest changes the duration of an appointment.
type ResizeRequest struct {
	AppointmentID   int64
	DurationMinutes int
}

// Move validates and persists a drag. On any rejection the appointment is
// restored to where it was before the gesture.
func (e *Engine) Move(ctx context.Context, req MoveRequest) (model.Appointment, error) {
	return e.run(ctx, &mutation{
		kind:          mutationGeometry,
		appointmentID: req.AppointmentID,
		optimistic:    true,
		change: func(a model.Appointment) (model.Appointment, error) {
			a.Start = req.Start
			if req.Resource != nil {
				if !req.Resource.Kind.Valid() || req.Resource.ID == 0 {
					return a, fmt.Errorf("move to invalid resource %s", req.Resource)
				}
				a.Assign(*req.Resource)
			}
			return a, nil
		},
	})
}

// Resize validates and persists a duration change.
func (e *Engine) Resize(ctx context.Context, req ResizeRequest) (model.Appointment, error) {
	return e.run(ctx, &mutation{
		kind:          mutationGeometry,
		appointmentID: req.AppointmentID,
		optimistic:    true,
		change: func(a model.Appointment) (model.Appointment, error) {
			a.DurationMinutes = req.DurationMinutes
			return a, a.Validate()
		},
	})
}

// ChangeStatus runs a status command. Status changes are never applied
// before the backend accepts them.
func (e *Engine) ChangeStatus(ctx context.Context, id int64, target model.AppointmentStatus, action status.Action) (model.Appointment, error) {
	return e.run(ctx, &mutation{
		kind:          mutationStatus,
		appointmentID: id,
		target:        target,
		action:        action,
	})
}

// Create submits a new appointment from a form.
func (e *Engine) Create(ctx context.Context, draft model.Appointment) (model.Appointment, error) {
	draft.ID = 0
	if draft.Status == "" {
		draft.Status = model.StatusPlanned
	}
	return e.run(ctx, &mutation{kind: mutationCreate, after: draft})
}

// Delete removes an appointment regardless of its status.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	_, err := e.run(ctx, &mutation{kind: mutationDelete, appointmentID: id, optimistic: true})
	return err
}

func (e *Engine) run(ctx context.Context, m *mutation) (model.Appointment, error) {
	m.id = uuid.New()
	log := e.logger.With(
		zap.String("mutation_id", m.id.String()),
		zap.String("kind", string(m.kind)),
		zap.Int64("appointment_id", m.appointmentID),
	)

	if err := e.propose(m); err != nil {
		log.Info("Mutation refused", zap.Error(err))
		e.publishReverted(m, err)
		return model.Appointment{}, err
	}
	if err := e.validateLocally(m); err != nil {
		log.Info("Mutation rejected locally", zap.Error(err))
		e.revert(m, err)
		return m.before, err
	}

	saved, err := e.sendRemote(ctx, m)
	return e.commitOrRevert(ctx, log, m, saved, err)
}

// propose claims the appointment and, for optimistic kinds, makes the change
// visible at once.
func (e *Engine) propose(m *mutation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m.kind == mutationCreate {
		return nil
	}
	if _, busy := e.inflight[m.appointmentID]; busy {
		return ErrMutationInFlight
	}
	i, ok := e.snap.find(m.appointmentID)
	if !ok {
		return fmt.Errorf("appointment %d: %w", m.appointmentID, backend.ErrNotFound)
	}
	m.before = e.snap.Appointments[i]
	m.after = m.before

	if m.change != nil {
		next, err := m.change(m.before)
		if err != nil {
			return err
		}
		m.after = next
	}

	e.inflight[m.appointmentID] = m
	if m.optimistic {
		switch m.kind {
		case mutationDelete:
			e.snap.Appointments = removeAppointment(e.snap.Appointments, m.appointmentID)
		default:
			e.snap.Appointments[i] = m.after
		}
		e.bus.Publish(Event{Type: EventApplied, MutationID: m.id, AppointmentID: m.appointmentID, At: e.now()})
	}
	return nil
}

// validateLocally runs the mutability, status and conflict rules against the
// visible state.
func (e *Engine) validateLocally(m *mutation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch m.kind {
	case mutationGeometry:
		if err := status.CheckMutable(m.before); err != nil {
			return err
		}
		if err := m.after.Validate(); err != nil {
			return err
		}
		if c := e.checker.CheckAppointment(m.after, e.snap.Appointments, e.snap.Absences, e.snap.Hours); c != nil {
			return c
		}
	case mutationStatus:
		next, err := status.TransitionBy(m.action, m.before, m.target)
		if err != nil {
			return err
		}
		m.after = next
	case mutationCreate:
		if err := m.after.Validate(); err != nil {
			return err
		}
		if c := e.checker.CheckAppointment(m.after, e.snap.Appointments, e.snap.Absences, e.snap.Hours); c != nil {
			return c
		}
	}
	return nil
}

// sendRemote issues the backend call. It runs without the engine lock.
func (e *Engine) sendRemote(ctx context.Context, m *mutation) (*model.Appointment, error) {
	switch m.kind {
	case mutationGeometry:
		return e.store.UpdateAppointment(ctx, m.appointmentID, backend.GeometryPatch(m.after))
	case mutationStatus:
		return e.store.UpdateAppointment(ctx, m.appointmentID, backend.StatusPatch(m.target))
	case mutationCreate:
		return e.store.CreateAppointment(ctx, m.after)
	case mutationDelete:
		return nil, e.store.DeleteAppointment(ctx, m.appointmentID)
	}
	return nil, fmt.Errorf("unknown mutation kind %q", m.kind)
}

// commitOrRevert either keeps the change and refetches, or restores the
// pre-gesture value.
func (e *Engine) commitOrRevert(ctx context.Context, log *zap.Logger, m *mutation, saved *model.Appointment, err error) (model.Appointment, error) {
	if err != nil {
		log.Warn("Mutation rejected by backend", zap.Error(err))
		e.revert(m, err)
		return m.before, err
	}

	e.mu.Lock()
	delete(e.inflight, m.appointmentID)
	if saved != nil && m.kind != mutationCreate {
		if i, ok := e.snap.find(saved.ID); ok {
			e.snap.Appointments[i] = *saved
		}
	}
	e.mu.Unlock()

	result := m.after
	if saved != nil {
		result = *saved
	}
	log.Info("Mutation committed")
	e.bus.Publish(Event{Type: EventCommitted, MutationID: m.id, AppointmentID: result.ID, At: e.now()})

	if rerr := e.Refresh(ctx); rerr != nil && !errors.Is(rerr, ErrNoView) {
		log.Warn("Refresh after commit failed", zap.Error(rerr))
	}
	return result, nil
}

// revert restores the visible value unless a refresh already replaced it.
func (e *Engine) revert(m *mutation, cause error) {
	e.mu.Lock()
	if m.kind != mutationCreate {
		delete(e.inflight, m.appointmentID)
	}
	if m.optimistic {
		switch m.kind {
		case mutationDelete:
			if _, ok := e.snap.find(m.appointmentID); !ok {
				e.snap.Appointments = append(e.snap.Appointments, m.before)
			}
		default:
			if i, ok := e.snap.find(m.appointmentID); ok && e.snap.Appointments[i].SameGeometry(m.after) {
				e.snap.Appointments[i] = m.before
			}
		}
	}
	e.mu.Unlock()

	e.publishReverted(m, cause)
}

func (e *Engine) publishReverted(m *mutation, cause error) {
	e.bus.Publish(Event{
		Type:          EventReverted,
		MutationID:    m.id,
		AppointmentID: m.appointmentID,
		Err:           cause,
		Message:       Message(cause),
		At:            e.now(),
	})
}
