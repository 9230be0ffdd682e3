package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/series"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

// Scheduler enforces the scheduling rules in front of a record store:
// conflicts, status transitions and mutability. It is what the HTTP API
// serves.
type Scheduler struct {
	store     backend.Store
	checker   *conflict.Checker
	generator *series.Generator
	loc       *time.Location
	logger    *zap.Logger

	// writes are serialized so check-then-write cannot interleave
	mu sync.Mutex
}

var _ backend.Backend = (*Scheduler)(nil)

func NewScheduler(store backend.Store, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		store:   store,
		checker: conflict.NewChecker(loc),
		loc:     loc,
		logger:  logger,
	}
	// Series appointments are created through the scheduler itself and pass
	// the same checks as single ones.
	s.generator = series.NewGenerator(s, loc, logger)
	return s
}

func (s *Scheduler) ListAppointments(ctx context.Context, filter backend.AppointmentFilter) ([]model.Appointment, error) {
	return s.store.ListAppointments(ctx, filter)
}

func (s *Scheduler) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

// CreateAppointment stores appt if its slot is free.
func (s *Scheduler) CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.Status == "" {
		appt.Status = model.StatusPlanned
	}
	if err := s.validate(appt); err != nil {
		return nil, err
	}
	appt.ID = 0

	if appt.Status.OccupiesResources() {
		if err := s.checkFree(ctx, appt); err != nil {
			return nil, err
		}
	}

	created, err := s.store.CreateAppointment(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info("Appointment created",
		zap.Int64("appointment_id", created.ID),
		zap.Int64("practitioner_id", created.PractitionerID),
		zap.Int64("room_id", created.RoomID),
		zap.Time("start", created.Start),
	)
	return created, nil
}

// UpdateAppointment applies a geometry or status patch. Geometry changes
// need a planned appointment; status changes follow the transition table.
func (s *Scheduler) UpdateAppointment(ctx context.Context, id int64, patch backend.AppointmentPatch) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.TouchesGeometry() {
		if err := status.CheckMutable(*current); err != nil {
			return nil, err
		}
	}
	next := patch.Apply(*current)
	if patch.Status != nil {
		if _, err := status.Transition(*current, *patch.Status); err != nil {
			return nil, err
		}
	}
	if err := s.validate(next); err != nil {
		return nil, err
	}

	reoccupies := next.Status.OccupiesResources() && !current.Status.OccupiesResources()
	if next.Status.OccupiesResources() && (patch.TouchesGeometry() || reoccupies) {
		if err := s.checkFree(ctx, next); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateAppointment(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	fields := []zap.Field{zap.Int64("appointment_id", id)}
	if patch.Status != nil {
		fields = append(fields, zap.String("from", string(current.Status)), zap.String("to", string(updated.Status)))
	}
	if patch.TouchesGeometry() {
		fields = append(fields, zap.Time("start", updated.Start), zap.Int("duration_minutes", updated.DurationMinutes))
	}
	s.logger.Info("Appointment updated", fields...)
	return updated, nil
}

func (s *Scheduler) DeleteAppointment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Appointment deleted", zap.Int64("appointment_id", id))
	return nil
}

// CreateSeries expands spec, skipping slots that are not free.
func (s *Scheduler) CreateSeries(ctx context.Context, spec model.SeriesSpec) (model.SeriesResult, error) {
	return s.generator.Generate(ctx, spec)
}

func (s *Scheduler) ListAbsences(ctx context.Context, filter backend.AbsenceFilter) ([]model.Absence, error) {
	return s.store.ListAbsences(ctx, filter)
}

func (s *Scheduler) CreateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	if err := validateAbsence(absence); err != nil {
		return nil, err
	}
	created, err := s.store.CreateAbsence(ctx, absence)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Absence created", zap.Int64("absence_id", created.ID), zap.Int64("practitioner_id", created.PractitionerID))
	return created, nil
}

func (s *Scheduler) UpdateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	if err := validateAbsence(absence); err != nil {
		return nil, err
	}
	return s.store.UpdateAbsence(ctx, absence)
}

func (s *Scheduler) DeleteAbsence(ctx context.Context, id int64) error {
	return s.store.DeleteAbsence(ctx, id)
}

func (s *Scheduler) ListPractitioners(ctx context.Context) ([]model.Practitioner, error) {
	return s.store.ListPractitioners(ctx)
}

func (s *Scheduler) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.store.ListRooms(ctx)
}

func (s *Scheduler) GetOpeningHours(ctx context.Context) (model.OpeningHours, error) {
	return s.store.GetOpeningHours(ctx)
}

func (s *Scheduler) UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error {
	for day, h := range hours {
		if !isWeekdayKey(day) {
			return fmt.Errorf("%w: unknown weekday %q", backend.ErrValidation, day)
		}
		if h.Open {
			if _, err := model.ParseTimeOfDay(h.Start); err != nil {
				return fmt.Errorf("%w: %s start: %v", backend.ErrValidation, day, err)
			}
			if _, err := model.ParseTimeOfDay(h.End); err != nil {
				return fmt.Errorf("%w: %s end: %v", backend.ErrValidation, day, err)
			}
		}
	}
	if err := s.store.UpdateOpeningHours(ctx, hours); err != nil {
		return err
	}
	s.logger.Info("Opening hours updated", zap.Int("days", len(hours)))
	return nil
}

func (s *Scheduler) validate(appt model.Appointment) error {
	if err := appt.Validate(); err != nil {
		return err
	}
	switch {
	case !appt.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", backend.ErrValidation, appt.Status)
	case appt.PractitionerID <= 0:
		return fmt.Errorf("%w: practitioner is required", backend.ErrValidation)
	case appt.RoomID <= 0:
		return fmt.Errorf("%w: room is required", backend.ErrValidation)
	case appt.Start.IsZero():
		return fmt.Errorf("%w: appointment date is required", backend.ErrValidation)
	}
	return nil
}

func validateAbsence(a model.Absence) error {
	switch {
	case a.PractitionerID <= 0:
		return fmt.Errorf("%w: practitioner is required", backend.ErrValidation)
	case a.StartDate.IsZero() || a.EndDate.IsZero():
		return fmt.Errorf("%w: start and end date are required", backend.ErrValidation)
	case a.EndDate.Before(a.StartDate):
		return fmt.Errorf("%w: end date before start date", backend.ErrValidation)
	case a.Type != "" && !a.Type.Valid():
		return fmt.Errorf("%w: unknown absence type %q", backend.ErrValidation, a.Type)
	}
	return nil
}

// checkFree loads everything around appt and checks it against the
// practitioner and the room.
func (s *Scheduler) checkFree(ctx context.Context, appt model.Appointment) error {
	from := model.DateOf(appt.Start.In(s.loc)).AddDays(-1)
	to := model.DateOf(appt.End().In(s.loc))

	appointments, err := s.store.ListAppointments(ctx, backend.AppointmentFilter{From: from, To: to})
	if err != nil {
		return fmt.Errorf("load appointments: %w", err)
	}
	absences, err := s.store.ListAbsences(ctx, backend.AbsenceFilter{
		From:           from,
		To:             to,
		PractitionerID: appt.PractitionerID,
		ApprovedOnly:   true,
	})
	if err != nil {
		return fmt.Errorf("load absences: %w", err)
	}
	hours, err := s.store.GetOpeningHours(ctx)
	if err != nil {
		return fmt.Errorf("load opening hours: %w", err)
	}

	if c := s.checker.CheckAppointment(appt, appointments, absences, hours); c != nil {
		s.logger.Info("Appointment rejected",
			zap.Int64("appointment_id", appt.ID),
			zap.String("kind", string(c.Kind)),
			zap.String("resource", c.Resource.String()),
			zap.Int64("conflict_id", c.ConflictID),
		)
		return c
	}
	return nil
}

func isWeekdayKey(key string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if model.WeekdayKey(d) == key {
			return true
		}
	}
	return false
}
