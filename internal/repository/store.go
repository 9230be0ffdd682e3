package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// Store is the Postgres backend.Store. Overlaps are also rejected by the
// exclusion constraints on appointments.
type Store struct {
	Appointments *AppointmentRepository
	Absences     *AbsenceRepository
	Catalog      *CatalogRepository
	Practice     *PracticeRepository

	logger *zap.Logger
}

var _ backend.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool, loc *time.Location, logger *zap.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		Appointments: NewAppointmentRepository(pool, loc),
		Absences:     NewAbsenceRepository(pool),
		Catalog:      NewCatalogRepository(pool),
		Practice:     NewPracticeRepository(pool),
		logger:       logger,
	}
}

func (s *Store) ListAppointments(ctx context.Context, filter backend.AppointmentFilter) ([]model.Appointment, error) {
	return s.Appointments.List(ctx, filter)
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.Appointments.GetByID(ctx, id)
}

func (s *Store) CreateAppointment(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	created, err := s.Appointments.Create(ctx, appt)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Appointment stored", zap.Int64("appointment_id", created.ID))
	return created, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, id int64, patch backend.AppointmentPatch) (*model.Appointment, error) {
	return s.Appointments.Update(ctx, id, patch)
}

func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	return s.Appointments.Delete(ctx, id)
}

func (s *Store) ListAbsences(ctx context.Context, filter backend.AbsenceFilter) ([]model.Absence, error) {
	return s.Absences.List(ctx, filter)
}

func (s *Store) CreateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	return s.Absences.Create(ctx, absence)
}

func (s *Store) UpdateAbsence(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	return s.Absences.Update(ctx, absence)
}

func (s *Store) DeleteAbsence(ctx context.Context, id int64) error {
	return s.Absences.Delete(ctx, id)
}

func (s *Store) ListPractitioners(ctx context.Context) ([]model.Practitioner, error) {
	return s.Catalog.ListPractitioners(ctx)
}

func (s *Store) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.Catalog.ListRooms(ctx)
}

func (s *Store) GetOpeningHours(ctx context.Context) (model.OpeningHours, error) {
	return s.Practice.GetOpeningHours(ctx)
}

func (s *Store) UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error {
	return s.Practice.UpdateOpeningHours(ctx, hours)
}
