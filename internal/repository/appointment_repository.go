package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/repository/base"
)

const appointmentColumns = `id, patient_id, practitioner_id, room_id, treatment_id, prescription_id, series_id,
		start_at, duration_minutes, status, notes, created_at, updated_at`

type AppointmentRepository struct {
	*base.Repository
	loc *time.Location
}

func NewAppointmentRepository(pool *pgxpool.Pool, loc *time.Location) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool), loc: loc}
}

func (r *AppointmentRepository) scan(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PractitionerID,
		&a.RoomID,
		&a.TreatmentID,
		&a.PrescriptionID,
		&a.SeriesID,
		&a.Start,
		&a.DurationMinutes,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Start = a.Start.In(r.loc)
	return &a, nil
}

// List returns appointments whose start falls on the filter's dates in the
// practice zone, ordered by start.
func (r *AppointmentRepository) List(ctx context.Context, filter backend.AppointmentFilter) ([]model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ($1::timestamptz IS NULL OR start_at >= $1)
		  AND ($2::timestamptz IS NULL OR start_at < $2)
		  AND ($3::bigint = 0 OR practitioner_id = $3)
		  AND ($4::bigint = 0 OR room_id = $4)
		ORDER BY start_at, id
	`

	var from, to *time.Time
	if !filter.From.IsZero() {
		t := filter.From.In(r.loc)
		from = &t
	}
	if !filter.To.IsZero() {
		t := filter.To.AddDays(1).In(r.loc)
		to = &t
	}

	rows, err := r.Query(ctx, query, from, to, filter.PractitionerID, filter.RoomID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []model.Appointment{}
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`

	a, err := r.scan(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, fmt.Errorf("appointment %d: %w", id, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return a, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, appt model.Appointment) (*model.Appointment, error) {
	if appt.Status == "" {
		appt.Status = model.StatusPlanned
	}
	if err := appt.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO appointments (patient_id, practitioner_id, room_id, treatment_id, prescription_id, series_id,
		                          start_at, duration_minutes, end_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + appointmentColumns

	created, err := r.scan(r.QueryRow(
		ctx, query,
		appt.PatientID,
		appt.PractitionerID,
		appt.RoomID,
		appt.TreatmentID,
		appt.PrescriptionID,
		appt.SeriesID,
		appt.Start,
		appt.DurationMinutes,
		appt.End(),
		appt.Status,
		appt.Notes,
	))
	if err != nil {
		return nil, r.writeError(ctx, "create appointment", err, appt)
	}
	return created, nil
}

// Update applies patch under a row lock.
func (r *AppointmentRepository) Update(ctx context.Context, id int64, patch backend.AppointmentPatch) (*model.Appointment, error) {
	var updated *model.Appointment
	err := r.InTx(ctx, func(ctx context.Context) error {
		lockQuery := `
			SELECT ` + appointmentColumns + `
			FROM appointments
			WHERE id = $1
			FOR UPDATE
		`
		current, err := r.scan(r.QueryRow(ctx, lockQuery, id))
		if err != nil {
			if base.IsNotFound(err) {
				return fmt.Errorf("appointment %d: %w", id, backend.ErrNotFound)
			}
			return fmt.Errorf("lock appointment: %w", err)
		}

		next := patch.Apply(*current)
		if err := next.Validate(); err != nil {
			return err
		}

		query := `
			UPDATE appointments
			SET practitioner_id = $2, room_id = $3, start_at = $4, duration_minutes = $5, end_at = $6,
			    status = $7, notes = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING ` + appointmentColumns

		updated, err = r.scan(r.QueryRow(
			ctx, query,
			id,
			next.PractitionerID,
			next.RoomID,
			next.Start,
			next.DurationMinutes,
			next.End(),
			next.Status,
			next.Notes,
		))
		if err != nil {
			return r.writeError(ctx, "update appointment", err, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM appointments WHERE id = $1`

	n, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("appointment %d: %w", id, backend.ErrNotFound)
	}
	return nil
}

// writeError turns an exclusion violation into the conflict it stands for.
func (r *AppointmentRepository) writeError(ctx context.Context, op string, err error, appt model.Appointment) error {
	constraint, ok := base.ExclusionConstraint(err)
	if !ok {
		if base.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: unknown practitioner or room: %w", op, backend.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	resource := model.RoomResource(appt.RoomID)
	if strings.Contains(constraint, "practitioner") {
		resource = model.PractitionerResource(appt.PractitionerID)
	}
	c := &conflict.Conflict{
		Kind:     conflict.KindAppointment,
		Resource: resource,
		Start:    appt.Start,
		End:      appt.End(),
	}

	// The failed statement may have aborted a surrounding transaction, so
	// the blocking row is looked up outside of it.
	column := "room_id"
	if resource.Kind == model.ResourcePractitioner {
		column = "practitioner_id"
	}
	query := `
		SELECT id, start_at, end_at
		FROM appointments
		WHERE ` + column + ` = $1
		  AND status <> 'cancelled'
		  AND id <> $2
		  AND tstzrange(start_at, end_at, '[)') && tstzrange($3, $4, '[)')
		ORDER BY start_at
		LIMIT 1
	`
	var start, end time.Time
	lookupErr := r.Pool().QueryRow(ctx, query, resource.ID, appt.ID, appt.Start, appt.End()).Scan(&c.ConflictID, &start, &end)
	if lookupErr == nil {
		c.Start, c.End = start.In(r.loc), end.In(r.loc)
	}
	return fmt.Errorf("%s: %w", op, c)
}
