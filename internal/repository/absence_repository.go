package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/repository/base"
)

const absenceColumns = `id, practitioner_id, absence_type, start_date, end_date, start_time::text, end_time::text,
		is_full_day, is_approved, notes`

type AbsenceRepository struct {
	*base.Repository
}

func NewAbsenceRepository(pool *pgxpool.Pool) *AbsenceRepository {
	return &AbsenceRepository{Repository: base.NewRepository(pool)}
}

func scanAbsence(row pgx.Row) (*model.Absence, error) {
	var (
		a                  model.Absence
		startDate, endDate time.Time
		startTime, endTime *string
	)
	err := row.Scan(
		&a.ID,
		&a.PractitionerID,
		&a.Type,
		&startDate,
		&endDate,
		&startTime,
		&endTime,
		&a.IsFullDay,
		&a.IsApproved,
		&a.Notes,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate = model.DateOf(startDate.UTC())
	a.EndDate = model.DateOf(endDate.UTC())
	if a.StartTime, err = parseClock(startTime); err != nil {
		return nil, err
	}
	if a.EndTime, err = parseClock(endTime); err != nil {
		return nil, err
	}
	return &a, nil
}

func parseClock(s *string) (*model.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := model.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func clockArg(t *model.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func dateArg(d model.Date) time.Time {
	return d.In(time.UTC)
}

// List returns absences overlapping the filter's date range.
func (r *AbsenceRepository) List(ctx context.Context, filter backend.AbsenceFilter) ([]model.Absence, error) {
	query := `
		SELECT ` + absenceColumns + `
		FROM absences
		WHERE ($1::date IS NULL OR end_date >= $1)
		  AND ($2::date IS NULL OR start_date <= $2)
		  AND ($3::bigint = 0 OR practitioner_id = $3)
		  AND (NOT $4::boolean OR is_approved)
		ORDER BY id
	`

	var from, to *time.Time
	if !filter.From.IsZero() {
		t := dateArg(filter.From)
		from = &t
	}
	if !filter.To.IsZero() {
		t := dateArg(filter.To)
		to = &t
	}

	rows, err := r.Query(ctx, query, from, to, filter.PractitionerID, filter.ApprovedOnly)
	if err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	defer rows.Close()

	absences := []model.Absence{}
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan absence: %w", err)
		}
		absences = append(absences, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate absences: %w", err)
	}
	return absences, nil
}

func (r *AbsenceRepository) Create(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	if absence.Type == "" {
		absence.Type = model.AbsenceOther
	}

	query := `
		INSERT INTO absences (practitioner_id, absence_type, start_date, end_date, start_time, end_time,
		                      is_full_day, is_approved, notes)
		VALUES ($1, $2, $3, $4, $5::time, $6::time, $7, $8, $9)
		RETURNING ` + absenceColumns

	created, err := scanAbsence(r.QueryRow(
		ctx, query,
		absence.PractitionerID,
		absence.Type,
		dateArg(absence.StartDate),
		dateArg(absence.EndDate),
		clockArg(absence.StartTime),
		clockArg(absence.EndTime),
		absence.IsFullDay,
		absence.IsApproved,
		absence.Notes,
	))
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("create absence: practitioner %d: %w", absence.PractitionerID, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("create absence: %w", err)
	}
	return created, nil
}

// Update replaces every field of the absence.
func (r *AbsenceRepository) Update(ctx context.Context, absence model.Absence) (*model.Absence, error) {
	query := `
		UPDATE absences
		SET practitioner_id = $2, absence_type = $3, start_date = $4, end_date = $5,
		    start_time = $6::time, end_time = $7::time, is_full_day = $8, is_approved = $9, notes = $10
		WHERE id = $1
		RETURNING ` + absenceColumns

	updated, err := scanAbsence(r.QueryRow(
		ctx, query,
		absence.ID,
		absence.PractitionerID,
		absence.Type,
		dateArg(absence.StartDate),
		dateArg(absence.EndDate),
		clockArg(absence.StartTime),
		clockArg(absence.EndTime),
		absence.IsFullDay,
		absence.IsApproved,
		absence.Notes,
	))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, fmt.Errorf("absence %d: %w", absence.ID, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("update absence: %w", err)
	}
	return updated, nil
}

func (r *AbsenceRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM absences WHERE id = $1`

	n, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("absence %d: %w", id, backend.ErrNotFound)
	}
	return nil
}
