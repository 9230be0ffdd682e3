package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/repository/base"
)

// practiceID is the single practice row.
const practiceID = 1

type PracticeRepository struct {
	*base.Repository
}

func NewPracticeRepository(pool *pgxpool.Pool) *PracticeRepository {
	return &PracticeRepository{Repository: base.NewRepository(pool)}
}

// GetOpeningHours returns nil when the practice row is missing.
func (r *PracticeRepository) GetOpeningHours(ctx context.Context) (model.OpeningHours, error) {
	query := `SELECT opening_hours FROM practice WHERE id = $1`

	var raw []byte
	if err := r.QueryRow(ctx, query, practiceID).Scan(&raw); err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opening hours: %w", err)
	}

	var hours model.OpeningHours
	if err := json.Unmarshal(raw, &hours); err != nil {
		return nil, fmt.Errorf("decode opening hours: %w", err)
	}
	return hours, nil
}

func (r *PracticeRepository) UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error {
	raw, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("encode opening hours: %w", err)
	}

	query := `
		INSERT INTO practice (id, opening_hours)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET opening_hours = EXCLUDED.opening_hours
	`
	if _, err := r.ExecAffected(ctx, query, practiceID, string(raw)); err != nil {
		return fmt.Errorf("update opening hours: %w", err)
	}
	return nil
}
