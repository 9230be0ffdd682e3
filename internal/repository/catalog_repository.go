package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/repository/base"
)

// CatalogRepository reads practitioners and rooms.
type CatalogRepository struct {
	*base.Repository
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{Repository: base.NewRepository(pool)}
}

func (r *CatalogRepository) ListPractitioners(ctx context.Context) ([]model.Practitioner, error) {
	query := `
		SELECT id, first_name, last_name, is_active
		FROM practitioners
		ORDER BY id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list practitioners: %w", err)
	}
	defer rows.Close()

	practitioners := []model.Practitioner{}
	for rows.Next() {
		var p model.Practitioner
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan practitioner: %w", err)
		}
		practitioners = append(practitioners, p)
	}
	return practitioners, rows.Err()
}

func (r *CatalogRepository) ListRooms(ctx context.Context) ([]model.Room, error) {
	query := `
		SELECT id, name, is_active
		FROM rooms
		ORDER BY id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.IsActive); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
