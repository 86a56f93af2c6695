package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/realvia/estate-service/internal/models"
)

type PropertyTagRepository interface {
	Create(ctx context.Context, t *models.PropertyTag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyTag, error)
	List(ctx context.Context) ([]*models.PropertyTag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyTagRepo struct {
	db DB
}

func NewPropertyTagRepository(db DB) PropertyTagRepository {
	return &propertyTagRepo{db: db}
}

func (r *propertyTagRepo) Create(ctx context.Context, t *models.PropertyTag) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO property_tags (id, name, color, created_at)
        VALUES ($1,$2,$3,NOW())
    `, t.ID, t.Name, t.Color)
	return mapUniqueViolation(err)
}

func (r *propertyTagRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyTag, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, name, color, created_at FROM property_tags WHERE id=$1
    `, id)
	var t models.PropertyTag
	err := row.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *propertyTagRepo) List(ctx context.Context) ([]*models.PropertyTag, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, color, created_at FROM property_tags ORDER BY name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyTag
	for rows.Next() {
		var t models.PropertyTag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *propertyTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_tags WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
