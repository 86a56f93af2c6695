package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/utils"
)

type PropertyTypeRepository interface {
	Create(ctx context.Context, t *models.PropertyType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyType, error)
	List(ctx context.Context) ([]*models.PropertyType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyTypeRepo struct {
	db DB
}

func NewPropertyTypeRepository(db DB) PropertyTypeRepository {
	return &propertyTypeRepo{db: db}
}

func (r *propertyTypeRepo) Create(ctx context.Context, t *models.PropertyType) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO property_types (id, name, sequence, created_at)
        VALUES ($1,$2,$3,NOW())
    `, t.ID, t.Name, t.Sequence)
	return mapUniqueViolation(err)
}

func (r *propertyTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyType, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, name, sequence, created_at FROM property_types WHERE id=$1
    `, id)
	var t models.PropertyType
	err := row.Scan(&t.ID, &t.Name, &t.Sequence, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *propertyTypeRepo) List(ctx context.Context) ([]*models.PropertyType, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, sequence, created_at FROM property_types
        ORDER BY sequence, name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyType
	for rows.Next() {
		var t models.PropertyType
		if err := rows.Scan(&t.ID, &t.Name, &t.Sequence, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *propertyTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_types WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// mapUniqueViolation converts a Postgres unique violation into the
// domain-level duplicate-name sentinel.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return utils.ErrDuplicateName
	}
	return err
}
