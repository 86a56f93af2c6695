package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListActive(ctx context.Context) ([]*models.Property, error)
	ListBySalespersonID(ctx context.Context, salespersonID uuid.UUID) ([]*models.Property, error)

	Update(ctx context.Context, p *models.Property) error
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error

	// UpdateStateAtomic flips the lifecycle state iff the aggregate version
	// still matches. Returns utils.ErrRowVersionConflict on a lost race and
	// (nil, nil) when the property does not exist.
	UpdateStateAtomic(ctx context.Context, id uuid.UUID, newState models.PropertyStateType, expectedVersion int64) (*models.Property, error)

	Delete(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO properties (
            id, name, active, state, postcode, description,
            bedrooms, living_area, facades, garage,
            garden, garden_area, garden_orientation,
            expected_price, selling_price, date_availability,
            salesperson_id, buyer_id, property_type_id,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19, NOW(), NOW(), 1)
    `,
		p.ID,
		p.Name,
		p.Active,
		p.State,
		p.Postcode,
		p.Description,
		p.Bedrooms,
		p.LivingArea,
		p.Facades,
		p.Garage,
		p.Garden,
		p.GardenArea,
		string(p.GardenOrientation),
		p.ExpectedPrice,
		p.SellingPrice,
		p.DateAvailability,
		p.SalespersonID,
		p.BuyerID,
		p.PropertyTypeID,
	)
	if err != nil {
		return err
	}
	if err := replaceTagLinks(ctx, tx, p.ID, p.TagIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := r.BaseVersionedRepo.GetByID(ctx, id.String())
	if err != nil || p == nil {
		return p, err
	}
	if p.TagIDs, err = loadTagIDs(ctx, r.db, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepo) ListActive(ctx context.Context) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" WHERE active ORDER BY created_at")
}

func (r *propertyRepo) ListBySalespersonID(ctx context.Context, salespersonID uuid.UUID) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" WHERE active AND salesperson_id=$1 ORDER BY created_at", salespersonID)
}

func (r *propertyRepo) list(ctx context.Context, sql string, args ...interface{}) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if p.TagIDs, err = loadTagIDs(ctx, r.db, p.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	_, err := r.update(ctx, p, false, 0)
	return err
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, p, true, expected)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *propertyRepo) update(ctx context.Context, p *models.Property, check bool, expected int64) (pgconn.CommandTag, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sql := `
        UPDATE properties SET
            name=$1, active=$2, state=$3, postcode=$4, description=$5,
            bedrooms=$6, living_area=$7, facades=$8, garage=$9,
            garden=$10, garden_area=$11, garden_orientation=$12,
            expected_price=$13, selling_price=$14, date_availability=$15,
            salesperson_id=$16, buyer_id=$17, property_type_id=$18, updated_at=NOW()
    `
	args := []interface{}{
		p.Name, p.Active, p.State, p.Postcode, p.Description,
		p.Bedrooms, p.LivingArea, p.Facades, p.Garage,
		p.Garden, p.GardenArea, string(p.GardenOrientation),
		p.ExpectedPrice, p.SellingPrice, p.DateAvailability,
		p.SalespersonID, p.BuyerID, p.PropertyTypeID,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$19 AND row_version=$20`
		args = append(args, p.ID, expected)
	} else {
		sql += ` WHERE id=$19`
		args = append(args, p.ID)
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if !check || tag.RowsAffected() == 1 {
		if err := replaceTagLinks(ctx, tx, p.ID, p.TagIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *propertyRepo) UpdateStateAtomic(
	ctx context.Context,
	id uuid.UUID,
	newState models.PropertyStateType,
	expectedVersion int64,
) (*models.Property, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE properties
        SET state=$1, updated_at=NOW(), row_version=row_version+1
        WHERE id=$2 AND row_version=$3
    `, newState, id, expectedVersion)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, nil
		}
		return nil, utils.ErrRowVersionConflict
	}
	return r.GetByID(ctx, id)
}

func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepo) Archive(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE properties SET active=FALSE, updated_at=NOW(), row_version=row_version+1
        WHERE id=$1
    `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ------------------------------------------------------------------
   Helpers
------------------------------------------------------------------ */

func baseSelectProperty() string {
	return `
        SELECT
            id, name, active, state, postcode, description,
            bedrooms, living_area, facades, garage,
            garden, garden_area, garden_orientation,
            expected_price, selling_price, date_availability,
            salesperson_id, buyer_id, property_type_id,
            created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	var orientation string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Active,
		&p.State,
		&p.Postcode,
		&p.Description,
		&p.Bedrooms,
		&p.LivingArea,
		&p.Facades,
		&p.Garage,
		&p.Garden,
		&p.GardenArea,
		&orientation,
		&p.ExpectedPrice,
		&p.SellingPrice,
		&p.DateAvailability,
		&p.SalespersonID,
		&p.BuyerID,
		&p.PropertyTypeID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.GardenOrientation = models.GardenOrientationType(orientation)
	return &p, nil
}

func loadTagIDs(ctx context.Context, db DB, propertyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, `
        SELECT tag_id FROM property_tag_links WHERE property_id=$1 ORDER BY tag_id
    `, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func replaceTagLinks(ctx context.Context, tx pgx.Tx, propertyID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM property_tag_links WHERE property_id=$1`, propertyID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx, `
            INSERT INTO property_tag_links (property_id, tag_id) VALUES ($1,$2)
            ON CONFLICT DO NOTHING
        `, propertyID, tagID); err != nil {
			return err
		}
	}
	return nil
}
