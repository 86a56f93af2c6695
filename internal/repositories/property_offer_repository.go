package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface

   The property and its offers form one consistency boundary. Every
   method that touches both tables runs in a single transaction and
   guards the property row with its expected row_version, so two
   concurrent mutations of the same aggregate cannot both commit.
------------------------------------------------------------------ */

type PropertyOfferRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyOffer, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyOffer, error)

	// CreateAtomic inserts the offer and moves the property to newState
	// (pass the current state to leave it unchanged), bumping the
	// aggregate version either way.
	CreateAtomic(ctx context.Context, o *models.PropertyOffer, newState models.PropertyStateType, expectedPropertyVersion int64) error

	// AcceptAtomic marks the offer accepted and stamps buyer, selling
	// price and the OFFER_ACCEPTED state onto the owning property.
	AcceptAtomic(ctx context.Context, offerID, propertyID, buyerID uuid.UUID, price float64, expectedPropertyVersion int64) error

	// RefuseAtomic marks the offer refused. With revert=true the owning
	// property's buyer and selling price are cleared and its state falls
	// back to OFFER_RECEIVED.
	RefuseAtomic(ctx context.Context, offerID, propertyID uuid.UUID, revert bool, expectedPropertyVersion int64) error

	UpdateValidityIfVersion(ctx context.Context, o *models.PropertyOffer, expected int64) (pgconn.CommandTag, error)

	// RefreshTypeMirror rewrites the denormalized property_type_id on
	// every offer of the property.
	RefreshTypeMirror(ctx context.Context, propertyID uuid.UUID, typeID *uuid.UUID) error

	// ListExpiredPending returns offers still in NONE status whose
	// deadline (created_at + validity_days) has passed.
	ListExpiredPending(ctx context.Context, asOf time.Time) ([]*models.PropertyOffer, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyOfferRepo struct {
	db DB
}

func NewPropertyOfferRepository(db DB) PropertyOfferRepository {
	return &propertyOfferRepo{db: db}
}

func baseSelectOffer() string {
	return `
        SELECT
            id, property_id, partner_id, price, status,
            validity_days, property_type_id,
            created_at, updated_at, row_version
        FROM property_offers
    `
}

func scanOffer(row pgx.Row) (*models.PropertyOffer, error) {
	var o models.PropertyOffer
	err := row.Scan(
		&o.ID,
		&o.PropertyID,
		&o.PartnerID,
		&o.Price,
		&o.Status,
		&o.ValidityDays,
		&o.PropertyTypeID,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *propertyOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyOffer, error) {
	row := r.db.QueryRow(ctx, baseSelectOffer()+" WHERE id=$1", id)
	return scanOffer(row)
}

func (r *propertyOfferRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyOffer, error) {
	rows, err := r.db.Query(ctx, baseSelectOffer()+" WHERE property_id=$1 ORDER BY price DESC, created_at", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *propertyOfferRepo) CreateAtomic(
	ctx context.Context,
	o *models.PropertyOffer,
	newState models.PropertyStateType,
	expectedPropertyVersion int64,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO property_offers (
            id, property_id, partner_id, price, status,
            validity_days, property_type_id,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),1)
    `,
		o.ID,
		o.PropertyID,
		o.PartnerID,
		o.Price,
		o.Status,
		o.ValidityDays,
		o.PropertyTypeID,
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := bumpProperty(ctx, tx, o.PropertyID, expectedPropertyVersion, `state=$1`, newState); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *propertyOfferRepo) AcceptAtomic(
	ctx context.Context,
	offerID, propertyID, buyerID uuid.UUID,
	price float64,
	expectedPropertyVersion int64,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE property_offers
        SET status=$1, updated_at=NOW(), row_version=row_version+1
        WHERE id=$2
    `, models.OfferStatusAccepted, offerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	err = bumpProperty(ctx, tx, propertyID, expectedPropertyVersion,
		`state=$1, buyer_id=$2, selling_price=$3`,
		models.PropertyStateOfferAccepted, buyerID, price)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *propertyOfferRepo) RefuseAtomic(
	ctx context.Context,
	offerID, propertyID uuid.UUID,
	revert bool,
	expectedPropertyVersion int64,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE property_offers
        SET status=$1, updated_at=NOW(), row_version=row_version+1
        WHERE id=$2
    `, models.OfferStatusRefused, offerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if revert {
		err = bumpProperty(ctx, tx, propertyID, expectedPropertyVersion,
			`state=$1, buyer_id=NULL, selling_price=0`,
			models.PropertyStateOfferReceived)
	} else {
		err = bumpProperty(ctx, tx, propertyID, expectedPropertyVersion, "")
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *propertyOfferRepo) UpdateValidityIfVersion(
	ctx context.Context,
	o *models.PropertyOffer,
	expected int64,
) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE property_offers
        SET validity_days=$1, updated_at=NOW(), row_version=row_version+1
        WHERE id=$2 AND row_version=$3
    `, o.ValidityDays, o.ID, expected)
}

func (r *propertyOfferRepo) RefreshTypeMirror(ctx context.Context, propertyID uuid.UUID, typeID *uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE property_offers SET property_type_id=$1, updated_at=NOW()
        WHERE property_id=$2
    `, typeID, propertyID)
	return err
}

func (r *propertyOfferRepo) ListExpiredPending(ctx context.Context, asOf time.Time) ([]*models.PropertyOffer, error) {
	rows, err := r.db.Query(ctx, baseSelectOffer()+`
        WHERE status=$1 AND created_at + make_interval(days => validity_days) < $2
        ORDER BY created_at
    `, models.OfferStatusNone, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// bumpProperty applies extra SET clauses (numbered from $1) to the property
// row and advances its version, failing with ErrRowVersionConflict when the
// expected version no longer matches.
func bumpProperty(
	ctx context.Context,
	tx pgx.Tx,
	propertyID uuid.UUID,
	expectedVersion int64,
	setClause string,
	args ...interface{},
) error {
	sql := `UPDATE properties SET updated_at=NOW(), row_version=row_version+1`
	if setClause != "" {
		sql += ", " + setClause
	}
	n := len(args)
	sql += ` WHERE id=$` + strconv.Itoa(n+1) + ` AND row_version=$` + strconv.Itoa(n+2)
	args = append(args, propertyID, expectedVersion)

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrRowVersionConflict
	}
	return nil
}
