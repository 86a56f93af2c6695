package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
CreateOfferRequest is the payload for POST /api/v1/offers.
ValidityDays falls back to the 7-day default when omitted.
*/
type CreateOfferRequest struct {
	PropertyID   uuid.UUID `json:"property_id" validate:"required"`
	PartnerID    uuid.UUID `json:"partner_id" validate:"required"`
	Price        float64   `json:"price" validate:"required"`
	ValidityDays int       `json:"validity_days,omitempty" validate:"omitempty,min=0"`
}

/*
AcceptOffersRequest carries the offer selection for the accept endpoint.
More than one id is rejected — only one offer can be accepted.
*/
type AcceptOffersRequest struct {
	OfferIDs []uuid.UUID `json:"offer_ids" validate:"required,min=1"`
}

type RefuseOfferRequest struct {
	OfferID uuid.UUID `json:"offer_id" validate:"required"`
}

/*
UpdateOfferDeadlineRequest sets the absolute deadline; the validity day
count is recomputed from it.
*/
type UpdateOfferDeadlineRequest struct {
	OfferID      uuid.UUID `json:"offer_id" validate:"required"`
	DateDeadline string    `json:"date_deadline" validate:"required"` // YYYY-MM-DD
}

/*
OfferDTO is the read model: stored fields plus the derived deadline.
*/
type OfferDTO struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	PartnerID  uuid.UUID `json:"partner_id"`
	Price      float64   `json:"price"`
	Status     string    `json:"status"`

	ValidityDays int    `json:"validity_days"`
	DateDeadline string `json:"date_deadline"`

	PropertyTypeID *uuid.UUID `json:"property_type_id,omitempty"`

	RowVersion int64     `json:"row_version"`
	CreatedAt  time.Time `json:"created_at"`
}
