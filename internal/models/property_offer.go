package models

import (
	"time"

	"github.com/google/uuid"
)

type OfferStatusType string

const (
	OfferStatusNone     OfferStatusType = "NONE"
	OfferStatusAccepted OfferStatusType = "ACCEPTED"
	OfferStatusRefused  OfferStatusType = "REFUSED"
)

type PropertyOffer struct {
	Versioned

	ID         uuid.UUID       `json:"id"`
	PropertyID uuid.UUID       `json:"property_id"`
	PartnerID  uuid.UUID       `json:"partner_id"`
	Price      float64         `json:"price"`
	Status     OfferStatusType `json:"status"`

	// ValidityDays is the offer's time-to-live relative to CreatedAt.
	// The absolute deadline is derived, never stored.
	ValidityDays int `json:"validity_days"`

	// PropertyTypeID mirrors the owning property's type for reporting.
	PropertyTypeID *uuid.UUID `json:"property_type_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *PropertyOffer) GetID() string {
	return o.ID.String()
}
