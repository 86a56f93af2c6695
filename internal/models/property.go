package models

import (
	"time"

	"github.com/google/uuid"
)

type PropertyStateType string

const (
	PropertyStateNew           PropertyStateType = "NEW"
	PropertyStateOfferReceived PropertyStateType = "OFFER_RECEIVED"
	PropertyStateOfferAccepted PropertyStateType = "OFFER_ACCEPTED"
	PropertyStateSold          PropertyStateType = "SOLD"
	PropertyStateCanceled      PropertyStateType = "CANCELED"
)

type GardenOrientationType string

const (
	GardenOrientationNone  GardenOrientationType = ""
	GardenOrientationNorth GardenOrientationType = "NORTH"
	GardenOrientationSouth GardenOrientationType = "SOUTH"
	GardenOrientationEast  GardenOrientationType = "EAST"
	GardenOrientationWest  GardenOrientationType = "WEST"
)

type Property struct {
	Versioned

	ID     uuid.UUID         `json:"id"`
	Name   string            `json:"name"`
	Active bool              `json:"active"`
	State  PropertyStateType `json:"state"`

	Postcode    string `json:"postcode,omitempty"`
	Description string `json:"description,omitempty"`

	Bedrooms          int                   `json:"bedrooms"`
	LivingArea        int                   `json:"living_area"`
	Facades           int                   `json:"facades"`
	Garage            bool                  `json:"garage"`
	Garden            bool                  `json:"garden"`
	GardenArea        int                   `json:"garden_area"`
	GardenOrientation GardenOrientationType `json:"garden_orientation,omitempty"`

	ExpectedPrice    float64   `json:"expected_price"`
	SellingPrice     float64   `json:"selling_price"`
	DateAvailability time.Time `json:"date_availability"`

	SalespersonID  uuid.UUID  `json:"salesperson_id"`
	BuyerID        *uuid.UUID `json:"buyer_id,omitempty"`
	PropertyTypeID *uuid.UUID `json:"property_type_id,omitempty"`
	TagIDs         []uuid.UUID `json:"tag_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Property) GetID() string {
	return p.ID.String()
}

// TotalArea is derived; it is never stored.
func (p *Property) TotalArea() int {
	return p.LivingArea + p.GardenArea
}

// IsDeletable reports whether hard deletion is allowed for the current state.
func (p *Property) IsDeletable() bool {
	return p.State == PropertyStateNew || p.State == PropertyStateCanceled
}
