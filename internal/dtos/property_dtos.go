package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
CreatePropertyRequest is the payload for POST /api/v1/properties.
*/
type CreatePropertyRequest struct {
	Name        string `json:"name" validate:"required"`
	Postcode    string `json:"postcode,omitempty"`
	Description string `json:"description,omitempty"`

	Bedrooms          *int   `json:"bedrooms,omitempty" validate:"omitempty,min=0"`
	LivingArea        int    `json:"living_area,omitempty" validate:"min=0"`
	Facades           int    `json:"facades,omitempty" validate:"min=0"`
	Garage            bool   `json:"garage,omitempty"`
	Garden            bool   `json:"garden,omitempty"`
	GardenArea        int    `json:"garden_area,omitempty" validate:"min=0"`
	GardenOrientation string `json:"garden_orientation,omitempty" validate:"omitempty,oneof=NORTH SOUTH EAST WEST"`

	ExpectedPrice    float64 `json:"expected_price" validate:"required,gt=0"`
	DateAvailability string  `json:"date_availability,omitempty"` // YYYY-MM-DD

	PropertyTypeID *uuid.UUID  `json:"property_type_id,omitempty"`
	TagIDs         []uuid.UUID `json:"tag_ids,omitempty"`
	SalespersonID  *uuid.UUID  `json:"salesperson_id,omitempty"`
}

/*
UpdatePropertyRequest carries partial edits; nil pointers leave the
field untouched. Lifecycle fields (state, selling price, buyer) are
deliberately absent — those move only through lifecycle operations.
*/
type UpdatePropertyRequest struct {
	Name        *string `json:"name,omitempty"`
	Postcode    *string `json:"postcode,omitempty"`
	Description *string `json:"description,omitempty"`

	Bedrooms          *int    `json:"bedrooms,omitempty" validate:"omitempty,min=0"`
	LivingArea        *int    `json:"living_area,omitempty" validate:"omitempty,min=0"`
	Facades           *int    `json:"facades,omitempty" validate:"omitempty,min=0"`
	Garage            *bool   `json:"garage,omitempty"`
	Garden            *bool   `json:"garden,omitempty"`
	GardenArea        *int    `json:"garden_area,omitempty" validate:"omitempty,min=0"`
	GardenOrientation *string `json:"garden_orientation,omitempty" validate:"omitempty,oneof=NORTH SOUTH EAST WEST"`

	ExpectedPrice    *float64 `json:"expected_price,omitempty" validate:"omitempty,gt=0"`
	DateAvailability *string  `json:"date_availability,omitempty"` // YYYY-MM-DD

	PropertyTypeID *uuid.UUID   `json:"property_type_id,omitempty"`
	ClearType      bool         `json:"clear_type,omitempty"`
	TagIDs         *[]uuid.UUID `json:"tag_ids,omitempty"`
	SalespersonID  *uuid.UUID   `json:"salesperson_id,omitempty"`
}

/*
PropertyDTO is the read model: stored fields plus the derived
total_area and best_offer.
*/
type PropertyDTO struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
	State  string    `json:"state"`

	Postcode    string `json:"postcode,omitempty"`
	Description string `json:"description,omitempty"`

	Bedrooms          int    `json:"bedrooms"`
	LivingArea        int    `json:"living_area"`
	Facades           int    `json:"facades"`
	Garage            bool   `json:"garage"`
	Garden            bool   `json:"garden"`
	GardenArea        int    `json:"garden_area"`
	GardenOrientation string `json:"garden_orientation,omitempty"`

	TotalArea int     `json:"total_area"`
	BestOffer float64 `json:"best_offer"`

	ExpectedPrice    float64 `json:"expected_price"`
	SellingPrice     float64 `json:"selling_price"`
	DateAvailability string  `json:"date_availability"`

	SalespersonID  uuid.UUID   `json:"salesperson_id"`
	BuyerID        *uuid.UUID  `json:"buyer_id,omitempty"`
	PropertyTypeID *uuid.UUID  `json:"property_type_id,omitempty"`
	TagIDs         []uuid.UUID `json:"tag_ids,omitempty"`

	RowVersion int64     `json:"row_version"`
	CreatedAt  time.Time `json:"created_at"`

	Offers []OfferDTO `json:"offers,omitempty"`
}

type ListPropertiesResponse struct {
	Results []PropertyDTO `json:"results"`
	Total   int           `json:"total"`
}

/*
BatchPropertyRequest drives the batch sell/cancel endpoints. The guard
is applied per record and the whole batch fails on the first violation.
*/
type BatchPropertyRequest struct {
	PropertyIDs []uuid.UUID `json:"property_ids" validate:"required,min=1"`
}
