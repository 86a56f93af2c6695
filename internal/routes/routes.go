package routes

const (
	// Health
	Health = "/health"

	// Property endpoints
	PropertiesBase        = "/api/v1/properties"
	PropertyByID          = "/api/v1/properties/{id}"
	PropertyDuplicate     = "/api/v1/properties/{id}/duplicate"
	PropertySold          = "/api/v1/properties/{id}/sold"
	PropertyCancel        = "/api/v1/properties/{id}/cancel"
	PropertyArchive       = "/api/v1/properties/{id}/archive"
	PropertiesSoldBatch   = "/api/v1/properties/sold"
	PropertiesCancelBatch = "/api/v1/properties/cancel"

	// Offer endpoints
	OffersBase       = "/api/v1/offers"
	OffersByProperty = "/api/v1/properties/{id}/offers"
	OffersAccept     = "/api/v1/offers/accept"
	OffersRefuse     = "/api/v1/offers/refuse"
	OffersDeadline   = "/api/v1/offers/deadline"

	// Reference data
	PropertyTypes    = "/api/v1/property-types"
	PropertyTypeByID = "/api/v1/property-types/{id}"
	PropertyTags     = "/api/v1/property-tags"
	PropertyTagByID  = "/api/v1/property-tags/{id}"
)
