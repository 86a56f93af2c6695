package constants

const (
	// Pricing rules
	SellingPriceFloorRatio = 0.90 // accepted price must be >= 90% of expected
	CommissionRate         = 0.06
	AdministrativeFee      = 100.00

	// Offer defaults
	DefaultOfferValidityDays = 7

	// Property defaults
	DefaultBedrooms        = 2
	GardenDefaultArea      = 10
	AvailabilityLeadMonths = 3

	// Invoice line descriptions sent to the accounting collaborator
	InvoiceLineCommission = "Commission"
	InvoiceLineAdminFee   = "Administrative fee"
)
