package services

import (
	"github.com/realvia/estate-service/internal/constants"
	"github.com/realvia/estate-service/internal/models"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

/*
   Stateless predicates evaluated before any write. Each maps to exactly
   one sentinel error so callers and tests can classify failures.
*/

func CheckExpectedPrice(price float64) error {
	if price <= 0 {
		return internal_utils.ErrNonPositiveExpectedPrice
	}
	return nil
}

func CheckOfferPrice(price float64) error {
	if price <= 0 {
		return internal_utils.ErrNonPositivePrice
	}
	return nil
}

// CheckOfferFloor enforces the monotonic floor: a new offer may not be
// lower than the lowest offer already on the table.
func CheckOfferFloor(price float64, offers []*models.PropertyOffer) error {
	min, ok := MinOfferPrice(offers)
	if ok && price < min {
		return internal_utils.ErrOfferBelowFloor
	}
	return nil
}

// CheckSellingPriceFloor enforces the 90% rule. A zero selling price
// means "no sale agreed yet" and is always allowed.
func CheckSellingPriceFloor(sellingPrice, expectedPrice float64) error {
	if sellingPrice == 0 {
		return nil
	}
	if sellingPrice < constants.SellingPriceFloorRatio*expectedPrice {
		return internal_utils.ErrSellingPriceBelowFloor
	}
	return nil
}

func CheckSellable(state models.PropertyStateType) error {
	if state == models.PropertyStateCanceled {
		return internal_utils.ErrWrongState
	}
	return nil
}

func CheckCancellable(state models.PropertyStateType) error {
	if state == models.PropertyStateSold {
		return internal_utils.ErrWrongState
	}
	return nil
}

// CheckAcceptable gates the {NEW, OFFER_RECEIVED} → OFFER_ACCEPTED
// transition.
func CheckAcceptable(state models.PropertyStateType) error {
	if state != models.PropertyStateNew && state != models.PropertyStateOfferReceived {
		return internal_utils.ErrWrongState
	}
	return nil
}

func CheckDeletable(state models.PropertyStateType) error {
	if state != models.PropertyStateNew && state != models.PropertyStateCanceled {
		return internal_utils.ErrPropertyNotDeletable
	}
	return nil
}

/* ------------------------ derived values ------------------------ */

// MinOfferPrice returns the lowest offer price, ok=false when there are
// no offers.
func MinOfferPrice(offers []*models.PropertyOffer) (float64, bool) {
	if len(offers) == 0 {
		return 0, false
	}
	min := offers[0].Price
	for _, o := range offers[1:] {
		if o.Price < min {
			min = o.Price
		}
	}
	return min, true
}

// BestOffer is the highest offer price, 0 when there are no offers.
func BestOffer(offers []*models.PropertyOffer) float64 {
	best := 0.0
	for _, o := range offers {
		if o.Price > best {
			best = o.Price
		}
	}
	return best
}

// AcceptedOffer returns the accepted offer, nil if none. The single
// accepted-offer invariant means at most one can exist.
func AcceptedOffer(offers []*models.PropertyOffer) *models.PropertyOffer {
	for _, o := range offers {
		if o.Status == models.OfferStatusAccepted {
			return o
		}
	}
	return nil
}
