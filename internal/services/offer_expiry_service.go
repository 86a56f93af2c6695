package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/repositories"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

// OfferExpiryService is the scheduled sweep that refuses pending offers
// whose deadline has passed. Refusal goes through the normal lifecycle
// path; when a sweep leaves a property with no live offers at all, the
// property falls back to NEW.
type OfferExpiryService struct {
	propRepo  repositories.PropertyRepository
	offerRepo repositories.PropertyOfferRepository
	offerSvc  *OfferService
	clock     Clock
}

func NewOfferExpiryService(
	propRepo repositories.PropertyRepository,
	offerRepo repositories.PropertyOfferRepository,
	offerSvc *OfferService,
	clock Clock,
) *OfferExpiryService {
	return &OfferExpiryService{
		propRepo:  propRepo,
		offerRepo: offerRepo,
		offerSvc:  offerSvc,
		clock:     clock,
	}
}

// RunExpirySweep refuses every expired pending offer. Failures on one
// offer are logged and do not stop the sweep.
func (s *OfferExpiryService) RunExpirySweep(ctx context.Context) error {
	expired, err := s.offerRepo.ListExpiredPending(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	refused := 0
	touched := make(map[uuid.UUID]struct{})
	for _, o := range expired {
		if err := s.offerSvc.RefuseOffer(ctx, o.ID); err != nil {
			internal_utils.Logger.WithError(err).Warnf("Failed to refuse expired offer %s", o.ID)
			continue
		}
		refused++
		touched[o.PropertyID] = struct{}{}
	}

	for propertyID := range touched {
		if err := s.revertIfNoLiveOffers(ctx, propertyID); err != nil {
			internal_utils.Logger.WithError(err).Warnf("Failed to revert property %s after sweep", propertyID)
		}
	}

	internal_utils.Logger.Infof("Offer expiry sweep refused %d of %d expired offers", refused, len(expired))
	return nil
}

// revertIfNoLiveOffers drops a property back to NEW when every one of
// its offers has been refused.
func (s *OfferExpiryService) revertIfNoLiveOffers(ctx context.Context, propertyID uuid.UUID) error {
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if prop == nil || prop.State != models.PropertyStateOfferReceived {
		return nil
	}

	offers, err := s.offerRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return err
	}
	for _, o := range offers {
		if o.Status != models.OfferStatusRefused {
			return nil
		}
	}

	_, err = s.propRepo.UpdateStateAtomic(ctx, propertyID, models.PropertyStateNew, prop.RowVersion)
	if errors.Is(err, internal_utils.ErrRowVersionConflict) {
		// Someone mutated the aggregate since the sweep; leave it alone.
		return nil
	}
	return err
}
