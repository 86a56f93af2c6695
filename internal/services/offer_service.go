package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/realvia/estate-service/internal/constants"
	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/repositories"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

type OfferService struct {
	propRepo  repositories.PropertyRepository
	offerRepo repositories.PropertyOfferRepository
	clock     Clock
}

func NewOfferService(
	propRepo repositories.PropertyRepository,
	offerRepo repositories.PropertyOfferRepository,
	clock Clock,
) *OfferService {
	return &OfferService{
		propRepo:  propRepo,
		offerRepo: offerRepo,
		clock:     clock,
	}
}

// CreateOffer validates the bid, inserts it and, when it is the
// property's first offer, moves the property NEW → OFFER_RECEIVED in
// the same transaction.
func (s *OfferService) CreateOffer(
	ctx context.Context,
	propertyID, partnerID uuid.UUID,
	price float64,
	validityDays int,
) (*dtos.OfferDTO, error) {
	if err := CheckOfferPrice(price); err != nil {
		return nil, err
	}
	if validityDays < 0 {
		return nil, internal_utils.ErrNegativeValidity
	}
	if validityDays == 0 {
		validityDays = constants.DefaultOfferValidityDays
	}

	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, internal_utils.ErrNotFound
	}

	offers, err := s.offerRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := CheckOfferFloor(price, offers); err != nil {
		return nil, err
	}

	newState := prop.State
	if prop.State == models.PropertyStateNew {
		newState = models.PropertyStateOfferReceived
	}

	offer := &models.PropertyOffer{
		ID:             uuid.New(),
		PropertyID:     propertyID,
		PartnerID:      partnerID,
		Price:          price,
		Status:         models.OfferStatusNone,
		ValidityDays:   validityDays,
		PropertyTypeID: prop.PropertyTypeID,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.offerRepo.CreateAtomic(ctx, offer, newState, prop.RowVersion); err != nil {
		return nil, s.mapAggregateConflict(ctx, propertyID, err)
	}

	offer.RowVersion = 1
	dto := s.buildOfferDTO(offer)
	return &dto, nil
}

// AcceptOffers is the batch entry point. Accepting is a single-record
// operation: more than one id fails outright.
func (s *OfferService) AcceptOffers(ctx context.Context, offerIDs []uuid.UUID) error {
	if len(offerIDs) == 0 {
		return internal_utils.ErrInvalidPayload
	}
	if len(offerIDs) > 1 {
		return internal_utils.ErrSingleOfferAcceptOnly
	}
	return s.AcceptOffer(ctx, offerIDs[0])
}

// AcceptOffer marks the offer accepted and stamps buyer, selling price
// and the OFFER_ACCEPTED state onto the property, all atomically. The
// single-accepted invariant is checked across the property's full offer
// set and enforced against races by the aggregate version guard.
func (s *OfferService) AcceptOffer(ctx context.Context, offerID uuid.UUID) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer == nil {
		return internal_utils.ErrNotFound
	}

	prop, err := s.propRepo.GetByID(ctx, offer.PropertyID)
	if err != nil {
		return err
	}
	if prop == nil {
		return internal_utils.ErrNotFound
	}

	offers, err := s.offerRepo.ListByPropertyID(ctx, offer.PropertyID)
	if err != nil {
		return err
	}
	if AcceptedOffer(offers) != nil {
		return internal_utils.ErrOfferAlreadyAccepted
	}

	if err := CheckAcceptable(prop.State); err != nil {
		return err
	}
	if err := CheckSellingPriceFloor(offer.Price, prop.ExpectedPrice); err != nil {
		return err
	}

	err = s.offerRepo.AcceptAtomic(ctx, offer.ID, prop.ID, offer.PartnerID, offer.Price, prop.RowVersion)
	if err != nil {
		if errors.Is(err, internal_utils.ErrRowVersionConflict) {
			// A concurrent accept may have won; report that as the
			// accepted-offer conflict rather than a bare version clash.
			latestOffers, listErr := s.offerRepo.ListByPropertyID(ctx, offer.PropertyID)
			if listErr == nil && AcceptedOffer(latestOffers) != nil {
				return internal_utils.ErrOfferAlreadyAccepted
			}
		}
		return s.mapAggregateConflict(ctx, offer.PropertyID, err)
	}
	return nil
}

// RefuseOffer marks the offer refused. When the refused offer was the
// accepted one, the property's buyer and selling price are cleared and
// its state falls back to OFFER_RECEIVED.
func (s *OfferService) RefuseOffer(ctx context.Context, offerID uuid.UUID) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer == nil {
		return internal_utils.ErrNotFound
	}

	prop, err := s.propRepo.GetByID(ctx, offer.PropertyID)
	if err != nil {
		return err
	}
	if prop == nil {
		return internal_utils.ErrNotFound
	}

	revert := offer.Status == models.OfferStatusAccepted &&
		prop.State == models.PropertyStateOfferAccepted

	if err := s.offerRepo.RefuseAtomic(ctx, offer.ID, prop.ID, revert, prop.RowVersion); err != nil {
		return s.mapAggregateConflict(ctx, offer.PropertyID, err)
	}
	return nil
}

// UpdateDeadline sets the absolute deadline and recomputes the validity
// day count from it (the inverse of the derived deadline).
func (s *OfferService) UpdateDeadline(ctx context.Context, offerID uuid.UUID, deadline time.Time) (*dtos.OfferDTO, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, internal_utils.ErrNotFound
	}

	validity, err := ComputeValidity(offer.CreatedAt, deadline)
	if err != nil {
		return nil, err
	}

	expected := offer.RowVersion
	offer.ValidityDays = validity
	tag, err := s.offerRepo.UpdateValidityIfVersion(ctx, offer, expected)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, internal_utils.ErrRowVersionConflict
	}
	offer.RowVersion = expected + 1

	dto := s.buildOfferDTO(offer)
	return &dto, nil
}

// ListForProperty returns the property's offers, highest price first.
func (s *OfferService) ListForProperty(ctx context.Context, propertyID uuid.UUID) ([]dtos.OfferDTO, error) {
	offers, err := s.offerRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.OfferDTO, 0, len(offers))
	for _, o := range offers {
		out = append(out, s.buildOfferDTO(o))
	}
	return out, nil
}

func (s *OfferService) buildOfferDTO(o *models.PropertyOffer) dtos.OfferDTO {
	return dtos.OfferDTO{
		ID:             o.ID,
		PropertyID:     o.PropertyID,
		PartnerID:      o.PartnerID,
		Price:          o.Price,
		Status:         string(o.Status),
		ValidityDays:   o.ValidityDays,
		DateDeadline:   ComputeDeadline(o.CreatedAt, o.ValidityDays).Format("2006-01-02"),
		PropertyTypeID: o.PropertyTypeID,
		RowVersion:     o.RowVersion,
		CreatedAt:      o.CreatedAt,
	}
}

// mapAggregateConflict upgrades a bare version clash into a
// RowVersionConflictError carrying the latest property so the caller
// can see what it lost against.
func (s *OfferService) mapAggregateConflict(ctx context.Context, propertyID uuid.UUID, err error) error {
	if !errors.Is(err, internal_utils.ErrRowVersionConflict) {
		return err
	}
	latest, getErr := s.propRepo.GetByID(ctx, propertyID)
	if getErr != nil || latest == nil {
		return err
	}
	return internal_utils.NewRowVersionConflictError(latest)
}
