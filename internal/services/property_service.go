package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/realvia/estate-service/internal/billing"
	"github.com/realvia/estate-service/internal/constants"
	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/repositories"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

type PropertyService struct {
	propRepo  repositories.PropertyRepository
	offerRepo repositories.PropertyOfferRepository
	typeRepo  repositories.PropertyTypeRepository
	tagRepo   repositories.PropertyTagRepository
	invoicer  billing.Invoicer
	clock     Clock
}

func NewPropertyService(
	propRepo repositories.PropertyRepository,
	offerRepo repositories.PropertyOfferRepository,
	typeRepo repositories.PropertyTypeRepository,
	tagRepo repositories.PropertyTagRepository,
	invoicer billing.Invoicer,
	clock Clock,
) *PropertyService {
	return &PropertyService{
		propRepo:  propRepo,
		offerRepo: offerRepo,
		typeRepo:  typeRepo,
		tagRepo:   tagRepo,
		invoicer:  invoicer,
		clock:     clock,
	}
}

// CreateProperty builds a new listing in state NEW. The salesperson
// defaults to the acting user, availability to today + 3 months, and
// the garden toggle fills in its dependent fields.
func (s *PropertyService) CreateProperty(
	ctx context.Context,
	actingUserID uuid.UUID,
	req dtos.CreatePropertyRequest,
) (*dtos.PropertyDTO, error) {
	if err := CheckExpectedPrice(req.ExpectedPrice); err != nil {
		return nil, err
	}

	availability, err := s.parseAvailability(req.DateAvailability)
	if err != nil {
		return nil, err
	}

	bedrooms := constants.DefaultBedrooms
	if req.Bedrooms != nil {
		bedrooms = *req.Bedrooms
	}

	salesperson := actingUserID
	if req.SalespersonID != nil {
		salesperson = *req.SalespersonID
	}

	if req.PropertyTypeID != nil {
		if err := s.checkTypeExists(ctx, *req.PropertyTypeID); err != nil {
			return nil, err
		}
	}
	if err := s.checkTagsExist(ctx, req.TagIDs); err != nil {
		return nil, err
	}

	p := &models.Property{
		ID:                uuid.New(),
		Name:              req.Name,
		Active:            true,
		State:             models.PropertyStateNew,
		Postcode:          req.Postcode,
		Description:       req.Description,
		Bedrooms:          bedrooms,
		LivingArea:        req.LivingArea,
		Facades:           req.Facades,
		Garage:            req.Garage,
		Garden:            req.Garden,
		GardenArea:        req.GardenArea,
		GardenOrientation: models.GardenOrientationType(req.GardenOrientation),
		ExpectedPrice:     req.ExpectedPrice,
		SellingPrice:      0,
		DateAvailability:  availability,
		SalespersonID:     salesperson,
		PropertyTypeID:    req.PropertyTypeID,
		TagIDs:            req.TagIDs,
	}
	ApplyGardenDefaults(p)

	if err := s.propRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	p.RowVersion = 1

	dto := s.buildPropertyDTO(p, nil)
	return &dto, nil
}

// UpdateProperty applies partial edits under the optimistic-lock retry
// loop. Garden toggles re-run the default fill, and a type change is
// mirrored onto the property's offers.
func (s *PropertyService) UpdateProperty(
	ctx context.Context,
	id uuid.UUID,
	req dtos.UpdatePropertyRequest,
) (*dtos.PropertyDTO, error) {
	if req.PropertyTypeID != nil {
		if err := s.checkTypeExists(ctx, *req.PropertyTypeID); err != nil {
			return nil, err
		}
	}
	if req.TagIDs != nil {
		if err := s.checkTagsExist(ctx, *req.TagIDs); err != nil {
			return nil, err
		}
	}

	typeChanged := false
	var newTypeID *uuid.UUID

	err := s.propRepo.UpdateWithRetry(ctx, id, func(p *models.Property) error {
		if req.Name != nil {
			if *req.Name == "" {
				return internal_utils.ErrInvalidPayload
			}
			p.Name = *req.Name
		}
		if req.Postcode != nil {
			p.Postcode = *req.Postcode
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Bedrooms != nil {
			p.Bedrooms = *req.Bedrooms
		}
		if req.LivingArea != nil {
			p.LivingArea = *req.LivingArea
		}
		if req.Facades != nil {
			p.Facades = *req.Facades
		}
		if req.Garage != nil {
			p.Garage = *req.Garage
		}

		gardenToggled := req.Garden != nil && *req.Garden != p.Garden
		if req.Garden != nil {
			p.Garden = *req.Garden
		}
		if req.GardenArea != nil {
			p.GardenArea = *req.GardenArea
		}
		if req.GardenOrientation != nil {
			p.GardenOrientation = models.GardenOrientationType(*req.GardenOrientation)
		}
		if gardenToggled {
			ApplyGardenDefaults(p)
		}

		if req.ExpectedPrice != nil {
			if err := CheckExpectedPrice(*req.ExpectedPrice); err != nil {
				return err
			}
			if err := CheckSellingPriceFloor(p.SellingPrice, *req.ExpectedPrice); err != nil {
				return err
			}
			p.ExpectedPrice = *req.ExpectedPrice
		}
		if req.DateAvailability != nil {
			d, err := time.Parse("2006-01-02", *req.DateAvailability)
			if err != nil {
				return internal_utils.ErrInvalidPayload
			}
			p.DateAvailability = d
		}
		if req.SalespersonID != nil {
			p.SalespersonID = *req.SalespersonID
		}
		if req.TagIDs != nil {
			p.TagIDs = *req.TagIDs
		}

		switch {
		case req.ClearType:
			typeChanged = p.PropertyTypeID != nil
			p.PropertyTypeID = nil
			newTypeID = nil
		case req.PropertyTypeID != nil:
			typeChanged = p.PropertyTypeID == nil || *p.PropertyTypeID != *req.PropertyTypeID
			p.PropertyTypeID = req.PropertyTypeID
			newTypeID = req.PropertyTypeID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if typeChanged {
		if err := s.offerRepo.RefreshTypeMirror(ctx, id, newTypeID); err != nil {
			return nil, err
		}
	}

	return s.GetProperty(ctx, id)
}

// DuplicateProperty copies a listing. Lifecycle fields do not carry
// over: the copy starts in NEW with no buyer, no selling price, no
// offers and a re-defaulted availability date.
func (s *PropertyService) DuplicateProperty(
	ctx context.Context,
	actingUserID uuid.UUID,
	id uuid.UUID,
) (*dtos.PropertyDTO, error) {
	src, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, internal_utils.ErrNotFound
	}

	copyProp := &models.Property{
		ID:                uuid.New(),
		Name:              src.Name + " (copy)",
		Active:            true,
		State:             models.PropertyStateNew,
		Postcode:          src.Postcode,
		Description:       src.Description,
		Bedrooms:          src.Bedrooms,
		LivingArea:        src.LivingArea,
		Facades:           src.Facades,
		Garage:            src.Garage,
		Garden:            src.Garden,
		GardenArea:        src.GardenArea,
		GardenOrientation: src.GardenOrientation,
		ExpectedPrice:     src.ExpectedPrice,
		SellingPrice:      0,
		DateAvailability:  DefaultAvailability(s.clock.Today()),
		SalespersonID:     actingUserID,
		PropertyTypeID:    src.PropertyTypeID,
		TagIDs:            src.TagIDs,
	}

	if err := s.propRepo.Create(ctx, copyProp); err != nil {
		return nil, err
	}
	copyProp.RowVersion = 1

	dto := s.buildPropertyDTO(copyProp, nil)
	return &dto, nil
}

// MarkSold drives the → SOLD transition. The invoice request goes out
// first; only when the collaborator accepts it is the state committed,
// so a billing failure never leaves a sold property without an invoice.
func (s *PropertyService) MarkSold(ctx context.Context, id uuid.UUID) (*dtos.PropertyDTO, error) {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, internal_utils.ErrNotFound
	}
	if err := CheckSellable(prop.State); err != nil {
		return nil, err
	}

	if prop.BuyerID != nil {
		lines := []billing.InvoiceLine{
			{Description: constants.InvoiceLineCommission, Quantity: constants.CommissionRate, UnitPrice: prop.SellingPrice},
			{Description: constants.InvoiceLineAdminFee, Quantity: 1, UnitPrice: constants.AdministrativeFee},
		}
		invoiceID, err := s.invoicer.CreateInvoice(ctx, *prop.BuyerID, lines)
		if err != nil {
			return nil, fmt.Errorf("sale invoice request failed: %w", err)
		}
		internal_utils.Logger.Infof("Invoice %s issued for property %s", invoiceID, prop.ID)
	}

	updated, err := s.propRepo.UpdateStateAtomic(ctx, id, models.PropertyStateSold, prop.RowVersion)
	if err != nil {
		return nil, s.mapAggregateConflict(ctx, id, err)
	}
	if updated == nil {
		return nil, internal_utils.ErrNotFound
	}
	return s.toDTOWithOffers(ctx, updated)
}

// CancelProperty drives the → CANCELED transition.
func (s *PropertyService) CancelProperty(ctx context.Context, id uuid.UUID) (*dtos.PropertyDTO, error) {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, internal_utils.ErrNotFound
	}
	if err := CheckCancellable(prop.State); err != nil {
		return nil, err
	}

	updated, err := s.propRepo.UpdateStateAtomic(ctx, id, models.PropertyStateCanceled, prop.RowVersion)
	if err != nil {
		return nil, s.mapAggregateConflict(ctx, id, err)
	}
	if updated == nil {
		return nil, internal_utils.ErrNotFound
	}
	return s.toDTOWithOffers(ctx, updated)
}

// MarkSoldBatch validates the guard for every listing before touching
// any of them; the first violation fails the whole call.
func (s *PropertyService) MarkSoldBatch(ctx context.Context, ids []uuid.UUID) error {
	if err := s.checkBatch(ctx, ids, CheckSellable); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.MarkSold(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CancelBatch is the batch counterpart of CancelProperty with the same
// validate-first semantics.
func (s *PropertyService) CancelBatch(ctx context.Context, ids []uuid.UUID) error {
	if err := s.checkBatch(ctx, ids, CheckCancellable); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.CancelProperty(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *PropertyService) checkBatch(
	ctx context.Context,
	ids []uuid.UUID,
	guard func(models.PropertyStateType) error,
) error {
	if len(ids) == 0 {
		return internal_utils.ErrInvalidPayload
	}
	for _, id := range ids {
		prop, err := s.propRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if prop == nil {
			return internal_utils.ErrNotFound
		}
		if err := guard(prop.State); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProperty hard-deletes, allowed only for NEW or CANCELED
// listings.
func (s *PropertyService) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if prop == nil {
		return internal_utils.ErrNotFound
	}
	if err := CheckDeletable(prop.State); err != nil {
		return err
	}
	return s.propRepo.Delete(ctx, id)
}

// ArchiveProperty is the soft delete: the listing drops out of the
// default listings but keeps its history.
func (s *PropertyService) ArchiveProperty(ctx context.Context, id uuid.UUID) error {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if prop == nil {
		return internal_utils.ErrNotFound
	}
	return s.propRepo.Archive(ctx, id)
}

func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*dtos.PropertyDTO, error) {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, internal_utils.ErrNotFound
	}
	return s.toDTOWithOffers(ctx, prop)
}

func (s *PropertyService) ListProperties(ctx context.Context) (*dtos.ListPropertiesResponse, error) {
	props, err := s.propRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dtos.PropertyDTO, 0, len(props))
	for _, p := range props {
		offers, err := s.offerRepo.ListByPropertyID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, s.buildPropertyDTO(p, offers))
	}
	return &dtos.ListPropertiesResponse{Results: results, Total: len(results)}, nil
}

/* ------------------------------------------------------------------
   Helpers
------------------------------------------------------------------ */

func (s *PropertyService) toDTOWithOffers(ctx context.Context, p *models.Property) (*dtos.PropertyDTO, error) {
	offers, err := s.offerRepo.ListByPropertyID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	dto := s.buildPropertyDTO(p, offers)
	return &dto, nil
}

func (s *PropertyService) buildPropertyDTO(p *models.Property, offers []*models.PropertyOffer) dtos.PropertyDTO {
	dto := dtos.PropertyDTO{
		ID:                p.ID,
		Name:              p.Name,
		Active:            p.Active,
		State:             string(p.State),
		Postcode:          p.Postcode,
		Description:       p.Description,
		Bedrooms:          p.Bedrooms,
		LivingArea:        p.LivingArea,
		Facades:           p.Facades,
		Garage:            p.Garage,
		Garden:            p.Garden,
		GardenArea:        p.GardenArea,
		GardenOrientation: string(p.GardenOrientation),
		TotalArea:         p.TotalArea(),
		BestOffer:         BestOffer(offers),
		ExpectedPrice:     p.ExpectedPrice,
		SellingPrice:      p.SellingPrice,
		DateAvailability:  p.DateAvailability.Format("2006-01-02"),
		SalespersonID:     p.SalespersonID,
		BuyerID:           p.BuyerID,
		PropertyTypeID:    p.PropertyTypeID,
		TagIDs:            p.TagIDs,
		RowVersion:        p.RowVersion,
		CreatedAt:         p.CreatedAt,
	}
	for _, o := range offers {
		dto.Offers = append(dto.Offers, dtos.OfferDTO{
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
		})
	}
	return dto
}

func (s *PropertyService) parseAvailability(raw string) (time.Time, error) {
	if raw == "" {
		return DefaultAvailability(s.clock.Today()), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, internal_utils.ErrInvalidPayload
	}
	return d, nil
}

func (s *PropertyService) checkTypeExists(ctx context.Context, id uuid.UUID) error {
	t, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return internal_utils.ErrNotFound
	}
	return nil
}

func (s *PropertyService) checkTagsExist(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		t, err := s.tagRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return internal_utils.ErrNotFound
		}
	}
	return nil
}

func (s *PropertyService) mapAggregateConflict(ctx context.Context, propertyID uuid.UUID, err error) error {
	if !errors.Is(err, internal_utils.ErrRowVersionConflict) {
		return err
	}
	latest, getErr := s.propRepo.GetByID(ctx, propertyID)
	if getErr != nil || latest == nil {
		return err
	}
	return internal_utils.NewRowVersionConflictError(latest)
}
