package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/models"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCreatePropertyDefaults(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	acting := uuid.New()

	dto, err := env.propertySvc.CreateProperty(ctx, acting, dtos.CreatePropertyRequest{
		Name:          "Maison Communale",
		ExpectedPrice: 320000,
	})
	require.NoError(t, err)

	require.Equal(t, string(models.PropertyStateNew), dto.State)
	require.True(t, dto.Active)
	require.Equal(t, 2, dto.Bedrooms)
	require.Equal(t, acting, dto.SalespersonID)
	require.Equal(t, 0.0, dto.SellingPrice)
	require.Nil(t, dto.BuyerID)
	// Fixed clock says 2026-02-14; availability defaults to +3 months.
	require.Equal(t, "2026-05-14", dto.DateAvailability)
}

func TestCreatePropertyGardenDefaults(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	dto, err := env.propertySvc.CreateProperty(ctx, uuid.New(), dtos.CreatePropertyRequest{
		Name:          "Villa Jardin",
		ExpectedPrice: 400000,
		Garden:        true,
	})
	require.NoError(t, err)
	require.Equal(t, 10, dto.GardenArea)
	require.Equal(t, string(models.GardenOrientationNorth), dto.GardenOrientation)
}

func TestCreatePropertyValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.propertySvc.CreateProperty(ctx, uuid.New(), dtos.CreatePropertyRequest{
		Name:          "Gratuite",
		ExpectedPrice: 0,
	})
	require.ErrorIs(t, err, internal_utils.ErrNonPositiveExpectedPrice)

	unknownType := uuid.New()
	_, err = env.propertySvc.CreateProperty(ctx, uuid.New(), dtos.CreatePropertyRequest{
		Name:           "Type Fantome",
		ExpectedPrice:  100000,
		PropertyTypeID: &unknownType,
	})
	require.ErrorIs(t, err, internal_utils.ErrNotFound)

	_, err = env.propertySvc.CreateProperty(ctx, uuid.New(), dtos.CreatePropertyRequest{
		Name:             "Date Cassee",
		ExpectedPrice:    100000,
		DateAvailability: "14/02/2026",
	})
	require.ErrorIs(t, err, internal_utils.ErrInvalidPayload)
}

func TestUpdatePropertyGardenToggle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Pavillon 5",
		State:         models.PropertyStateNew,
		ExpectedPrice: 250000,
	})

	dto, err := env.propertySvc.UpdateProperty(ctx, prop.ID, dtos.UpdatePropertyRequest{
		Garden: boolPtr(true),
	})
	require.NoError(t, err)
	require.Equal(t, 10, dto.GardenArea)
	require.Equal(t, string(models.GardenOrientationNorth), dto.GardenOrientation)

	dto, err = env.propertySvc.UpdateProperty(ctx, prop.ID, dtos.UpdatePropertyRequest{
		Garden: boolPtr(false),
	})
	require.NoError(t, err)
	require.Equal(t, 0, dto.GardenArea)
	require.Empty(t, dto.GardenOrientation)
}

func TestUpdatePropertyExpectedPriceGuardedBySellingFloor(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Loft Dansaert",
		State:         models.PropertyStateNew,
		ExpectedPrice: 300000,
	})

	offer, err := env.offerSvc.CreateOffer(ctx, prop.ID, uuid.New(), 290000, 7)
	require.NoError(t, err)
	require.NoError(t, env.offerSvc.AcceptOffer(ctx, offer.ID))

	// Raising the expectation would push the agreed 290000 below 90%.
	_, err = env.propertySvc.UpdateProperty(ctx, prop.ID, dtos.UpdatePropertyRequest{
		ExpectedPrice: floatPtr(400000),
	})
	require.ErrorIs(t, err, internal_utils.ErrSellingPriceBelowFloor)

	// A raise that keeps the sale above the floor is fine.
	dto, err := env.propertySvc.UpdateProperty(ctx, prop.ID, dtos.UpdatePropertyRequest{
		ExpectedPrice: floatPtr(310000),
	})
	require.NoError(t, err)
	require.Equal(t, 310000.0, dto.ExpectedPrice)
}

func TestUpdatePropertyTypeMirroredOntoOffers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	typeDTO, err := env.catalogSvc.CreateType(ctx, dtos.CreatePropertyTypeRequest{Name: "House"})
	require.NoError(t, err)

	prop := env.seedProperty(&models.Property{
		Name:          "Cottage 12",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	offer, err := env.offerSvc.CreateOffer(ctx, prop.ID, uuid.New(), 190000, 7)
	require.NoError(t, err)

	_, err = env.propertySvc.UpdateProperty(ctx, prop.ID, dtos.UpdatePropertyRequest{
		PropertyTypeID: &typeDTO.ID,
	})
	require.NoError(t, err)

	stored, err := env.offerRepo.GetByID(ctx, offer.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PropertyTypeID)
	require.Equal(t, typeDTO.ID, *stored.PropertyTypeID)

	// Clearing the type clears the mirror too.
	_, err = env.propertySvc.UpdateProperty(ctx, prop.ID, dtos.UpdatePropertyRequest{ClearType: true})
	require.NoError(t, err)

	stored, err = env.offerRepo.GetByID(ctx, offer.ID)
	require.NoError(t, err)
	require.Nil(t, stored.PropertyTypeID)
}

func TestDuplicatePropertyResetsLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	acting := uuid.New()
	prop := env.seedProperty(&models.Property{
		Name:          "Penthouse Sablon",
		State:         models.PropertyStateNew,
		ExpectedPrice: 600000,
		Garage:        true,
	})

	offer, err := env.offerSvc.CreateOffer(ctx, prop.ID, uuid.New(), 580000, 7)
	require.NoError(t, err)
	require.NoError(t, env.offerSvc.AcceptOffer(ctx, offer.ID))

	dup, err := env.propertySvc.DuplicateProperty(ctx, acting, prop.ID)
	require.NoError(t, err)

	require.Equal(t, "Penthouse Sablon (copy)", dup.Name)
	require.Equal(t, string(models.PropertyStateNew), dup.State)
	require.Equal(t, 600000.0, dup.ExpectedPrice)
	require.True(t, dup.Garage)
	require.Equal(t, 0.0, dup.SellingPrice)
	require.Nil(t, dup.BuyerID)
	require.Empty(t, dup.Offers, "offers do not carry over")
	require.Equal(t, acting, dup.SalespersonID)
	require.Equal(t, "2026-05-14", dup.DateAvailability)
}

func TestMarkSoldIssuesInvoice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Maison Stockel",
		State:         models.PropertyStateNew,
		ExpectedPrice: 300000,
	})
	buyer := uuid.New()

	offer, err := env.offerSvc.CreateOffer(ctx, prop.ID, buyer, 290000, 7)
	require.NoError(t, err)
	require.NoError(t, env.offerSvc.AcceptOffer(ctx, offer.ID))

	dto, err := env.propertySvc.MarkSold(ctx, prop.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.PropertyStateSold), dto.State)

	require.Len(t, env.invoicer.invoices, 1)
	inv := env.invoicer.invoices[0]
	require.Equal(t, buyer, inv.BuyerID)
	require.Len(t, inv.Lines, 2)

	require.Equal(t, "Commission", inv.Lines[0].Description)
	require.Equal(t, 0.06, inv.Lines[0].Quantity)
	require.Equal(t, 290000.0, inv.Lines[0].UnitPrice)

	require.Equal(t, "Administrative fee", inv.Lines[1].Description)
	require.Equal(t, 1.0, inv.Lines[1].Quantity)
	require.Equal(t, 100.0, inv.Lines[1].UnitPrice)
}

func TestMarkSoldAbortsWhenBillingFails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Maison Flagey",
		State:         models.PropertyStateNew,
		ExpectedPrice: 300000,
	})

	offer, err := env.offerSvc.CreateOffer(ctx, prop.ID, uuid.New(), 290000, 7)
	require.NoError(t, err)
	require.NoError(t, env.offerSvc.AcceptOffer(ctx, offer.ID))

	env.invoicer.failWith = errors.New("accounting API error (503): unavailable")
	_, err = env.propertySvc.MarkSold(ctx, prop.ID)
	require.Error(t, err)

	// The transition did not commit.
	stored, err := env.propRepo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	require.Equal(t, models.PropertyStateOfferAccepted, stored.State)
}

func TestMarkSoldWithoutBuyerSkipsInvoice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Terrain Uccle",
		State:         models.PropertyStateNew,
		ExpectedPrice: 150000,
	})

	dto, err := env.propertySvc.MarkSold(ctx, prop.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.PropertyStateSold), dto.State)
	require.Empty(t, env.invoicer.invoices)
}

func TestCancelSoldPropertyFails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Maison Vendue",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})

	_, err := env.propertySvc.MarkSold(ctx, prop.ID)
	require.NoError(t, err)

	_, err = env.propertySvc.CancelProperty(ctx, prop.ID)
	require.ErrorIs(t, err, internal_utils.ErrWrongState)
}

func TestMarkSoldCanceledPropertyFails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Maison Annulee",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})

	_, err := env.propertySvc.CancelProperty(ctx, prop.ID)
	require.NoError(t, err)

	_, err = env.propertySvc.MarkSold(ctx, prop.ID)
	require.ErrorIs(t, err, internal_utils.ErrWrongState)
}

func TestDeletePropertyGuards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fresh := env.seedProperty(&models.Property{
		Name:          "Neuve",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	require.NoError(t, env.propertySvc.DeleteProperty(ctx, fresh.ID))

	canceled := env.seedProperty(&models.Property{
		Name:          "Annulee",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	_, err := env.propertySvc.CancelProperty(ctx, canceled.ID)
	require.NoError(t, err)
	require.NoError(t, env.propertySvc.DeleteProperty(ctx, canceled.ID))

	withOffer := env.seedProperty(&models.Property{
		Name:          "Avec Offre",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	_, err = env.offerSvc.CreateOffer(ctx, withOffer.ID, uuid.New(), 190000, 7)
	require.NoError(t, err)
	require.ErrorIs(t, env.propertySvc.DeleteProperty(ctx, withOffer.ID), internal_utils.ErrPropertyNotDeletable)

	sold := env.seedProperty(&models.Property{
		Name:          "Vendue",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	_, err = env.propertySvc.MarkSold(ctx, sold.ID)
	require.NoError(t, err)
	require.ErrorIs(t, env.propertySvc.DeleteProperty(ctx, sold.ID), internal_utils.ErrPropertyNotDeletable)
}

func TestBatchValidatesEverythingFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	ok := env.seedProperty(&models.Property{
		Name:          "Lot A",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	blocked := env.seedProperty(&models.Property{
		Name:          "Lot B",
		State:         models.PropertyStateNew,
		ExpectedPrice: 200000,
	})
	_, err := env.propertySvc.CancelProperty(ctx, blocked.ID)
	require.NoError(t, err)

	// Canceled listing fails the sold-batch guard; nothing commits.
	err = env.propertySvc.MarkSoldBatch(ctx, []uuid.UUID{ok.ID, blocked.ID})
	require.ErrorIs(t, err, internal_utils.ErrWrongState)

	stored, err := env.propRepo.GetByID(ctx, ok.ID)
	require.NoError(t, err)
	require.Equal(t, models.PropertyStateNew, stored.State)
	require.Empty(t, env.invoicer.invoices)

	require.ErrorIs(t, env.propertySvc.MarkSoldBatch(ctx, nil), internal_utils.ErrInvalidPayload)
}

func TestCancelBatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProperty(&models.Property{Name: "Lot 1", State: models.PropertyStateNew, ExpectedPrice: 100000})
	b := env.seedProperty(&models.Property{Name: "Lot 2", State: models.PropertyStateNew, ExpectedPrice: 100000})

	require.NoError(t, env.propertySvc.CancelBatch(ctx, []uuid.UUID{a.ID, b.ID}))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		stored, err := env.propRepo.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, models.PropertyStateCanceled, stored.State)
	}
}

func TestArchiveDropsFromDefaultListing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	kept := env.seedProperty(&models.Property{Name: "Visible", State: models.PropertyStateNew, ExpectedPrice: 100000})
	gone := env.seedProperty(&models.Property{Name: "Cachee", State: models.PropertyStateNew, ExpectedPrice: 100000})

	require.NoError(t, env.propertySvc.ArchiveProperty(ctx, gone.ID))

	listed, err := env.propertySvc.ListProperties(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, listed.Total)
	require.Equal(t, kept.ID, listed.Results[0].ID)

	// Archived listing is still reachable by id.
	dto, err := env.propertySvc.GetProperty(ctx, gone.ID)
	require.NoError(t, err)
	require.False(t, dto.Active)
}

func TestPropertyDTODerivedFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	prop := env.seedProperty(&models.Property{
		Name:          "Duplex Midi",
		State:         models.PropertyStateNew,
		ExpectedPrice: 300000,
		LivingArea:    120,
		Garden:        true,
		GardenArea:    30,
	})

	for _, price := range []float64{270000, 275000} {
		_, err := env.offerSvc.CreateOffer(ctx, prop.ID, uuid.New(), price, 7)
		require.NoError(t, err)
	}

	dto, err := env.propertySvc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	require.Equal(t, 150, dto.TotalArea)
	require.Equal(t, 275000.0, dto.BestOffer)
	require.Len(t, dto.Offers, 2)
}
