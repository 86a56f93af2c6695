package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/services"
	"github.com/realvia/estate-service/internal/utils"
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

/*
SeedDemoData creates a small reference catalog plus one demo listing so a
fresh environment has something to click through. Re-running is safe:
duplicate catalog names are skipped.
*/
func SeedDemoData(
	ctx context.Context,
	catalogSvc *services.CatalogService,
	propertySvc *services.PropertyService,
) error {
	typeNames := []string{"House", "Apartment", "Penthouse", "Castle"}
	for i, name := range typeNames {
		_, err := catalogSvc.CreateType(ctx, dtos.CreatePropertyTypeRequest{Name: name, Sequence: i + 1})
		if err != nil && !errors.Is(err, utils.ErrDuplicateName) && !isUniqueViolation(err) {
			return err
		}
	}

	tags := []dtos.CreatePropertyTagRequest{
		{Name: "cozy", Color: 2},
		{Name: "renovated", Color: 5},
	}
	for _, tag := range tags {
		_, err := catalogSvc.CreateTag(ctx, tag)
		if err != nil && !errors.Is(err, utils.ErrDuplicateName) && !isUniqueViolation(err) {
			return err
		}
	}

	demoSalesperson := uuid.New()
	bedrooms := 3
	_, err := propertySvc.CreateProperty(ctx, demoSalesperson, dtos.CreatePropertyRequest{
		Name:          "Demo Villa",
		Postcode:      "1000",
		Description:   "Seeded demo listing",
		Bedrooms:      &bedrooms,
		LivingArea:    120,
		Facades:       4,
		Garage:        true,
		Garden:        true,
		ExpectedPrice: 450000,
	})
	if err != nil {
		return err
	}

	utils.Logger.Info("Seeded demo catalog and listing")
	return nil
}
