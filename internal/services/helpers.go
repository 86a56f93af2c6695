package services

import (
	"time"

	"github.com/realvia/estate-service/internal/constants"
	"github.com/realvia/estate-service/internal/models"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

// ComputeDeadline derives an offer's absolute deadline from its
// creation date and validity in days.
func ComputeDeadline(createdAt time.Time, validityDays int) time.Time {
	return dateOnly(createdAt).AddDate(0, 0, validityDays)
}

// ComputeValidity is the inverse of ComputeDeadline: day count between
// creation date and deadline. A deadline before the creation date is a
// caller error.
func ComputeValidity(createdAt, deadline time.Time) (int, error) {
	days := int(dateOnly(deadline).Sub(dateOnly(createdAt)).Hours() / 24)
	if days < 0 {
		return 0, internal_utils.ErrNegativeValidity
	}
	return days, nil
}

// DefaultAvailability is the default availability date for a new
// property: creation date plus three months.
func DefaultAvailability(today time.Time) time.Time {
	return dateOnly(today).AddDate(0, constants.AvailabilityLeadMonths, 0)
}

// ApplyGardenDefaults mirrors the garden toggle onto its dependent
// fields. Advisory edit-time behavior, not an invariant: toggling on
// fills in area 10 / north, toggling off resets both.
func ApplyGardenDefaults(p *models.Property) {
	if p.Garden {
		if p.GardenArea == 0 {
			p.GardenArea = constants.GardenDefaultArea
		}
		if p.GardenOrientation == models.GardenOrientationNone {
			p.GardenOrientation = models.GardenOrientationNorth
		}
	} else {
		p.GardenArea = 0
		p.GardenOrientation = models.GardenOrientationNone
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
