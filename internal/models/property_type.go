package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType is a lookup record; names are unique, listings are
// ordered by sequence then name.
type PropertyType struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Sequence int       `json:"sequence"`

	CreatedAt time.Time `json:"created_at"`
}
