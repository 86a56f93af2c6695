package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyTag is a lookup record; names are unique, listings are
// ordered by name.
type PropertyTag struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color int       `json:"color"`

	CreatedAt time.Time `json:"created_at"`
}
