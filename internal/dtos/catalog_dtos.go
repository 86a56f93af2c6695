package dtos

import (
	"time"

	"github.com/google/uuid"
)

type CreatePropertyTypeRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Sequence int    `json:"sequence,omitempty" validate:"omitempty,min=0"`
}

type PropertyTypeDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Sequence int       `json:"sequence"`

	CreatedAt time.Time `json:"created_at"`
}

type CreatePropertyTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color int    `json:"color,omitempty" validate:"omitempty,min=0"`
}

type PropertyTagDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color int       `json:"color"`

	CreatedAt time.Time `json:"created_at"`
}

type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
