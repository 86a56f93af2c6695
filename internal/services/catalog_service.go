package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/models"
	"github.com/realvia/estate-service/internal/repositories"
	internal_utils "github.com/realvia/estate-service/internal/utils"
)

// CatalogService manages the reference data: property types and tags.
// Pure lookup tables, unique names, fixed ordering.
type CatalogService struct {
	typeRepo repositories.PropertyTypeRepository
	tagRepo  repositories.PropertyTagRepository
}

func NewCatalogService(
	typeRepo repositories.PropertyTypeRepository,
	tagRepo repositories.PropertyTagRepository,
) *CatalogService {
	return &CatalogService{typeRepo: typeRepo, tagRepo: tagRepo}
}

func (s *CatalogService) CreateType(ctx context.Context, req dtos.CreatePropertyTypeRequest) (*dtos.PropertyTypeDTO, error) {
	sequence := req.Sequence
	if sequence == 0 {
		sequence = 1
	}
	t := &models.PropertyType{
		ID:       uuid.New(),
		Name:     req.Name,
		Sequence: sequence,
	}
	if err := s.typeRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return &dtos.PropertyTypeDTO{ID: t.ID, Name: t.Name, Sequence: t.Sequence, CreatedAt: t.CreatedAt}, nil
}

func (s *CatalogService) ListTypes(ctx context.Context) ([]dtos.PropertyTypeDTO, error) {
	types, err := s.typeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.PropertyTypeDTO, 0, len(types))
	for _, t := range types {
		out = append(out, dtos.PropertyTypeDTO{ID: t.ID, Name: t.Name, Sequence: t.Sequence, CreatedAt: t.CreatedAt})
	}
	return out, nil
}

func (s *CatalogService) DeleteType(ctx context.Context, id uuid.UUID) error {
	t, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return internal_utils.ErrNotFound
	}
	return s.typeRepo.Delete(ctx, id)
}

func (s *CatalogService) CreateTag(ctx context.Context, req dtos.CreatePropertyTagRequest) (*dtos.PropertyTagDTO, error) {
	t := &models.PropertyTag{
		ID:    uuid.New(),
		Name:  req.Name,
		Color: req.Color,
	}
	if err := s.tagRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return &dtos.PropertyTagDTO{ID: t.ID, Name: t.Name, Color: t.Color, CreatedAt: t.CreatedAt}, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]dtos.PropertyTagDTO, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.PropertyTagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, dtos.PropertyTagDTO{ID: t.ID, Name: t.Name, Color: t.Color, CreatedAt: t.CreatedAt})
	}
	return out, nil
}

func (s *CatalogService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	t, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return internal_utils.ErrNotFound
	}
	return s.tagRepo.Delete(ctx, id)
}
