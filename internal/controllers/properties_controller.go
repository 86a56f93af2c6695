package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/services"
	"github.com/realvia/estate-service/internal/utils"
)

type PropertiesController struct {
	propertyService *services.PropertyService
	validate        *validator.Validate
}

func NewPropertiesController(ps *services.PropertyService) *PropertiesController {
	return &PropertiesController{
		propertyService: ps,
		validate:        validator.New(),
	}
}

// ----------------------------------------------------------------
// POST /api/v1/properties
// ----------------------------------------------------------------
func (c *PropertiesController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil, nil)
		return
	}

	var req dtos.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", formatValidationErrors(vErrs), err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil, err)
		return
	}

	dto, svcErr := c.propertyService.CreateProperty(r.Context(), userID, req)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to create property")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto)
}

// ----------------------------------------------------------------
// GET /api/v1/properties
// ----------------------------------------------------------------
func (c *PropertiesController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.propertyService.ListProperties(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list properties")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}
// ----------------------------------------------------------------
func (c *PropertiesController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	dto, svcErr := c.propertyService.GetProperty(r.Context(), id)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to fetch property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto)
}

// ----------------------------------------------------------------
// PATCH /api/v1/properties/{id}
// ----------------------------------------------------------------
func (c *PropertiesController) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}

	var req dtos.UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", formatValidationErrors(vErrs), err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil, err)
		return
	}

	dto, svcErr := c.propertyService.UpdateProperty(r.Context(), id, req)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to update property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/duplicate
// ----------------------------------------------------------------
func (c *PropertiesController) DuplicatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), nil, nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	dto, svcErr := c.propertyService.DuplicateProperty(r.Context(), userID, id)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to duplicate property")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/sold
// ----------------------------------------------------------------
func (c *PropertiesController) MarkSoldHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	dto, svcErr := c.propertyService.MarkSold(r.Context(), id)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to mark property sold")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/cancel
// ----------------------------------------------------------------
func (c *PropertiesController) CancelPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	dto, svcErr := c.propertyService.CancelProperty(r.Context(), id)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to cancel property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/sold  (batch)
// POST /api/v1/properties/cancel (batch)
// ----------------------------------------------------------------
func (c *PropertiesController) MarkSoldBatchHandler(w http.ResponseWriter, r *http.Request) {
	c.batchHandler(w, r, c.propertyService.MarkSoldBatch, "Failed to mark properties sold")
}

func (c *PropertiesController) CancelBatchHandler(w http.ResponseWriter, r *http.Request) {
	c.batchHandler(w, r, c.propertyService.CancelBatch, "Failed to cancel properties")
}

func (c *PropertiesController) batchHandler(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, ids []uuid.UUID) error,
	publicMessage string,
) {
	var req dtos.BatchPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	if err := op(r.Context(), req.PropertyIDs); err != nil {
		respondServiceError(w, err, publicMessage)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]int{"processed": len(req.PropertyIDs)})
}

// ----------------------------------------------------------------
// DELETE /api/v1/properties/{id}
// ----------------------------------------------------------------
func (c *PropertiesController) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	if svcErr := c.propertyService.DeleteProperty(r.Context(), id); svcErr != nil {
		respondServiceError(w, svcErr, "Failed to delete property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/archive
// ----------------------------------------------------------------
func (c *PropertiesController) ArchivePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	if svcErr := c.propertyService.ArchiveProperty(r.Context(), id); svcErr != nil {
		respondServiceError(w, svcErr, "Failed to archive property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
