package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/services"
	"github.com/realvia/estate-service/internal/utils"
)

// CatalogController serves the property-type and tag lookup tables.
type CatalogController struct {
	catalogService *services.CatalogService
	validate       *validator.Validate
}

func NewCatalogController(cs *services.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: cs,
		validate:       validator.New(),
	}
}

func (c *CatalogController) CreateTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreatePropertyTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	dto, svcErr := c.catalogService.CreateType(r.Context(), req)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to create property type")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto)
}

func (c *CatalogController) ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := c.catalogService.ListTypes(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list property types")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, types)
}

func (c *CatalogController) DeleteTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid type id", nil, err)
		return
	}
	if svcErr := c.catalogService.DeleteType(r.Context(), id); svcErr != nil {
		respondServiceError(w, svcErr, "Failed to delete property type")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CatalogController) CreateTagHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreatePropertyTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	dto, svcErr := c.catalogService.CreateTag(r.Context(), req)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to create property tag")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto)
}

func (c *CatalogController) ListTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := c.catalogService.ListTags(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list property tags")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tags)
}

func (c *CatalogController) DeleteTagHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid tag id", nil, err)
		return
	}
	if svcErr := c.catalogService.DeleteTag(r.Context(), id); svcErr != nil {
		respondServiceError(w, svcErr, "Failed to delete property tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
