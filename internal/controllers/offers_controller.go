package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/realvia/estate-service/internal/dtos"
	"github.com/realvia/estate-service/internal/services"
	"github.com/realvia/estate-service/internal/utils"
)

type OffersController struct {
	offerService *services.OfferService
	validate     *validator.Validate
}

func NewOffersController(os *services.OfferService) *OffersController {
	return &OffersController{
		offerService: os,
		validate:     validator.New(),
	}
}

// ----------------------------------------------------------------
// POST /api/v1/offers
// ----------------------------------------------------------------
func (c *OffersController) CreateOfferHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateOfferRequest
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

	dto, svcErr := c.offerService.CreateOffer(r.Context(), req.PropertyID, req.PartnerID, req.Price, req.ValidityDays)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to create offer")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto)
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}/offers
// ----------------------------------------------------------------
func (c *OffersController) ListOffersHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}
	offers, svcErr := c.offerService.ListForProperty(r.Context(), propertyID)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to list offers")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, offers)
}

// ----------------------------------------------------------------
// POST /api/v1/offers/accept
// ----------------------------------------------------------------
func (c *OffersController) AcceptOffersHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.AcceptOffersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	if svcErr := c.offerService.AcceptOffers(r.Context(), req.OfferIDs); svcErr != nil {
		respondServiceError(w, svcErr, "Failed to accept offer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------
// POST /api/v1/offers/refuse
// ----------------------------------------------------------------
func (c *OffersController) RefuseOfferHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RefuseOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	if svcErr := c.offerService.RefuseOffer(r.Context(), req.OfferID); svcErr != nil {
		respondServiceError(w, svcErr, "Failed to refuse offer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------
// PATCH /api/v1/offers/deadline
// ----------------------------------------------------------------
func (c *OffersController) UpdateDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateOfferDeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}
	deadline, err := time.Parse("2006-01-02", req.DateDeadline)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "date_deadline must be YYYY-MM-DD", nil, err)
		return
	}

	dto, svcErr := c.offerService.UpdateDeadline(r.Context(), req.OfferID, deadline)
	if svcErr != nil {
		respondServiceError(w, svcErr, "Failed to update offer deadline")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto)
}
