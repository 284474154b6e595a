package abtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/pricing-api/internal/common"
	"github.com/noah-isme/pricing-api/internal/obs"
)

// Handler wires significance analysis to HTTP.
type Handler struct {
	Validate *validator.Validate
}

type analyzeRequest struct {
	VariantA VariantStats `json:"variantA" validate:"required"`
	VariantB VariantStats `json:"variantB" validate:"required"`
}

// Analyze runs the two-proportion z-test over the submitted variants.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
	}
	result, err := Analyze(payload.VariantA, payload.VariantB)
	if err != nil {
		if errors.Is(err, ErrInvalidVariant) {
			common.JSONError(w, http.StatusBadRequest, "INVALID_VARIANT", err.Error(), nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to analyze variants", nil)
		return
	}
	obs.ObserveABAnalysis(strconv.Itoa(result.Confidence))
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
