package segment

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/pricing-api/internal/common"
	"github.com/noah-isme/pricing-api/internal/obs"
)

// Handler wires segmentation evaluation to HTTP.
type Handler struct {
	Validate *validator.Validate
}

type evaluateRequest struct {
	Criteria Criteria `json:"criteria"`
	Customer Facts    `json:"customer" validate:"required"`
}

// Evaluate reports whether the customer facts satisfy the criteria.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var payload evaluateRequest
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
	matched := payload.Criteria.Matches(payload.Customer)
	obs.ObserveSegmentEvaluation(matched)
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"matched": matched},
	})
}
