package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/pricing-api/internal/common"
	"github.com/noah-isme/pricing-api/internal/obs"
	"github.com/noah-isme/pricing-api/internal/pricing"
)

// Handler wires quote computation to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	// DefaultShippingRate applies when the request omits shippingRate.
	DefaultShippingRate int64
}

type quoteItem struct {
	UnitPrice int64 `json:"unitPrice" validate:"gte=0"`
	Qty       int   `json:"qty" validate:"gte=1"`
}

type quoteRequest struct {
	Items        []quoteItem `json:"items" validate:"required,min=1,dive"`
	ShippingRate *int64      `json:"shippingRate" validate:"omitempty,gte=0"`
	DiscountCode string      `json:"discountCode" validate:"omitempty,max=64"`
}

type quoteResponse struct {
	Subtotal          int64            `json:"subtotal"`
	Discount          int64            `json:"discount"`
	Shipping          int64            `json:"shipping"`
	Tax               int64            `json:"tax"`
	Total             int64            `json:"total"`
	FreeShipping      bool             `json:"freeShipping"`
	Currency          string           `json:"currency"`
	AppliedDiscount   *AppliedDiscount `json:"appliedDiscount,omitempty"`
	DiscountRejection string           `json:"discountRejection,omitempty"`
}

// Create computes a totals breakdown for the submitted cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			obs.ObserveQuote("invalid")
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
	}

	items := make([]pricing.Item, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
	}
	shippingRate := h.DefaultShippingRate
	if payload.ShippingRate != nil {
		shippingRate = *payload.ShippingRate
	}
	result, err := h.Svc.Compute(r.Context(), Request{
		Items:        items,
		ShippingRate: shippingRate,
		DiscountCode: strings.TrimSpace(payload.DiscountCode),
	})
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) {
			obs.ObserveQuote("invalid")
			common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
			return
		}
		obs.ObserveQuote("error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute quote", nil)
		return
	}
	obs.ObserveQuote("ok")
	if result.DiscountRejection != "" {
		obs.ObserveDiscountRejection(result.DiscountRejection)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		Subtotal:          result.Breakdown.Subtotal,
		Discount:          result.Breakdown.Discount,
		Shipping:          result.Breakdown.Shipping,
		Tax:               result.Breakdown.Tax,
		Total:             result.Breakdown.Total,
		FreeShipping:      result.Breakdown.FreeShipping,
		Currency:          result.Currency,
		AppliedDiscount:   result.Discount,
		DiscountRejection: result.DiscountRejection,
	}})
}
