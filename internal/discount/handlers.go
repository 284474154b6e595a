package discount

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/pricing-api/internal/common"
	"github.com/noah-isme/pricing-api/internal/obs"
)

// Handler exposes discount preview and administrative management endpoints.
type Handler struct {
	Repo     *Repo
	Svc      *Service
	Validate *validator.Validate
}

type rulePayload struct {
	Code       string     `json:"code" validate:"required,max=64"`
	Kind       string     `json:"kind" validate:"required,oneof=percentage fixed"`
	Value      int64      `json:"value" validate:"gte=0"`
	PercentBps int32      `json:"percentBps" validate:"gte=0,lte=10000"`
	MinSpend   int64      `json:"minSpend" validate:"gte=0"`
	UsageLimit *int32     `json:"usageLimit" validate:"omitempty,gte=0"`
	Active     *bool      `json:"active"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidTo    *time.Time `json:"validTo"`
}

type previewRequest struct {
	Code     string `json:"code" validate:"required"`
	Subtotal int64  `json:"subtotal" validate:"gte=0"`
}

// Preview evaluates a code against a subtotal without applying it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	var payload previewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	result, err := h.Svc.Preview(r.Context(), payload.Code, payload.Subtotal)
	if err != nil {
		if code := RejectionCode(err); code != "" {
			obs.ObserveDiscountRejection(code)
			common.JSONError(w, http.StatusUnprocessableEntity, code, err.Error(), nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to evaluate discount", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Create inserts a new discount rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount repo not configured", nil)
		return
	}
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	rule, err := h.buildRule(payload)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.Repo.Create(r.Context(), rule)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "discount code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to create discount", nil)
		return
	}
	if h.Svc != nil {
		h.Svc.Invalidate(r.Context(), created.Code)
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update replaces the rule identified by the code path parameter.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount repo not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.Code = code
	rule, err := h.buildRule(payload)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.Repo.Update(r.Context(), code, rule)
	if err != nil {
		if errors.Is(err, ErrUnknownCode) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update discount", nil)
		return
	}
	if h.Svc != nil {
		h.Svc.Invalidate(r.Context(), code)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Redeem records a settled redemption against the rule's usage quota.
// Called by order-completion flows, never by the quote path.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount repo not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	if err := h.Repo.IncrementUsage(r.Context(), code); err != nil {
		if errors.Is(err, ErrUnknownCode) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to redeem discount", nil)
		return
	}
	if h.Svc != nil {
		h.Svc.Invalidate(r.Context(), code)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"redeemed": true}})
}

// List returns stored rules with limit/offset pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount repo not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	rules, err := h.Repo.List(r.Context(), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to list discounts", nil)
		return
	}
	if rules == nil {
		rules = []Rule{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rules})
}

func (h *Handler) buildRule(payload rulePayload) (Rule, error) {
	if err := h.validate(payload); err != nil {
		return Rule{}, common.NewAppError("VALIDATION_ERROR", err.Error(), http.StatusBadRequest, err)
	}
	if payload.Kind == KindPercentage && payload.PercentBps == 0 {
		return Rule{}, common.NewAppError("VALIDATION_ERROR", "percentBps is required for percentage discounts", http.StatusBadRequest, nil)
	}
	if payload.ValidFrom != nil && payload.ValidTo != nil && payload.ValidTo.Before(*payload.ValidFrom) {
		return Rule{}, common.NewAppError("VALIDATION_ERROR", "validTo must not precede validFrom", http.StatusBadRequest, nil)
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	return Rule{
		Code:       strings.TrimSpace(payload.Code),
		Kind:       payload.Kind,
		Value:      payload.Value,
		PercentBps: payload.PercentBps,
		MinSpend:   payload.MinSpend,
		UsageLimit: payload.UsageLimit,
		Active:     active,
		ValidFrom:  payload.ValidFrom,
		ValidTo:    payload.ValidTo,
	}, nil
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
