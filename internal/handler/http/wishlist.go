package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gretehalvorsen/wishlist/internal/domain"
	"github.com/gretehalvorsen/wishlist/internal/service"
	"github.com/gretehalvorsen/wishlist/pkg/httputil"
	"github.com/gretehalvorsen/wishlist/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service   *service.WishlistService
	scheduler *service.Scheduler
	logger    *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, scheduler *service.Scheduler, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service:   svc,
		scheduler: scheduler,
		logger:    logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a wishlist item.
// Negative quantities are clamped to zero rather than rejected.
type AddItemRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=500"`
	Have     int    `json:"have"`
	Want     int    `json:"want"`
	Query    string `json:"query" validate:"max=500"`
	Provider string `json:"provider" validate:"omitempty,oneof=prisguiden prisjakt finn"`
}

// UpdateItemRequest is the JSON request body for patching an item.
// Absent fields are left unchanged.
type UpdateItemRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=500"`
	Have     *int    `json:"have"`
	Want     *int    `json:"want"`
	Query    *string `json:"query" validate:"omitempty,max=500"`
	Provider *string `json:"provider" validate:"omitempty,oneof=prisguiden prisjakt finn"`
}

// UpdateScheduleRequest is the JSON request body for the refresh schedule.
type UpdateScheduleRequest struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes" validate:"gte=0"`
}

// --- Response DTOs ---

type overviewResponse struct {
	Items    []domain.Item `json:"items"`
	Totals   domain.Totals `json:"totals"`
	InFlight string        `json:"in_flight,omitempty"`
	Sweeping bool          `json:"sweeping"`
}

type scheduleResponse struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}

// --- Handlers ---

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: overviewResponse{
		Items:    h.service.Items(),
		Totals:   h.service.Totals(),
		InFlight: h.service.InFlight(),
		Sweeping: h.service.Sweeping(),
	}})
}

// GetTotals handles GET /api/v1/wishlist/totals
func (h *WishlistHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Totals()})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.service.AddItem(r.Context(), service.AddItemInput{
		Name:     req.Name,
		Have:     req.Have,
		Want:     req.Want,
		Query:    req.Query,
		Provider: req.Provider,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// UpdateItem handles PATCH /api/v1/wishlist/items/{itemId}
func (h *WishlistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), itemID.String(), service.UpdateItemInput{
		Name:     req.Name,
		Have:     req.Have,
		Want:     req.Want,
		Query:    req.Query,
		Provider: req.Provider,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{itemId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), itemID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "removed"}})
}

// RefreshItem handles POST /api/v1/wishlist/items/{itemId}/refresh
//
// A failed price lookup still returns 200: the outcome is visible on
// the item itself (cleared offer, fresh last_checked).
func (h *WishlistHandler) RefreshItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	item, err := h.service.RefreshItem(r.Context(), itemID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// RefreshAll handles POST /api/v1/wishlist/refresh
func (h *WishlistHandler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.StartSweep(); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "started"}})
}

// GetSchedule handles GET /api/v1/wishlist/schedule
func (h *WishlistHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	status := h.scheduler.Status()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: scheduleResponse{
		Enabled:         status.Enabled,
		IntervalMinutes: int(status.Interval / time.Minute),
	}})
}

// UpdateSchedule handles PUT /api/v1/wishlist/schedule
func (h *WishlistHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	// Anything below a minute would hammer the price API.
	interval := time.Duration(req.IntervalMinutes) * time.Minute
	if interval < time.Minute {
		interval = time.Minute
	}

	h.scheduler.Configure(req.Enabled, interval)

	status := h.scheduler.Status()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: scheduleResponse{
		Enabled:         status.Enabled,
		IntervalMinutes: int(status.Interval / time.Minute),
	}})
}
