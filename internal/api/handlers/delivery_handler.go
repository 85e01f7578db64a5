package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"sitetrack/internal/pkg/errors"
	"sitetrack/internal/platform/models"
)

// DeliveryStore is the read side of the delivery log.
type DeliveryStore interface {
	List(ctx context.Context, limit int) ([]*models.Delivery, error)
	CountByResult(ctx context.Context, since int64) (*models.DeliveryStats, error)
}

type DeliveryHandler struct {
	store DeliveryStore
}

// NewDeliveryHandler accepts a nil store when the delivery log is disabled.
func NewDeliveryHandler(store DeliveryStore) *DeliveryHandler {
	return &DeliveryHandler{store: store}
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeServiceUnavailable, "Delivery log is disabled", nil)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	deliveries, err := h.store.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list deliveries")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list deliveries", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, deliveries)
}

// Stats counts deliveries by result over the window given in ?window=
// (a Go duration, default 24h).
func (h *DeliveryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeServiceUnavailable, "Delivery log is disabled", nil)
		return
	}

	window := 24 * time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "window must be a positive duration", nil)
			return
		}
		window = d
	}

	stats, err := h.store.CountByResult(r.Context(), time.Now().Add(-window).Unix())
	if err != nil {
		log.Error().Err(err).Msg("failed to count deliveries")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to count deliveries", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, stats)
}
