package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"sitetrack/internal/engine/tracking"
)

type HealthHandler struct {
	db       *sql.DB
	tracking tracking.Config
}

// NewHealthHandler accepts a nil db when the delivery log is disabled.
func NewHealthHandler(db *sql.DB, trackingCfg tracking.Config) *HealthHandler {
	return &HealthHandler{db: db, tracking: trackingCfg}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if h.db == nil {
		checks["delivery_log"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			checks["delivery_log"] = "unhealthy: " + err.Error()
		} else {
			checks["delivery_log"] = "healthy"
		}
	}

	// Missing credentials only disable tracking, pages still render.
	if err := h.tracking.Validate(); err != nil {
		checks["tracking"] = "disabled: " + err.Error()
	} else {
		checks["tracking"] = "configured"
	}

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
