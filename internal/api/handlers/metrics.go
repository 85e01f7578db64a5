package handlers

import (
	"net/http"
)

type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler serves the given Prometheus handler; a nil handler
// means metrics are disabled.
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: handler}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.handler == nil {
		http.NotFound(w, r)
		return
	}
	h.handler.ServeHTTP(w, r)
}
