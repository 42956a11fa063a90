package handler

import (
	"net/http"

	"github.com/mcoot/boardbank/internal/api/response"
)

// HealthSources report live process counters. Any of them may be nil.
type HealthSources struct {
	Games       func() int
	Connections func() int
	Drops       func() int64
}

// HealthHandler reports liveness and a few live counters
type HealthHandler struct {
	sources HealthSources
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sources HealthSources) *HealthHandler {
	return &HealthHandler{sources: sources}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	resp := response.Health{Status: "ok"}
	if h.sources.Games != nil {
		resp.Games = h.sources.Games()
	}
	if h.sources.Connections != nil {
		resp.Connections = h.sources.Connections()
	}
	if h.sources.Drops != nil {
		resp.DroppedRequests = h.sources.Drops()
	}
	response.JSON(w, http.StatusOK, resp)
}
