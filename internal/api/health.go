package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shiraji/assistant/internal/conversation"
)

// Prober reports the upstream completion API's coarse health status.
type Prober interface {
	Health(ctx context.Context) string
}

type healthHandler struct {
	store  *conversation.Store
	prober Prober
	logger *slog.Logger
}

type healthResponse struct {
	Status              string `json:"status"`
	OllamaStatus        string `json:"ollama_status"`
	ActiveConversations int    `json:"active_conversations"`
}

// check reports service liveness plus upstream status. The service itself is
// always "healthy" if it can answer; a degraded upstream shows up in
// ollama_status without failing the probe.
func (h *healthHandler) check(w http.ResponseWriter, r *http.Request) {
	ollamaStatus := "unknown"
	if h.prober != nil {
		ollamaStatus = h.prober.Health(r.Context())
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:              "healthy",
		OllamaStatus:        ollamaStatus,
		ActiveConversations: h.store.Count(),
	}, h.logger)
}
