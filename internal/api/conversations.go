package api

import (
	"log/slog"
	"net/http"

	"github.com/shiraji/assistant/internal/conversation"
)

type conversationHandler struct {
	store  *conversation.Store
	logger *slog.Logger
}

// get returns the stored turns for a conversation as a bare array. Unknown
// ids are not an error: the history is simply empty.
func (h *conversationHandler) get(w http.ResponseWriter, r *http.Request) {
	history := h.store.History(r.PathValue("id"))
	writeJSON(w, http.StatusOK, history, h.logger)
}

// clear removes a conversation. Idempotent: clearing an unknown id succeeds.
func (h *conversationHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation cleared"}, h.logger)
}
