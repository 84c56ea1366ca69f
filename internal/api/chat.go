package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shiraji/assistant/internal/chat"
)

const maxChatBodyBytes = 1 << 20 // 1 MB

type chatHandler struct {
	gateway *chat.Gateway
	logger  *slog.Logger
}

// chatRequest is the POST /chat body. UserContext is accepted for wire
// compatibility with the widget but carries no server-side behavior.
type chatRequest struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id"`
	UserContext    map[string]any `json:"user_context"`
}

// send handles the blocking chat exchange. The only failures surfaced to the
// client are its own: malformed JSON or a blank message. Upstream trouble is
// absorbed by the gateway into a 200 fallback reply.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required", h.logger)
		return
	}

	reply := h.gateway.Send(r.Context(), req.Message, req.ConversationID)
	writeJSON(w, http.StatusOK, reply, h.logger)
}

// tokenEvent is the SSE data payload for each relayed token. The final frame
// has Done set and an empty token.
type tokenEvent struct {
	Token string `json:"token"`
	Done  bool   `json:"done"`
}

// errorEvent is the SSE data payload when the stream fails.
type errorEvent struct {
	Error string `json:"error"`
}

// stream handles GET /chat/stream. Frames are bare `data: <json>` lines; the
// widget's EventSource listens for messages, not named events.
func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	message := r.URL.Query().Get("message")
	conversationID := r.URL.Query().Get("conversation_id")
	if strings.TrimSpace(message) == "" {
		_ = writeFrame(w, flusher, errorEvent{Error: "message is required"})
		return
	}

	ctx := r.Context()
	err := h.gateway.Stream(ctx, message, conversationID, func(token string, done bool) error {
		return writeFrame(w, flusher, tokenEvent{Token: token, Done: done})
	})
	if err != nil {
		if ctx.Err() != nil {
			h.logger.Info("client disconnected", "conversation_id", conversationID)
			return
		}
		// One error frame, then close.
		_ = writeFrame(w, flusher, errorEvent{Error: err.Error()})
	}
}

// writeFrame writes one SSE frame ("data: <json>\n\n") and flushes it.
func writeFrame(w io.Writer, flusher http.Flusher, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	flusher.Flush()
	return nil
}
