package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shiraji/assistant/internal/conversation"
	"github.com/shiraji/assistant/internal/log"
)

type staticProber struct{ status string }

func (p staticProber) Health(context.Context) string { return p.status }

func TestHealth_ReportsUpstreamAndConversationCount(t *testing.T) {
	store := conversation.NewStore(conversation.DefaultLimit, log.NewNop())
	store.Append("c1", conversation.NewTurn(conversation.RoleUser, "hi"))
	store.Append("c2", conversation.NewTurn(conversation.RoleUser, "hi"))

	h := &healthHandler{store: store, prober: staticProber{status: "healthy"}, logger: log.NewNop()}

	rec := httptest.NewRecorder()
	h.check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("status = %q, want healthy", body.Status)
	}
	if body.OllamaStatus != "healthy" {
		t.Errorf("ollama_status = %q, want healthy", body.OllamaStatus)
	}
	if body.ActiveConversations != 2 {
		t.Errorf("active_conversations = %d, want 2", body.ActiveConversations)
	}
}

func TestHealth_DegradedUpstreamIsStill200(t *testing.T) {
	store := conversation.NewStore(conversation.DefaultLimit, log.NewNop())
	h := &healthHandler{store: store, prober: staticProber{status: "unreachable"}, logger: log.NewNop()}

	rec := httptest.NewRecorder()
	h.check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OllamaStatus != "unreachable" {
		t.Errorf("ollama_status = %q, want unreachable", body.OllamaStatus)
	}
}

func TestHealth_NilProberReportsUnknown(t *testing.T) {
	store := conversation.NewStore(conversation.DefaultLimit, log.NewNop())
	h := &healthHandler{store: store, logger: log.NewNop()}

	rec := httptest.NewRecorder()
	h.check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OllamaStatus != "unknown" {
		t.Errorf("ollama_status = %q, want unknown", body.OllamaStatus)
	}
}
