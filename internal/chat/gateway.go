// Package chat orchestrates a chat exchange: conversation lookup, analysis,
// prompt building, the completion call, and persistence of the resulting
// turns.
//
// The gateway is deliberately best-effort at the boundary: an upstream
// failure on the blocking path is absorbed into a canned reply with contact
// information rather than surfaced to the caller. The chat widget never goes
// silent.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shiraji/assistant/internal/analyzer"
	"github.com/shiraji/assistant/internal/conversation"
	"github.com/shiraji/assistant/internal/prompt"
	"github.com/shiraji/assistant/internal/suggest"
)

// DefaultConversationID is used when the caller does not name a conversation.
const DefaultConversationID = "default"

// fallbackResponse is served whenever the completion API cannot answer.
const fallbackResponse = "I'm experiencing some technical difficulties. " +
	"Please try again or contact us directly at +971 55 942 5653."

var fallbackSuggestions = []string{"Call us directly", "Try again", "Send email"}

// assistantPrefix is stripped from generated text: the model sometimes echoes
// the directive line back.
const assistantPrefix = "Shiraji AI Assistant:"

// Completer is the completion API surface the gateway depends on.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string, fn func(token string, done bool) error) error
}

// Gateway coordinates the analyzer, prompt builder, suggestion generator,
// conversation store, and completion client for one exchange at a time per
// conversation.
type Gateway struct {
	store     *conversation.Store
	completer Completer
	logger    *slog.Logger
}

// NewGateway creates a Gateway.
func NewGateway(store *conversation.Store, completer Completer, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, completer: completer, logger: logger}
}

// Reply is the structured response of a blocking chat exchange.
type Reply struct {
	Response        string            `json:"response"`
	ConversationID  string            `json:"conversation_id"`
	Suggestions     []string          `json:"suggestions"`
	ContextAnalysis analyzer.Analysis `json:"context_analysis"`
}

// Send runs one blocking exchange. It never returns an error: upstream
// failures degrade to the fallback reply, with the conversation id resolved
// and the analysis intact. Turns are persisted only on success.
func (g *Gateway) Send(ctx context.Context, message, conversationID string) Reply {
	if conversationID == "" {
		conversationID = DefaultConversationID
	}

	// One exchange at a time per conversation; the lock covers the whole
	// read history → remote call → append cycle.
	release := g.store.Acquire(conversationID)
	defer release()

	history := g.store.History(conversationID)
	a := analyzer.Analyze(message, history)
	p := prompt.Build(message, history, a)

	text, err := g.completer.Generate(ctx, p)
	if err != nil {
		g.logger.Warn("completion failed, serving fallback",
			"conversation_id", conversationID,
			"error", err,
		)
		return Reply{
			Response:        fallbackResponse,
			ConversationID:  conversationID,
			Suggestions:     fallbackSuggestions,
			ContextAnalysis: a,
		}
	}

	text = strings.TrimSpace(strings.ReplaceAll(text, assistantPrefix, ""))

	g.store.Append(conversationID,
		conversation.NewTurn(conversation.RoleUser, message),
		conversation.NewTurn(conversation.RoleAssistant, text),
	)

	g.logger.Info("chat exchange completed",
		"conversation_id", conversationID,
		"primary_intent", a.PrimaryIntent,
		"stage", a.ConversationStage,
	)

	return Reply{
		Response:        text,
		ConversationID:  conversationID,
		Suggestions:     suggest.ForAnalysis(a),
		ContextAnalysis: a,
	}
}

// Stream runs one streaming exchange, relaying every token to emit as it
// arrives. The accumulated user/assistant turn pair is persisted only once
// the upstream signals completion; a transport error or caller disconnect
// persists nothing and is returned for the caller to report once.
func (g *Gateway) Stream(ctx context.Context, message, conversationID string, emit func(token string, done bool) error) error {
	if conversationID == "" {
		conversationID = DefaultConversationID
	}

	release := g.store.Acquire(conversationID)
	defer release()

	history := g.store.History(conversationID)
	a := analyzer.Analyze(message, history)
	p := prompt.Build(message, history, a)

	var full strings.Builder
	err := g.completer.Stream(ctx, p, func(token string, done bool) error {
		full.WriteString(token)
		if done {
			g.store.Append(conversationID,
				conversation.NewTurn(conversation.RoleUser, message),
				conversation.NewTurn(conversation.RoleAssistant, full.String()),
			)
		}
		return emit(token, done)
	})
	if err != nil {
		g.logger.Warn("stream aborted",
			"conversation_id", conversationID,
			"error", err,
		)
		return err
	}

	g.logger.Info("stream completed",
		"conversation_id", conversationID,
		"primary_intent", a.PrimaryIntent,
	)
	return nil
}
