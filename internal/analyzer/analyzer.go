// Package analyzer derives a structured analysis of a chat message in the
// context of its conversation: matched intents, extracted entities, and the
// coarse conversation stage that steers suggestions and prompt framing.
//
// Analysis is a pure function of (message, history). It never fails; any
// text input, including the empty string, yields a valid Analysis.
package analyzer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shiraji/assistant/internal/conversation"
)

// Entities holds the values extracted from a message. Absent entities stay
// zero and are omitted from JSON output.
type Entities struct {
	ProjectType       string   `json:"project_type,omitempty"`
	Location          string   `json:"location,omitempty"`
	BudgetRange       string   `json:"budget_range,omitempty"`
	Urgency           string   `json:"urgency,omitempty"`
	ServicesMentioned []string `json:"services_mentioned,omitempty"`
}

// Pair is one present entity rendered as a key/value for prompt text.
type Pair struct {
	Key   string
	Value string
}

// Pairs returns the present entities in declaration order.
func (e Entities) Pairs() []Pair {
	var pairs []Pair
	if e.ProjectType != "" {
		pairs = append(pairs, Pair{"project_type", e.ProjectType})
	}
	if e.Location != "" {
		pairs = append(pairs, Pair{"location", e.Location})
	}
	if e.BudgetRange != "" {
		pairs = append(pairs, Pair{"budget_range", e.BudgetRange})
	}
	if e.Urgency != "" {
		pairs = append(pairs, Pair{"urgency", e.Urgency})
	}
	if len(e.ServicesMentioned) > 0 {
		pairs = append(pairs, Pair{"services_mentioned", strings.Join(e.ServicesMentioned, ", ")})
	}
	return pairs
}

// Analysis is the derived classification of a message in context. It is
// transient: recomputed per request, never stored.
type Analysis struct {
	// Intents holds only the labels that matched (value always true).
	Intents map[string]bool `json:"intents"`

	Entities          Entities `json:"entities"`
	ConversationStage string   `json:"conversation_stage"`
	MessageCount      int      `json:"message_count"`
	PrimaryIntent     string   `json:"primary_intent"`
}

var titleCaser = cases.Title(language.English)

// Analyze classifies a message against the conversation history. The history
// must exclude the message being analyzed: MessageCount reports len(history)
// and the greeting stage is keyed off an empty history.
func Analyze(message string, history []conversation.Turn) Analysis {
	lower := strings.ToLower(message)

	intents := make(map[string]bool)
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			intents[rule.label] = true
		}
	}

	entities := Entities{
		ProjectType:       firstGroupMatch(lower, projectTypeGroups),
		Location:          extractLocation(lower),
		BudgetRange:       extractBudget(lower),
		Urgency:           firstGroupMatch(lower, urgencyGroups),
		ServicesMentioned: extractServices(lower),
	}

	return Analysis{
		Intents:           intents,
		Entities:          entities,
		ConversationStage: determineStage(history, intents),
		MessageCount:      len(history),
		PrimaryIntent:     primaryIntent(intents),
	}
}

// containsAny reports whether any keyword appears as a substring of message.
func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// firstGroupMatch returns the label of the first group with a matching
// keyword, or "" when nothing matches.
func firstGroupMatch(message string, groups []keywordGroup) string {
	for _, g := range groups {
		if containsAny(message, g.keywords) {
			return g.label
		}
	}
	return ""
}

func extractLocation(message string) string {
	for _, loc := range locations {
		if strings.Contains(message, loc) {
			return titleCaser.String(loc)
		}
	}
	return ""
}

// extractBudget returns the first budget expression verbatim, e.g. "500k" or
// "2 million". The message is already lower-cased by the caller.
func extractBudget(message string) string {
	return budgetPattern.FindString(message)
}

func extractServices(message string) []string {
	var found []string
	for _, svc := range serviceVocabulary {
		if strings.Contains(message, svc) {
			found = append(found, svc)
		}
	}
	return found
}

// determineStage evaluates stage rules in fixed priority order: an empty
// history is always a greeting, regardless of intents.
func determineStage(history []conversation.Turn, intents map[string]bool) string {
	switch {
	case len(history) == 0:
		return StageGreeting
	case len(history) <= 3:
		return StageExploration
	case intents[IntentQuoteRequest] || intents[IntentContactRequest]:
		return StageConversion
	default:
		return StageDiscussion
	}
}

// primaryIntent picks the first matched label in declaration order, falling
// back to "general" when nothing matched.
func primaryIntent(intents map[string]bool) string {
	for _, rule := range intentRules {
		if intents[rule.label] {
			return rule.label
		}
	}
	return IntentGeneral
}
