// Package suggest produces canned follow-up prompts for the chat UI based on
// the current conversation analysis.
package suggest

import "github.com/shiraji/assistant/internal/analyzer"

// MaxSuggestions caps the follow-up list shown by the UI.
const MaxSuggestions = 3

// ForAnalysis returns up to MaxSuggestions follow-up prompts. The branch is
// chosen by primary intent first, then conversation stage; within a branch
// the order is fixed and preserved in the output.
func ForAnalysis(a analyzer.Analysis) []string {
	var suggestions []string

	switch {
	case a.PrimaryIntent == analyzer.IntentQuoteRequest:
		if a.Entities.ProjectType == "" {
			suggestions = append(suggestions, "What type of project are you planning?")
		}
		if a.Entities.Location == "" {
			suggestions = append(suggestions, "Which emirate is your project located in?")
		}
		suggestions = append(suggestions, "Schedule a site visit for accurate quote")

	case a.PrimaryIntent == analyzer.IntentProjectInquiry:
		suggestions = append(suggestions,
			"View our recent projects",
			"Get a cost estimate",
			"Schedule a consultation",
		)

	case a.ConversationStage == analyzer.StageConversion:
		suggestions = append(suggestions,
			"Call us now: +971 55 942 5653",
			"Send project details via email",
			"Book a site visit",
		)

	default:
		suggestions = append(suggestions,
			"Tell me about your project",
			"Get a quick quote",
			"See our services",
		)
	}

	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}
