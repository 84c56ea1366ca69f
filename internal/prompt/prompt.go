// Package prompt assembles the completion prompt sent to the language model.
//
// The output of Build is the exact text of the completion request; nothing
// downstream alters it.
package prompt

import (
	"fmt"
	"strings"

	"github.com/shiraji/assistant/internal/analyzer"
	"github.com/shiraji/assistant/internal/conversation"
)

// historyWindow is how many trailing turns are included in the prompt. Older
// turns stay in the store (up to its own cap) but are dropped from the prompt.
const historyWindow = 6

const companyBlock = `You are Shiraji AI Assistant - an expert construction consultant for Shiraji Group in Abu Dhabi, UAE.

COMPANY INFO:
- Location: Al Nahyan, Abu Dhabi, UAE
- Phone: +971 55 942 5653
- Email: info@shiraji.ae
- Services: Construction, Electrical, HVAC, Plumbing, Swimming Pools, Interior Design, Maintenance`

const responseGuidelines = `RESPONSE GUIDELINES:
- Be conversational and helpful (not robotic)
- Reference previous conversation naturally
- Ask ONE specific follow-up question
- Keep response under 100 words
- Use emojis appropriately
- Provide actionable advice
- Be specific and avoid generic responses

Respond as Shiraji AI Assistant:`

// intentInstructions keys the instruction block by primary intent. Unknown
// intents fall back to the "general" instruction.
var intentInstructions = map[string]string{
	analyzer.IntentQuoteRequest:     "Focus on gathering project details (type, size, location, timeline) to provide accurate pricing. Offer to schedule a site visit.",
	analyzer.IntentProjectInquiry:   "Discuss project specifics, share relevant experience, and guide toward next steps (consultation, quote, timeline).",
	analyzer.IntentServiceQuestion:  "Explain the specific service in detail, mention related services, and suggest how to proceed.",
	analyzer.IntentContactRequest:   "Provide contact information and suggest the best way to connect based on their needs.",
	analyzer.IntentTechnicalSupport: "Offer practical solutions, explain the process, and suggest professional assessment if needed.",
	analyzer.IntentGeneral:          "Be welcoming, understand their needs, and guide the conversation toward specific services or projects.",
}

// Build assembles the completion prompt from the current message, the stored
// history, and the analysis derived for this request.
func Build(message string, history []conversation.Turn, a analyzer.Analysis) string {
	var b strings.Builder

	b.WriteString(companyBlock)

	b.WriteString("\n\nCONVERSATION ANALYSIS:\n")
	fmt.Fprintf(&b, "- Primary Intent: %s\n", a.PrimaryIntent)
	fmt.Fprintf(&b, "- Stage: %s\n", a.ConversationStage)
	fmt.Fprintf(&b, "- Entities: %s\n", renderEntities(a.Entities))
	fmt.Fprintf(&b, "- Message Count: %d", a.MessageCount)

	if recent := tail(history, historyWindow); len(recent) > 0 {
		b.WriteString("\n\nRECENT CONVERSATION:")
		for _, turn := range recent {
			fmt.Fprintf(&b, "\n%s: %s", strings.ToUpper(turn.Role), turn.Content)
		}
	}

	fmt.Fprintf(&b, "\n\nCURRENT USER MESSAGE: %q", message)

	b.WriteString("\n\n")
	b.WriteString(instructionsFor(a.PrimaryIntent))

	b.WriteString("\n\n")
	b.WriteString(responseGuidelines)

	return b.String()
}

func renderEntities(e analyzer.Entities) string {
	pairs := e.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Key + ": " + p.Value
	}
	return strings.Join(parts, ", ")
}

func instructionsFor(intent string) string {
	if instr, ok := intentInstructions[intent]; ok {
		return instr
	}
	return intentInstructions[analyzer.IntentGeneral]
}

func tail(history []conversation.Turn, n int) []conversation.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
