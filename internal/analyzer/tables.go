package analyzer

import "regexp"

// Intent labels.
const (
	IntentQuoteRequest     = "quote_request"
	IntentProjectInquiry   = "project_inquiry"
	IntentServiceQuestion  = "service_question"
	IntentGeneralInfo      = "general_info"
	IntentContactRequest   = "contact_request"
	IntentTechnicalSupport = "technical_support"

	// IntentGeneral is the primary intent when no label matches.
	IntentGeneral = "general"
)

// Conversation stages.
const (
	StageGreeting    = "greeting"
	StageExploration = "exploration"
	StageConversion  = "conversion"
	StageDiscussion  = "discussion"
)

// keywordGroup maps a label to its trigger substrings. Matching is plain
// substring containment on the lower-cased message.
type keywordGroup struct {
	label    string
	keywords []string
}

// intentRules lists the six intent labels in declaration order. The order is
// load-bearing: primary-intent ties resolve to the first matching label.
var intentRules = []keywordGroup{
	{IntentQuoteRequest, []string{"quote", "price", "cost", "estimate", "budget"}},
	{IntentProjectInquiry, []string{"project", "build", "construct", "renovation"}},
	{IntentServiceQuestion, []string{"service", "maintenance", "repair", "install"}},
	{IntentGeneralInfo, []string{"about", "company", "experience", "portfolio"}},
	{IntentContactRequest, []string{"contact", "call", "visit", "appointment"}},
	{IntentTechnicalSupport, []string{"problem", "issue", "help", "support"}},
}

// projectTypeGroups are tested in priority order; the first group with any
// matching keyword wins.
var projectTypeGroups = []keywordGroup{
	{"villa", []string{"villa", "house", "home", "residential"}},
	{"commercial", []string{"office", "commercial", "business", "shop", "restaurant"}},
	{"renovation", []string{"renovation", "remodel", "upgrade", "refurbish"}},
	{"maintenance", []string{"maintenance", "repair", "fix", "service"}},
}

// locations are the seven emirates, matched case-insensitively and returned
// title-cased.
var locations = []string{
	"abu dhabi", "dubai", "sharjah", "ajman",
	"ras al khaimah", "fujairah", "umm al quwain",
}

var urgencyGroups = []keywordGroup{
	{"urgent", []string{"urgent", "asap", "immediately", "emergency"}},
	{"soon", []string{"soon", "quickly", "fast", "this week"}},
	{"flexible", []string{"flexible", "no rush", "when possible"}},
}

// serviceVocabulary is matched exhaustively: every service whose name appears
// in the message is reported, in this order.
var serviceVocabulary = []string{
	"electrical", "plumbing", "hvac", "swimming pool", "interior design",
	"maintenance", "painting", "tiling", "carpentry", "security",
}

var budgetPattern = regexp.MustCompile(`(\d+)\s*(aed|dirham|thousand|million|k|m)`)
