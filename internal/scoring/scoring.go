// Package scoring maps a user message to an intent label, a confidence,
// and a lead-score adjustment using deterministic pattern rules. It has
// no hidden state, so the same scoring applies whether the assistant's
// reply came from the generation backend or the local fallback.
package scoring

import "strings"

// Intent labels, coarsest first.
const (
	IntentPricing    = "pricing_inquiry"
	IntentTimeline   = "timeline_inquiry"
	IntentService    = "service_inquiry"
	IntentAssistance = "assistance_request"
	IntentGeneral    = "general_inquiry"
)

// Weights holds the scoring heuristics. The values are carried over
// from the production heuristic unchanged; they are exposed so tests
// and config can tune them, not because a more principled model exists.
type Weights struct {
	Pricing     int
	Timeline    int
	Service     int
	Assistance  int
	Industry    int
	Specificity int
	Business    int

	ReplyQualifying int
	ReplyBudget     int

	AskThreshold int
	MaxScore     int
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Pricing:         20,
		Timeline:        15,
		Service:         10,
		Assistance:      5,
		Industry:        15,
		Specificity:     10,
		Business:        10,
		ReplyQualifying: 5,
		ReplyBudget:     10,
		AskThreshold:    60,
		MaxScore:        100,
	}
}

// Result is the scoring outcome for one user message.
type Result struct {
	Intent               string  `json:"intent"`
	Confidence           float64 `json:"confidence"`
	LeadScore            int     `json:"lead_score"`
	ShouldAskForLeadInfo bool    `json:"should_ask_for_lead_info"`
}

// Keyword families. First match wins for intent; bonus families add
// flat deltas on top.
var (
	pricingTerms  = []string{"pricing", "price", "cost", "how much", "quote", "budget", "rates", "fee"}
	timelineTerms = []string{"timeline", "how long", "when can", "how soon", "deadline", "launch date", "turnaround"}
	serviceTerms  = []string{"website", "web site", "seo", "marketing", "automation", "chatbot", "ai agent", "app", "design", "branding"}
	helpTerms     = []string{"help", "need", "looking for", "interested", "want to"}

	industryTerms = []string{
		"healthcare", "medical", "dental", "med spa", "medspa",
		"legal", "law firm", "attorney",
		"real estate", "realtor",
		"restaurant", "cafe", "hospitality",
		"retail", "ecommerce", "e-commerce",
		"construction", "contractor", "roofing", "hvac", "plumbing", "landscaping",
		"fitness", "gym", "salon", "spa",
		"automotive", "dealership",
		"insurance", "accounting", "finance",
	}

	specificityTerms = []string{"specific", "requirements", "features", "integrate", "integration", "custom"}
	businessTerms    = []string{"company", "business", "email", "phone", "contact", "call", "my team", "our team"}

	qualifyingReplyTerms = []string{"tell me more", "could you share", "what kind of", "can you describe"}
	budgetReplyTerms     = []string{"budget", "timeline", "requirements"}
)

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Score classifies a user message and computes the session's next lead
// score. priorScore is the session's score before this message; reply,
// when non-empty, is the assistant's produced answer and earns bonuses
// for progressing qualification.
func Score(message string, priorScore int, reply string, w Weights) Result {
	msg := strings.ToLower(message)

	result := Result{Intent: IntentGeneral, Confidence: 0.5}
	delta := 0

	// Primary intent: priority ordered, first family wins.
	switch {
	case containsAny(msg, pricingTerms):
		result.Intent = IntentPricing
		result.Confidence = 0.8
		delta += w.Pricing
	case containsAny(msg, timelineTerms):
		result.Intent = IntentTimeline
		result.Confidence = 0.8
		delta += w.Timeline
	case containsAny(msg, serviceTerms):
		result.Intent = IntentService
		result.Confidence = 0.7
		delta += w.Service
	case containsAny(msg, helpTerms):
		result.Intent = IntentAssistance
		result.Confidence = 0.7
		delta += w.Assistance
	}

	// Flat bonuses. Industry counts once, first match only.
	if containsAny(msg, industryTerms) {
		delta += w.Industry
	}
	if containsAny(msg, specificityTerms) {
		delta += w.Specificity
	}
	if containsAny(msg, businessTerms) {
		delta += w.Business
	}

	// Reward the assistant for progressing qualification, not just the
	// user's input.
	if reply != "" {
		rep := strings.ToLower(reply)
		if containsAny(rep, qualifyingReplyTerms) {
			delta += w.ReplyQualifying
		}
		if containsAny(rep, budgetReplyTerms) {
			delta += w.ReplyBudget
		}
	}

	score := priorScore + delta
	if score > w.MaxScore {
		score = w.MaxScore
	}
	if score < 0 {
		score = 0
	}
	result.LeadScore = score

	// Don't re-ask for contact details the user just supplied.
	result.ShouldAskForLeadInfo = score >= w.AskThreshold && !ContainsContactInfo(message)

	return result
}
