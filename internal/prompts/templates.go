// Package prompts holds the business-knowledge prompt sent to the
// generation backend and the canned replies used when that backend is
// unavailable.
package prompts

import "strings"

const SystemPrompt = `You are the AI assistant for Luminode, an AI-automation agency. We build websites, AI chat agents, marketing automation, and SEO for small and mid-size businesses across industries such as healthcare, legal, real estate, home services, and hospitality.

GUIDELINES:
1. Be concise, friendly, and concrete. Two to four sentences per reply.
2. Answer questions about our services, pricing ranges, and typical timelines.
3. Ask one qualifying question per reply when it moves the conversation forward (budget, timeline, requirements, industry).
4. Never invent case studies, client names, or guaranteed results.
5. If the visitor seems ready to move forward, offer to collect their name and email so the team can follow up.`

// Canned replies for the deterministic fallback path. Keyed by coarse
// keyword match on the user message; order matters, first match wins.
var fallbackRules = []struct {
	terms []string
	reply string
}{
	{
		terms: []string{"hello", "hi", "hey", "good morning", "good afternoon"},
		reply: "Hi there! I'm the Luminode assistant. We build websites, AI chat agents, and marketing automation for growing businesses. What can I help you with today?",
	},
	{
		terms: []string{"pricing", "price", "cost", "how much", "quote"},
		reply: "Our projects typically start around $2,500 for a website and scale with scope for automation and AI work. If you share a bit about your project, the team can put together an exact quote.",
	},
	{
		terms: []string{"timeline", "how long", "when", "soon"},
		reply: "Most websites launch in 2-4 weeks, and automation projects in 4-8 weeks depending on integrations. Tell me about your timeline and we'll see what's possible.",
	},
}

const genericFallback = "Thanks for reaching out! I'm having a little trouble right now, but I'd still love to help. Could you tell me a bit more about what you're looking for?"

// FallbackReply selects a fixed canned reply for a user message. The
// mapping is deterministic: identical input always yields an identical
// reply.
func FallbackReply(message string) string {
	msg := strings.ToLower(message)
	for _, rule := range fallbackRules {
		for _, term := range rule.terms {
			if strings.Contains(msg, term) {
				return rule.reply
			}
		}
	}
	return genericFallback
}
