// Package leads builds lead payloads from qualified sessions and hands
// them to the CRM collaborator over NATS request/reply.
package leads

import (
	"context"

	"github.com/luminode/chatlead/internal/session"
)

// Payload is the lead record sent to the CRM collaborator.
type Payload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Message     string `json:"message"`
	LeadSource  string `json:"lead_source"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	GDPRConsent bool   `json:"gdpr_consent"`
}

// Creator accepts a lead payload and returns the CRM-assigned lead ID.
type Creator interface {
	CreateLead(ctx context.Context, payload *Payload) (string, error)
}

// BuildPayload assembles a lead from a session's extracted info. A lead
// needs at least an email address; without one it reports not-ready.
// lastMessage is the user message that crossed the qualification
// threshold.
func BuildPayload(sess *session.Session, lastMessage string) (*Payload, bool) {
	info := sess.Context.ExtractedInfo

	email := info["email"]
	if email == "" {
		return nil, false
	}

	name := info["name"]
	if name == "" {
		name = "Chat visitor"
	}

	return &Payload{
		Name:        name,
		Email:       email,
		Phone:       info["phone"],
		Company:     info["company"],
		Industry:    info["industry"],
		Message:     lastMessage,
		LeadSource:  "ai_chat",
		UTMSource:   info["utm_source"],
		UTMMedium:   info["utm_medium"],
		UTMCampaign: info["utm_campaign"],
		// Contact details were volunteered in chat; the widget shows
		// the privacy notice before the conversation starts.
		GDPRConsent: true,
	}, true
}
