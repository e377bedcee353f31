package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/luminode/chatlead/internal/session"
)

// MockGenerator is a deterministic generator for local development and
// tests. It echoes enough of the input to make conversations legible
// without a real backend.
type MockGenerator struct {
	// Err, when set, is returned from every call. Used by tests to
	// force the fallback path.
	Err error
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Generate(ctx context.Context, systemPrompt string, history []session.Message, userMessage string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}

	msg := strings.ToLower(userMessage)
	switch {
	case strings.Contains(msg, "pricing"), strings.Contains(msg, "price"), strings.Contains(msg, "cost"):
		return "Happy to talk pricing. Could you share a bit about your budget and requirements so I can point you to the right package?", nil
	case strings.Contains(msg, "hello"), strings.Contains(msg, "hi"):
		return "Hello! What kind of project are you thinking about?", nil
	default:
		return fmt.Sprintf("Thanks! Tell me more about what you need (you said: %q). What's your timeline?", userMessage), nil
	}
}
