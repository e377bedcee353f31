package llm

import (
	"context"

	"github.com/luminode/chatlead/internal/session"
)

// Generator is the external text-generation collaborator. Generate
// returns the assistant's next message for the given user message and
// the (already trimmed) conversation history.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []session.Message, userMessage string) (string, error)
}
