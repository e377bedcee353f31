package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/luminode/chatlead/internal/session"
)

// OpenAIProvider generates replies through an OpenAI-compatible chat
// completion API.
type OpenAIProvider struct {
	model   *openai.LLM
	timeout time.Duration
}

func NewOpenAIProvider(apiKey, model string, timeout time.Duration) (*OpenAIProvider, error) {
	m, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &OpenAIProvider{
		model:   m,
		timeout: timeout,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt string, history []session.Message, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))

	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, msg.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(500),
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("generation returned no content")
	}

	return resp.Choices[0].Content, nil
}
