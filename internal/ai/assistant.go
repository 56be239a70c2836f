package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teja-0311/Kisanmarket/internal/config"
)

// IAssistant defines the interface for the farming assistant.
type IAssistant interface {
	Ask(ctx context.Context, query, language string) (string, error)
}

// openAIAssistant implements IAssistant against the OpenAI chat API.
type openAIAssistant struct {
	cfg    *config.Config
	client *openai.Client
}

// NewOpenAIAssistant creates a new assistant backed by OpenAI.
func NewOpenAIAssistant(cfg *config.Config) IAssistant {
	return &openAIAssistant{cfg: cfg, client: openai.NewClient(cfg.OpenAIAPIKey)}
}

// Ask forwards the farmer's question and returns the assistant's reply.
// Replies come back in the requested language, defaulting to English.
func (a *openAIAssistant) Ask(ctx context.Context, query, language string) (string, error) {
	if language == "" {
		language = "English"
	}

	prompt := fmt.Sprintf(`You are a multilingual AI farming assistant.
Provide concise suggestions in %s for farmers based on this query:
%q
Topics can include seasonal crops, fertilizers, pest control, soil care, etc.`, language, query)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.cfg.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an expert AI agriculture assistant."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
