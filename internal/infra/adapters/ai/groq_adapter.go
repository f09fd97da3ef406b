package ai

import (
	"context"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	"nexus-ai-chat/internal/registry"
)

var _ adapter.InferenceAdapter = (*GroqAdapter)(nil)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter completes prompts against Groq's OpenAI-compatible gateway.
type GroqAdapter struct {
	client *openai.Client // nil when no key is configured
}

func NewGroqAdapter(apiKey, baseURL string) *GroqAdapter {
	if apiKey == "" {
		return &GroqAdapter{}
	}
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &GroqAdapter{client: &c}
}

func (g *GroqAdapter) Complete(ctx context.Context, modelID, prompt string, params model.GenParams) (adapter.CompletionResult, error) {
	if g.client == nil {
		return advisoryResult(groqAdvisory), nil
	}

	m, err := registry.Resolve(modelID)
	if err != nil {
		m = registry.Default()
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.ProviderName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(params.Temperature),
		TopP:        openai.Float(params.TopP),
		MaxTokens:   openai.Int(int64(params.MaxTokens)),
	})
	if err != nil {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderGroq, Reason: err.Error(), Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderGroq, Reason: "no choice content"}
	}

	return adapter.CompletionResult{
		Text: resp.Choices[0].Message.Content,
		Usage: adapter.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
