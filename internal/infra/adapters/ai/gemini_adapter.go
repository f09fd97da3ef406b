package ai

import (
	"context"

	"google.golang.org/genai"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	"nexus-ai-chat/internal/registry"
)

var _ adapter.InferenceAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter completes prompts against the Gemini API using the official
// SDK. A missing key is not an error: Complete returns the setup advisory.
type GeminiAdapter struct {
	client *genai.Client // nil when no key is configured
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return &GeminiAdapter{}, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c}, nil
}

func (g *GeminiAdapter) Complete(ctx context.Context, modelID, prompt string, params model.GenParams) (adapter.CompletionResult, error) {
	if g.client == nil {
		return advisoryResult(geminiAdvisory), nil
	}

	m, err := registry.Resolve(modelID)
	if err != nil {
		m = registry.Default()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		TopK:            genai.Ptr(float32(params.TopK)),
		TopP:            genai.Ptr(float32(params.TopP)),
		MaxOutputTokens: int32(params.MaxTokens),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}

	chat, err := g.client.Chats.Create(ctx, m.ProviderName, cfg, nil)
	if err != nil {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderGoogle, Reason: "create chat: " + err.Error(), Err: err}
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderGoogle, Reason: err.Error(), Err: err}
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderGoogle, Reason: "empty candidate content"}
	}

	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return adapter.CompletionResult{Text: text, Usage: u}, nil
}
