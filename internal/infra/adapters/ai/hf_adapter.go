package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	"nexus-ai-chat/internal/registry"
)

var _ adapter.InferenceAdapter = (*HuggingFaceAdapter)(nil)

const huggingFaceBaseURL = "https://api-inference.huggingface.co"

// HuggingFaceAdapter calls the serverless Inference API directly.
// Path: /models/{model}; Authorization: Bearer <token>.
type HuggingFaceAdapter struct {
	apiKey string
	base   string
	client *http.Client
}

func NewHuggingFaceAdapter(apiKey, baseURL string) *HuggingFaceAdapter {
	if baseURL == "" {
		baseURL = huggingFaceBaseURL
	}
	return &HuggingFaceAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{},
	}
}

func (h *HuggingFaceAdapter) Complete(ctx context.Context, modelID, prompt string, params model.GenParams) (adapter.CompletionResult, error) {
	if h.apiKey == "" {
		return advisoryResult(huggingFaceAdvisory), nil
	}

	m, err := registry.Resolve(modelID)
	if err != nil {
		m = registry.Default()
	}

	reqBody := struct {
		Inputs     string `json:"inputs"`
		Parameters struct {
			MaxNewTokens int     `json:"max_new_tokens"`
			Temperature  float64 `json:"temperature"`
			TopK         int     `json:"top_k,omitempty"`
			TopP         float64 `json:"top_p,omitempty"`
		} `json:"parameters"`
	}{Inputs: prompt}
	reqBody.Parameters.MaxNewTokens = 1024
	reqBody.Parameters.Temperature = params.Temperature
	reqBody.Parameters.TopK = params.TopK
	reqBody.Parameters.TopP = params.TopP

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, h.base+"/models/"+m.ProviderName, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderHuggingFace, Reason: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		e := fmt.Errorf("huggingface http %d", resp.StatusCode)
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderHuggingFace, Reason: e.Error(), Err: e}
	}

	var payload []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderHuggingFace, Reason: "malformed payload: " + err.Error(), Err: err}
	}
	if len(payload) == 0 || payload[0].GeneratedText == "" {
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: registry.ProviderHuggingFace, Reason: "no generated text"}
	}

	text := payload[0].GeneratedText
	// the Inference API reports no usage; estimate for metrics
	return adapter.CompletionResult{
		Text: text,
		Usage: adapter.Usage{
			PromptTokens:     estimateTokens(prompt),
			CompletionTokens: estimateTokens(text),
			TotalTokens:      estimateTokens(prompt) + estimateTokens(text),
		},
	}, nil
}
