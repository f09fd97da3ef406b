package adapter

import (
	"context"

	"nexus-ai-chat/internal/domain/model"
)

// Usage for a single completion call, as reported (or estimated) by the
// provider integration.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResult carries the assistant text for one exchange. Advisory is
// set when the text is configuration guidance (missing credential) rather
// than a real model answer; callers render both identically but may route
// them differently internally.
type CompletionResult struct {
	Text     string
	Advisory bool
	Usage    Usage
}

// InferenceAdapter is the port for LLM completion. Implementations convert
// every remote failure into *domain.ProviderError and must never panic past
// this boundary. A missing credential is not a failure: it yields an
// advisory result.
type InferenceAdapter interface {
	// Complete performs exactly one attempt, no retries. modelID is a
	// catalog id, not a provider-side model name.
	Complete(ctx context.Context, modelID, prompt string, params model.GenParams) (CompletionResult, error)
}
