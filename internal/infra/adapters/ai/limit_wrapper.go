package ai

import (
	"context"

	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.InferenceAdapter = (*limitedInference)(nil)

type limitedInference struct {
	inner adapter.InferenceAdapter
	sem   chan struct{}
}

// NewLimitedInference caps concurrent upstream completion calls.
func NewLimitedInference(inner adapter.InferenceAdapter, maxConcurrent int) adapter.InferenceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedInference{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedInference) Complete(ctx context.Context, modelID, prompt string, params model.GenParams) (adapter.CompletionResult, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.CompletionResult{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, modelID, prompt, params)
}
