package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	"nexus-ai-chat/internal/infra/metrics"
	"nexus-ai-chat/internal/registry"
)

var _ adapter.InferenceAdapter = (*MultiAdapter)(nil)

// MultiAdapter is the inference gateway: it routes a catalog model id to the
// provider integration that serves it. An unknown id falls back to the
// default model so the UI stays responsive, never failing the send.
type MultiAdapter struct {
	byProvider map[string]adapter.InferenceAdapter
	log        *zerolog.Logger
}

func NewMultiAdapter(byProvider map[string]adapter.InferenceAdapter, logger *zerolog.Logger) *MultiAdapter {
	l := logger.With().Str("component", "InferenceGateway").Logger()
	return &MultiAdapter{byProvider: byProvider, log: &l}
}

func (g *MultiAdapter) Complete(ctx context.Context, modelID, prompt string, params model.GenParams) (adapter.CompletionResult, error) {
	m, err := registry.Resolve(modelID)
	if err != nil {
		g.log.Debug().Str("model", modelID).Msg("unknown model id, routing to default")
		m = registry.Default()
	}

	a := g.byProvider[m.Provider]
	if a == nil {
		// provider not wired at all; treat like a remote failure
		return adapter.CompletionResult{}, &domain.ProviderError{Provider: m.Provider, Reason: "provider not configured"}
	}

	start := time.Now()
	res, err := a.Complete(ctx, m.ID, prompt, params)
	elapsed := time.Since(start)
	metrics.ObserveCompletion(m.Provider, m.ID, res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Usage.TotalTokens, int(elapsed.Milliseconds()), err == nil)
	if err != nil {
		g.log.Warn().Err(err).Str("provider", m.Provider).Str("model", m.ID).Dur("elapsed", elapsed).Msg("completion failed")
		return adapter.CompletionResult{}, err
	}
	if res.Advisory {
		g.log.Info().Str("provider", m.Provider).Str("model", m.ID).Msg("credential missing, returned setup advisory")
	}
	return res, nil
}
