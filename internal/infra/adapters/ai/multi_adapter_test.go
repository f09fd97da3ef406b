package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	ai "nexus-ai-chat/internal/infra/adapters/ai"
	"nexus-ai-chat/internal/infra/logging"
	"nexus-ai-chat/internal/registry"
)

type stubProvider struct {
	name       string
	calls      int
	lastModel  string
	lastPrompt string
	result     adapter.CompletionResult
	err        error
}

func (s *stubProvider) Complete(ctx context.Context, modelID, prompt string, _ model.GenParams) (adapter.CompletionResult, error) {
	s.calls++
	s.lastModel = modelID
	s.lastPrompt = prompt
	return s.result, s.err
}

func newGateway(google, groq, hf *stubProvider) *ai.MultiAdapter {
	log := logging.NewNop()
	return ai.NewMultiAdapter(map[string]adapter.InferenceAdapter{
		registry.ProviderGoogle:      google,
		registry.ProviderGroq:        groq,
		registry.ProviderHuggingFace: hf,
	}, log)
}

func TestRouting_ByCatalogID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	google := &stubProvider{name: "google", result: adapter.CompletionResult{Text: "g"}}
	groq := &stubProvider{name: "groq", result: adapter.CompletionResult{Text: "q"}}
	hf := &stubProvider{name: "hf", result: adapter.CompletionResult{Text: "h"}}
	gw := newGateway(google, groq, hf)

	if _, err := gw.Complete(ctx, "groq-llama", "hi", model.ParamsDefault); err != nil {
		t.Fatal(err)
	}
	if groq.calls != 1 || google.calls != 0 || hf.calls != 0 {
		t.Fatalf("groq-llama must route to groq (google=%d groq=%d hf=%d)", google.calls, groq.calls, hf.calls)
	}
	if groq.lastModel != "groq-llama" {
		t.Fatalf("catalog id must be forwarded, got %q", groq.lastModel)
	}

	if _, err := gw.Complete(ctx, "huggingface", "hi", model.ParamsDefault); err != nil {
		t.Fatal(err)
	}
	if hf.calls != 1 {
		t.Fatal("huggingface id must route to huggingface provider")
	}
}

func TestRouting_UnknownIDFallsBackToDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	google := &stubProvider{name: "google", result: adapter.CompletionResult{Text: "ok"}}
	gw := newGateway(google, &stubProvider{}, &stubProvider{})

	res, err := gw.Complete(ctx, "totally-unknown", "hi", model.ParamsDefault)
	if err != nil {
		t.Fatalf("unknown id must not fail: %v", err)
	}
	if google.calls != 1 {
		t.Fatal("unknown id must route to the default model's provider")
	}
	if google.lastModel != registry.DefaultModelID {
		t.Fatalf("expected default model id, got %q", google.lastModel)
	}
	if res.Text != "ok" {
		t.Fatalf("unexpected result %q", res.Text)
	}
}

func TestRouting_MissingProviderIsProviderError(t *testing.T) {
	t.Parallel()
	gw := ai.NewMultiAdapter(map[string]adapter.InferenceAdapter{}, logging.NewNop())
	_, err := gw.Complete(context.Background(), "gemini", "hi", model.ParamsDefault)
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Provider != registry.ProviderGoogle {
		t.Fatalf("wrong provider in error: %s", pe.Provider)
	}
}

func TestAdvisory_PassedThrough(t *testing.T) {
	t.Parallel()
	google := &stubProvider{result: adapter.CompletionResult{Text: "⚠️ key missing, see setup", Advisory: true}}
	gw := newGateway(google, &stubProvider{}, &stubProvider{})
	res, err := gw.Complete(context.Background(), "gemini", "hi", model.ParamsDefault)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Advisory || res.Text == "" {
		t.Fatalf("advisory result must survive routing: %+v", res)
	}
	if !strings.Contains(res.Text, "⚠️") {
		t.Fatalf("advisory text lost: %q", res.Text)
	}
}

func TestLimitWrapper_Delegates(t *testing.T) {
	t.Parallel()
	inner := &stubProvider{result: adapter.CompletionResult{Text: "ok"}}
	limited := ai.NewLimitedInference(inner, 2)
	res, err := limited.Complete(context.Background(), "gemini", "p", model.ParamsDefault)
	if err != nil || res.Text != "ok" {
		t.Fatalf("limited adapter broke delegation: %v %+v", err, res)
	}
	if inner.calls != 1 {
		t.Fatal("inner not called")
	}
}
