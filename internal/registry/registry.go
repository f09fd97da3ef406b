// Package registry holds the compiled-in model catalog. No I/O, no state.
package registry

import (
	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
)

const (
	ProviderGoogle      = "google"
	ProviderGroq        = "groq"
	ProviderHuggingFace = "huggingface"
)

// catalog order is the display order.
var catalog = []model.Model{
	{
		ID:           "gemini",
		DisplayName:  "Gemini 1.5 Pro",
		Description:  "Advanced reasoning and long context",
		Provider:     ProviderGoogle,
		ProviderName: "gemini-1.5-pro",
		BaseURL:      "https://generativelanguage.googleapis.com",
		Capabilities: []string{model.CapText, model.CapImage, model.CapCode},
		Free:         true,
	},
	{
		ID:           "gemini-flash",
		DisplayName:  "Gemini 1.5 Flash",
		Description:  "Fast responses with good quality",
		Provider:     ProviderGoogle,
		ProviderName: "gemini-1.5-flash",
		BaseURL:      "https://generativelanguage.googleapis.com",
		Capabilities: []string{model.CapText, model.CapCode},
		Free:         true,
	},
	{
		ID:           "groq-llama",
		DisplayName:  "Llama 3.3 70B (Groq)",
		Description:  "Ultra-fast inference via Groq",
		Provider:     ProviderGroq,
		ProviderName: "llama-3.3-70b-versatile",
		BaseURL:      "https://api.groq.com/openai/v1",
		Capabilities: []string{model.CapText, model.CapCode},
		Free:         true,
	},
	{
		ID:           "groq-mixtral",
		DisplayName:  "Mixtral 8x7B (Groq)",
		Description:  "Efficient mixture of experts",
		Provider:     ProviderGroq,
		ProviderName: "mixtral-8x7b-32768",
		BaseURL:      "https://api.groq.com/openai/v1",
		Capabilities: []string{model.CapText, model.CapCode},
		Free:         true,
	},
	{
		ID:           "huggingface",
		DisplayName:  "Mistral 7B (HuggingFace)",
		Description:  "Fast open-source model",
		Provider:     ProviderHuggingFace,
		ProviderName: "mistralai/Mistral-7B-Instruct-v0.2",
		BaseURL:      "https://api-inference.huggingface.co",
		Capabilities: []string{model.CapText},
		Free:         true,
	},
}

// DefaultModelID is used when the caller selects nothing, or when routing
// falls back from an unknown id.
const DefaultModelID = "gemini"

// List returns the catalog in display order. Callers must not mutate it.
func List() []model.Model {
	return catalog
}

// Resolve finds a model by id.
func Resolve(id string) (model.Model, error) {
	for _, m := range catalog {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Model{}, domain.ErrUnknownModel
}

// Default returns the default model.
func Default() model.Model {
	m, _ := Resolve(DefaultModelID)
	return m
}
