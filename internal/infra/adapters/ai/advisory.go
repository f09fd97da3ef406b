package ai

import "nexus-ai-chat/internal/domain/ports/adapter"

// Setup guidance returned when a provider credential is absent. These are
// valid completions from the gateway's point of view (Advisory flag set),
// so the orchestration core's error path stays uniform and the UI is never
// left without a response.
const (
	geminiAdvisory = "⚠️ Gemini API key not configured. Please set ai.gemini_key in the config. " +
		"Get one free at https://makersuite.google.com/app/apikey"
	groqAdvisory = "⚠️ Groq API key not configured. Please set ai.groq_key to use Llama/Mixtral models. " +
		"Get one free at https://console.groq.com"
	huggingFaceAdvisory = "⚠️ HuggingFace API key not configured. Please set ai.huggingface_key. " +
		"Get one free at https://huggingface.co/settings/tokens"
)

func advisoryResult(text string) adapter.CompletionResult {
	return adapter.CompletionResult{Text: text, Advisory: true}
}
