package model

// Capability tags a model advertises.
const (
	CapText  = "text"
	CapImage = "image"
	CapCode  = "code"
)

// Model is one entry of the compiled-in provider catalog. Immutable after
// process start; selection is by ID.
type Model struct {
	ID           string
	DisplayName  string
	Description  string
	Provider     string // "google" | "groq" | "huggingface"
	ProviderName string // provider-side model name, e.g. "gemini-1.5-flash"
	BaseURL      string
	Capabilities []string
	Free         bool
}

func (m Model) Supports(cap string) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// GenParams are the generation parameters sent with a completion request.
type GenParams struct {
	Temperature float64
	TopK        int
	TopP        float64
	MaxTokens   int
}

// Presets matching the product's template picker.
var (
	ParamsDefault  = GenParams{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxTokens: 8192}
	ParamsCreative = GenParams{Temperature: 1.0, TopK: 40, TopP: 0.95, MaxTokens: 8192}
	ParamsPrecise  = GenParams{Temperature: 0.3, TopK: 20, TopP: 0.9, MaxTokens: 8192}
)
