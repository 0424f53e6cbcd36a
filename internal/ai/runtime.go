package ai

import "context"

// Runtime is a backend that answers a chat request: OpenRouter, Gemini or a
// local Ollama daemon.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// StreamRuntime is implemented by runtimes that can stream partial output.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// Provider identifiers accepted by --provider and default_provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderOpenRouter: "google/gemini-2.5-flash",
	ProviderGemini:     "gemini-2.5-flash",
	ProviderOllama:     "llama3.1:8b",
}
