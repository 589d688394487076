package llm

import "context"

// Provider is the capability interface for text generation backends.
// A provider is selected once at process configuration time and injected
// into the pipeline; it is never looked up per call.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
