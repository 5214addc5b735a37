package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Stream sends a completion request and returns a stream of response
	// fragments. The stream is finite and cannot be restarted.
	Stream(ctx context.Context, req CompletionRequest) (Stream, error)
	// Name returns the name of this provider.
	Name() string
}

// Stream yields completion text fragments in arrival order. Recv returns
// io.EOF once the response is complete.
type Stream interface {
	Recv() (string, error)
	Close() error
}
