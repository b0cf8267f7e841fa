package llm

import "context"

// Provider generates wiki answers from a chat-style prompt. Implementations
// wrap one upstream model API and are safe for concurrent use.
type Provider interface {
	// Complete runs one completion round trip.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the provider in logs and errors.
	Name() string
}
