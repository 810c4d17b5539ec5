package llm

import (
	"context"
	"fmt"
)

// Response carries the generated text plus token accounting when the
// provider reports it.
type Response struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Provider is implemented by language-model clients. Generate sends one
// system/user prompt pair and returns the completion.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error)
}

// SynthesisError wraps a provider failure. Unlike search and scrape
// failures it is terminal for a research request.
type SynthesisError struct {
	Model string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis with %s: %v", e.Model, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
