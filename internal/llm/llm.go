// Package llm is the boundary to the text-generation model.
//
// The rest of the program only sees the Completer interface, so the model can
// be swapped (any OpenAI-compatible server: OpenAI, vLLM, Ollama, LM Studio)
// or faked in tests.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single-prompt completion request.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}
