// Package llm holds the text-generation collaborator: the client contract,
// the OpenAI adapter, the prompts, and the parsing/normalization applied to
// whatever the model sends back. Nothing in here touches the tree store.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client generates a text completion for a prompt. Implementations are
// expected to be slow and to fail; callers own retries and deadlines.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a function to the Client interface. Used by tests to
// inject deterministic fakes.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
