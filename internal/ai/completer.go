// Package ai wraps the text-completion providers used to draft product descriptions.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single-turn completion with an optional system message.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Completer produces text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// UpstreamError is a non-success answer from the provider. Details carries the provider's
// error payload, decoded when it was JSON.
type UpstreamError struct {
	Provider string
	Status   int
	Details  any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai: %s returned status %d", e.Provider, e.Status)
}
