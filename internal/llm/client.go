package llm

import (
	"context"
)

type Client interface {
	// Complete runs a chat completion with a system instruction and a single
	// user message, returning the raw completion text.
	Complete(ctx context.Context, system string, user string) (string, error)
}

type Embedder interface {
	// Embed returns a dense vector for text. dimensions is a hint for models
	// that support reduced output dimensionality; implementations may ignore it.
	Embed(ctx context.Context, text string, dimensions int) ([]float32, error)
}
