// pkg/ai/client.go

package ai

import (
	"context"
	"errors"
)

// ErrRateLimited is returned when the model provider throttles the caller.
var ErrRateLimited = errors.New("ai: rate limited")

// Image is an inline attachment sent alongside a prompt.
type Image struct {
	MIME string
	Data []byte
}

type Client interface {
	// Generate answers a prompt, optionally grounded on an attached image.
	Generate(ctx context.Context, prompt string, img *Image) (string, error)

	// Translate returns text rendered in the target language; text already in
	// that language comes back unchanged.
	Translate(ctx context.Context, text, target string) (string, error)
}
