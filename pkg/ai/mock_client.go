// pkg/ai/mock_client.go

package ai

import (
	"context"
	"fmt"
	"strings"
)

type mockClient struct{}

// NewMock answers without any network access. Used when no API key is set.
func NewMock() Client { return &mockClient{} }

func (m *mockClient) Generate(_ context.Context, prompt string, img *Image) (string, error) {
	q := questionOf(prompt)
	if img != nil {
		return fmt.Sprintf("(offline advisor) I received your photo (%s) and question: %q. Please check the leaves closely and consult your local Krishi Seva Kendra.", img.MIME, q), nil
	}
	return fmt.Sprintf("(offline advisor) You asked: %q. Irrigate early in the morning and follow the weather advisory above.", q), nil
}

func (m *mockClient) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// questionOf pulls the farmer's question out of a chatbot prompt.
func questionOf(prompt string) string {
	const marker = "Farmer Question:"
	i := strings.Index(prompt, marker)
	if i < 0 {
		return strings.TrimSpace(prompt)
	}
	rest := prompt[i+len(marker):]
	if j := strings.Index(rest, "\n\n"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
