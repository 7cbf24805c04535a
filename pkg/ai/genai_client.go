package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGenAI wraps a shared Gemini client. The same *genai.Client also backs
// the knowledge-base embedder.
func NewGenAI(client *genai.Client, model string) Client {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiClient{client: client, model: model}
}

// NewGenAIClient creates the underlying SDK client for the Gemini API.
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return c, nil
}

func (g *geminiClient) Generate(ctx context.Context, prompt string, img *Image) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if img != nil {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIME))
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", mapError(err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *geminiClient) Translate(ctx context.Context, text, target string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text to %s. Reply with the translation only.\n\n%s", target, text)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", mapError(err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return text, nil
	}
	return out, nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErrPtr.Message)
	}
	return fmt.Errorf("generate content: %w", err)
}
