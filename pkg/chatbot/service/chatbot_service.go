package service

import (
	"context"
	"errors"

	"farmtech/pkg/weather"
)

var (
	ErrEmptyChat    = errors.New("chatbot: message or image is required")
	ErrInvalidImage = errors.New("chatbot: image must be a base64 data URL")
)

type ChatRequest struct {
	Message string `json:"message"`
	Image   string `json:"image"`
}

type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type ChatbotService interface {
	Weather(ctx context.Context) (weather.Current, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatAnswer, error)
}
