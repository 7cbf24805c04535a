package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmtech/pkg/ai"
	"farmtech/pkg/chatbot/controller"
	"farmtech/pkg/chatbot/service"
)

type chatbotCtrl struct {
	svc service.ChatbotService
	log *zap.Logger
}

func NewChatbotController(svc service.ChatbotService, log *zap.Logger) controller.ChatbotController {
	return &chatbotCtrl{svc: svc, log: log.Named("chatbot")}
}

// GET /api/chatbot/weather
func (h *chatbotCtrl) Weather(c echo.Context) error {
	w, err := h.svc.Weather(c.Request().Context())
	if err != nil {
		h.log.Error("weather lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not fetch weather"})
	}
	return c.JSON(http.StatusOK, w)
}

// POST /api/chatbot/chat
func (h *chatbotCtrl) Chat(c echo.Context) error {
	var req service.ChatRequest
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": TooLargeMessage})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	out, err := h.svc.Chat(c.Request().Context(), req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, out)
	case errors.Is(err, service.ErrEmptyChat):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message or image is required"})
	case errors.Is(err, service.ErrInvalidImage):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image must be a base64 data URL"})
	case errors.Is(err, ai.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "AI Limit reached. Please wait a moment."})
	}
	h.log.Error("chat failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong on the server."})
}

// TooLargeMessage is also used by the router's error handler for oversized bodies.
const TooLargeMessage = "Image file is too large. Please upload a smaller picture."
