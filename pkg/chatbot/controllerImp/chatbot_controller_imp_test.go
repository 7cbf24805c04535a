package controllerImp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmtech/pkg/ai"
	"farmtech/pkg/chatbot/service"
	"farmtech/pkg/weather"
)

type stubSvc struct {
	cur     weather.Current
	err     error
	answer  *service.ChatAnswer
	chatErr error
}

func (s stubSvc) Weather(context.Context) (weather.Current, error) { return s.cur, s.err }

func (s stubSvc) Chat(context.Context, service.ChatRequest) (*service.ChatAnswer, error) {
	return s.answer, s.chatErr
}

func serve(t *testing.T, svc service.ChatbotService, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	ctrl := NewChatbotController(svc, zap.NewNop())
	e.GET("/weather", ctrl.Weather)
	e.POST("/chat", ctrl.Chat, middleware.BodyLimit("1K"))

	target := "/weather"
	if method == http.MethodPost {
		target = "/chat"
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWeather(t *testing.T) {
	rec := serve(t, stubSvc{cur: weather.Current{Temp: 31, Humidity: 40, Description: "clear sky"}}, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"temp":31,"humidity":40,"description":"clear sky","rain":0}`, rec.Body.String())

	rec = serve(t, stubSvc{err: errors.New("boom")}, http.MethodGet, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Could not fetch weather"}`, rec.Body.String())
}

func TestChat_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{service.ErrEmptyChat, http.StatusBadRequest, "Message or image is required"},
		{service.ErrInvalidImage, http.StatusBadRequest, "Image must be a base64 data URL"},
		{fmt.Errorf("translate: %w", ai.ErrRateLimited), http.StatusTooManyRequests, "AI Limit reached. Please wait a moment."},
		{errors.New("boom"), http.StatusInternalServerError, "Something went wrong on the server."},
	}
	for _, tc := range cases {
		rec := serve(t, stubSvc{chatErr: tc.err}, http.MethodPost, `{"message":"hi"}`)
		assert.Equal(t, tc.code, rec.Code)
		assert.JSONEq(t, `{"error":"`+tc.msg+`"}`, rec.Body.String())
	}
}

func TestChat_OK(t *testing.T) {
	rec := serve(t, stubSvc{answer: &service.ChatAnswer{Answer: "Irrigate tonight", Sources: []string{}}}, http.MethodPost, `{"message":"when to water?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Irrigate tonight","sources":[]}`, rec.Body.String())
}

func TestChat_TooLarge(t *testing.T) {
	body := `{"message":"x","image":"data:image/png;base64,` + strings.Repeat("A", 2048) + `"}`
	rec := serve(t, stubSvc{}, http.MethodPost, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
