package serviceImp

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmtech/pkg/ai"
	"farmtech/pkg/chatbot/service"
	kbservice "farmtech/pkg/kb/service"
	"farmtech/pkg/weather"
)

type fakeWeather struct {
	cur weather.Current
	err error
}

func (f fakeWeather) Get(context.Context) (weather.Current, error) { return f.cur, f.err }

type fakeKB struct {
	mu      sync.Mutex
	queries []string
	hits    []kbservice.Hit
}

func (f *fakeKB) Search(_ context.Context, q string, k int) ([]kbservice.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

type fakeLLM struct {
	mu           sync.Mutex
	prompt       string
	img          *ai.Image
	translated   string
	translateErr error
	generateErr  error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, img *ai.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt, f.img = prompt, img
	return "answer", f.generateErr
}

func (f *fakeLLM) Translate(_ context.Context, text, _ string) (string, error) {
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return f.translated, nil
}

var hits = []kbservice.Hit{{Text: "Spray neem oil."}, {Text: "Remove infected leaves."}, {Text: "Avoid overhead irrigation."}, {Text: "extra"}}

func TestChat_RetrievesContextAndWeather(t *testing.T) {
	kb := &fakeKB{hits: hits}
	llm := &fakeLLM{}
	svc := NewChatbotService(fakeWeather{cur: weather.Current{Temp: 29.5, Humidity: 85, Description: "haze", Rain: 1.2}}, kb, llm, "Pune", zap.NewNop())

	out, err := svc.Chat(context.Background(), service.ChatRequest{Message: "Leaf spots on tomato"})
	require.NoError(t, err)
	assert.Equal(t, "answer", out.Answer)
	assert.Equal(t, []string{"Spray neem oil.", "Remove infected leaves.", "Avoid overhead irrigation."}, out.Sources)
	assert.Equal(t, []string{"Leaf spots on tomato"}, kb.queries)

	assert.Contains(t, llm.prompt, "LIVE WEATHER CONTEXT (Pune)")
	assert.Contains(t, llm.prompt, "- Temp: 29.5°C")
	assert.Contains(t, llm.prompt, "- Humidity: 85%")
	assert.Contains(t, llm.prompt, "Farmer Question: Leaf spots on tomato")
	assert.Contains(t, llm.prompt, "Spray neem oil.\n\nRemove infected leaves.")
	assert.Nil(t, llm.img)
}

func TestChat_SmallTalkSkipsRetrieval(t *testing.T) {
	kb := &fakeKB{hits: hits}
	svc := NewChatbotService(fakeWeather{}, kb, &fakeLLM{}, "Pune", zap.NewNop())

	out, err := svc.Chat(context.Background(), service.ChatRequest{Message: "Hello there"})
	require.NoError(t, err)
	assert.Empty(t, out.Sources)
	assert.NotNil(t, out.Sources)
	assert.Empty(t, kb.queries)
}

func TestChat_TranslatesNonASCIIForRetrieval(t *testing.T) {
	kb := &fakeKB{}
	llm := &fakeLLM{translated: "when to sow wheat"}
	svc := NewChatbotService(fakeWeather{err: errors.New("down")}, kb, llm, "Pune", zap.NewNop())

	_, err := svc.Chat(context.Background(), service.ChatRequest{Message: "गेहूं कब बोएं"})
	require.NoError(t, err)
	assert.Equal(t, []string{"when to sow wheat"}, kb.queries)
	assert.Contains(t, llm.prompt, "Farmer Question: गेहूं कब बोएं")
	assert.Contains(t, llm.prompt, "- Temp: Unknown")
}

func TestChat_ImageOnly(t *testing.T) {
	kb := &fakeKB{hits: hits}
	llm := &fakeLLM{}
	svc := NewChatbotService(fakeWeather{}, kb, llm, "Pune", zap.NewNop())
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})

	out, err := svc.Chat(context.Background(), service.ChatRequest{Image: dataURL})
	require.NoError(t, err)
	assert.Empty(t, out.Sources)
	require.NotNil(t, llm.img)
	assert.Equal(t, "image/png", llm.img.MIME)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, llm.img.Data)
	assert.Contains(t, llm.prompt, "Please analyze this image.")
}

func TestChat_Errors(t *testing.T) {
	svc := NewChatbotService(fakeWeather{}, &fakeKB{}, &fakeLLM{}, "Pune", zap.NewNop())
	_, err := svc.Chat(context.Background(), service.ChatRequest{Message: "  "})
	assert.ErrorIs(t, err, service.ErrEmptyChat)

	_, err = svc.Chat(context.Background(), service.ChatRequest{Image: "https://example.org/a.png"})
	assert.ErrorIs(t, err, service.ErrInvalidImage)

	limited := &fakeLLM{translateErr: ai.ErrRateLimited}
	svc = NewChatbotService(fakeWeather{}, &fakeKB{}, limited, "Pune", zap.NewNop())
	_, err = svc.Chat(context.Background(), service.ChatRequest{Message: "पाणी"})
	assert.ErrorIs(t, err, ai.ErrRateLimited)
}

func TestParseDataURL(t *testing.T) {
	_, err := parseDataURL("data:text/plain;base64,aGk=")
	assert.ErrorIs(t, err, service.ErrInvalidImage)
	_, err = parseDataURL("data:image/png,raw")
	assert.ErrorIs(t, err, service.ErrInvalidImage)
	_, err = parseDataURL("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, service.ErrInvalidImage)

	img, err := parseDataURL("data:image/jpeg;base64,/9j/")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIME)
}

func TestIsSmallTalk(t *testing.T) {
	assert.True(t, isSmallTalk("  Namaste ji"))
	assert.True(t, isSmallTalk("thank you!"))
	assert.False(t, isSmallTalk("history of rice"))
	assert.False(t, isSmallTalk("which crop, hi"))
}
