package serviceImp

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farmtech/pkg/ai"
	"farmtech/pkg/chatbot/service"
	kbservice "farmtech/pkg/kb/service"
	"farmtech/pkg/weather"
)

const contextChunks = 3

// WeatherSource is satisfied by *weather.CurrentCache.
type WeatherSource interface {
	Get(ctx context.Context) (weather.Current, error)
}

// Retriever is satisfied by the knowledge-base service.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]kbservice.Hit, error)
}

type chatbotSvc struct {
	weather WeatherSource
	kb      Retriever
	llm     ai.Client
	city    string
	log     *zap.Logger
}

func NewChatbotService(w WeatherSource, kb Retriever, llm ai.Client, city string, log *zap.Logger) service.ChatbotService {
	return &chatbotSvc{weather: w, kb: kb, llm: llm, city: city, log: log.Named("chatbot")}
}

func (s *chatbotSvc) Weather(ctx context.Context) (weather.Current, error) {
	return s.weather.Get(ctx)
}

func (s *chatbotSvc) Chat(ctx context.Context, req service.ChatRequest) (*service.ChatAnswer, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" && strings.TrimSpace(req.Image) == "" {
		return nil, service.ErrEmptyChat
	}
	var img *ai.Image
	if strings.TrimSpace(req.Image) != "" {
		var err error
		if img, err = parseDataURL(req.Image); err != nil {
			return nil, err
		}
	}
	s.log.Info("chat query", zap.Int("chars", len(msg)), zap.Bool("image", img != nil))

	// weather is best effort; translation failures abort the request
	var cur *weather.Current
	query := msg
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := s.weather.Get(gctx)
		if err != nil {
			s.log.Warn("weather unavailable for prompt", zap.Error(err))
			return nil
		}
		cur = &w
		return nil
	})
	if msg != "" && hasNonASCII(msg) {
		g.Go(func() error {
			en, err := s.llm.Translate(gctx, msg, "standard English")
			if err != nil {
				return err
			}
			query = en
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sources := []string{}
	var kbContext string
	if query != "" && !(img == nil && isSmallTalk(query)) {
		hits, err := s.kb.Search(ctx, query, contextChunks)
		if err != nil {
			s.log.Warn("knowledge base search failed", zap.Error(err))
		}
		for _, h := range hits {
			sources = append(sources, h.Text)
		}
		kbContext = strings.Join(sources, "\n\n")
	}

	answer, err := s.llm.Generate(ctx, buildPrompt(s.city, cur, msg, kbContext), img)
	if err != nil {
		return nil, err
	}
	return &service.ChatAnswer{Answer: answer, Sources: sources}, nil
}
