package serviceImp

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"farmtech/entities"
	"farmtech/pkg/kb/embedder"
	"farmtech/pkg/kb/repository"
	"farmtech/pkg/kb/service"
)

const chunkRunes = 1000

var ErrEmptyDocument = errors.New("title and text are required")

type Svc struct {
	r     repository.KBRepository
	docs  embedder.Embedder
	query embedder.Embedder
	log   *zap.Logger
}

// New builds the knowledge-base service. Either embedder may be nil, in
// which case search falls back to keyword matching. A nil query embedder
// reuses the document one.
func New(r repository.KBRepository, docs, query embedder.Embedder, log *zap.Logger) service.KBService {
	if query == nil {
		query = docs
	}
	return &Svc{r: r, docs: docs, query: query, log: log.Named("kb")}
}

// chunkText splits at the first newline after maxRunes runes.
func chunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = chunkRunes
	}
	parts := []string{}
	cur := strings.Builder{}
	count := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		count = 0
	}
	for _, r := range text {
		cur.WriteRune(r)
		count++
		if count >= maxRunes && r == '\n' {
			flush()
		}
	}
	flush()
	return parts
}

func (s *Svc) UpsertDocument(ctx context.Context, title, tags, text, sourceURL string) (*entities.KBDocument, int, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(text) == "" {
		return nil, 0, ErrEmptyDocument
	}
	d := &entities.KBDocument{Title: title, Tags: tags, SourceURL: sourceURL}
	if err := s.r.CreateDoc(ctx, d); err != nil {
		return nil, 0, err
	}

	chs := chunkText(text, chunkRunes)
	var embs [][]float32
	if s.docs != nil {
		var err error
		if embs, err = s.docs.Embed(ctx, chs); err != nil {
			s.log.Warn("embedding failed, storing chunks without vectors", zap.Uint("doc_id", d.DocID), zap.Error(err))
			embs = nil
		}
	}

	rows := make([]entities.KBChunk, len(chs))
	for i := range chs {
		rows[i] = entities.KBChunk{DocID: d.DocID, Ord: i, Text: chs[i]}
		if i < len(embs) {
			rows[i].Embedding = embedder.FloatsToBytes(embs[i])
		}
	}
	if err := s.r.BulkInsertChunks(ctx, rows); err != nil {
		return nil, 0, err
	}
	return d, len(rows), nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// keywordScore is 1 for a full-phrase match, otherwise the share of query
// terms present in the chunk.
func keywordScore(q string, qTerms []string, text string) float64 {
	low := strings.ToLower(text)
	if strings.Contains(low, q) {
		return 1
	}
	if len(qTerms) == 0 {
		return 0
	}
	hit := 0
	for _, t := range qTerms {
		if strings.Contains(low, t) {
			hit++
		}
	}
	return float64(hit) / float64(len(qTerms)+1)
}

func (s *Svc) Search(ctx context.Context, query string, k int) ([]service.Hit, error) {
	q := strings.TrimSpace(query)
	if q == "" || k <= 0 {
		return nil, nil
	}

	var qvec []float32
	if s.query != nil {
		vec, err := s.query.Embed(ctx, []string{q})
		switch {
		case err != nil:
			s.log.Warn("query embedding failed, using keyword search", zap.Error(err))
		case len(vec) > 0:
			qvec = vec[0]
		}
	}

	chunks, err := s.r.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		ch entities.KBChunk
		sc float64
	}
	list := make([]scored, 0, len(chunks))
	if len(qvec) > 0 {
		for _, ch := range chunks {
			v := embedder.BytesToFloats(ch.Embedding)
			if len(v) != len(qvec) {
				continue
			}
			list = append(list, scored{ch, cosine(qvec, v)})
		}
	}
	if len(list) == 0 {
		qlow, qTerms := strings.ToLower(q), terms(q)
		for _, ch := range chunks {
			if sc := keywordScore(qlow, qTerms, ch.Text); sc > 0 {
				list = append(list, scored{ch, sc})
			}
		}
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].sc > list[j].sc })
	if k > len(list) {
		k = len(list)
	}
	list = list[:k]

	seen := map[uint]struct{}{}
	ids := make([]uint, 0, k)
	for _, it := range list {
		if _, ok := seen[it.ch.DocID]; !ok {
			seen[it.ch.DocID] = struct{}{}
			ids = append(ids, it.ch.DocID)
		}
	}
	meta, err := s.r.DocsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]service.Hit, 0, k)
	for _, it := range list {
		h := service.Hit{ChunkID: it.ch.ChunkID, DocID: it.ch.DocID, Ord: it.ch.Ord, Text: it.ch.Text, Score: it.sc}
		if d, ok := meta[it.ch.DocID]; ok {
			h.DocTitle = d.Title
			h.SourceURL = d.SourceURL
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *Svc) ListDocs(ctx context.Context) ([]entities.KBDocument, error) {
	return s.r.ListDocs(ctx)
}
