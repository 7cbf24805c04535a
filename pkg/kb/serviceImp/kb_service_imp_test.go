package serviceImp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmtech/entities"
	"farmtech/pkg/kb/repositoryImp"
)

// wordEmbedder maps each text onto counts of a fixed vocabulary.
type wordEmbedder struct {
	vocab []string
	err   error
	calls int
}

func (w *wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(w.vocab))
		low := strings.ToLower(t)
		for j, word := range w.vocab {
			v[j] = float32(strings.Count(low, word))
		}
		out[i] = v
	}
	return out, nil
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entities.KBDocument{}, &entities.KBChunk{}))
	return db
}

func TestChunkText_SplitsAtNewlineAfterLimit(t *testing.T) {
	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 3) + "\nccc"
	got := chunkText(text, 5)
	assert.Equal(t, []string{"aaaaaaaa", "bbb\nccc"}, got)

	assert.Empty(t, chunkText("  \n ", 5))
	assert.Equal(t, []string{"short"}, chunkText("short", 0))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestSearch_RanksByVector(t *testing.T) {
	ctx := context.Background()
	emb := &wordEmbedder{vocab: []string{"rice", "wheat", "pest"}}
	svc := New(repositoryImp.New(newDB(t)), emb, nil, zap.NewNop())

	_, n, err := svc.UpsertDocument(ctx, "Rice guide", "rice", "Rice needs standing water. Transplant rice seedlings.", "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, _, err = svc.UpsertDocument(ctx, "Wheat guide", "wheat", "Sow wheat in November. Wheat rust is a pest issue.", "https://example.org/wheat")
	require.NoError(t, err)

	hits, err := svc.Search(ctx, "when to sow wheat", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Wheat guide", hits[0].DocTitle)
	assert.Equal(t, "https://example.org/wheat", hits[0].SourceURL)
	assert.Greater(t, hits[0].Score, 0.5)
}

func TestSearch_KeywordFallbackWhenEmbeddingFails(t *testing.T) {
	ctx := context.Background()
	emb := &wordEmbedder{err: errors.New("quota")}
	svc := New(repositoryImp.New(newDB(t)), emb, nil, zap.NewNop())

	_, _, err := svc.UpsertDocument(ctx, "Drip", "", "Drip irrigation saves water on sugarcane.", "")
	require.NoError(t, err)
	_, _, err = svc.UpsertDocument(ctx, "Soil", "", "Black cotton soil holds moisture.", "")
	require.NoError(t, err)

	hits, err := svc.Search(ctx, "Sugarcane irrigation", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Drip", hits[0].DocTitle)

	hits, err = svc.Search(ctx, "drip irrigation", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1.0, hits[0].Score)

	hits, err = svc.Search(ctx, "tractor", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_NoEmbedder(t *testing.T) {
	ctx := context.Background()
	svc := New(repositoryImp.New(newDB(t)), nil, nil, zap.NewNop())
	_, _, err := svc.UpsertDocument(ctx, "Neem", "", "Neem oil spray controls aphids.", "")
	require.NoError(t, err)

	hits, err := svc.Search(ctx, "aphids", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = svc.Search(ctx, "  ", 3)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestUpsertDocument_RequiresContent(t *testing.T) {
	svc := New(repositoryImp.New(newDB(t)), nil, nil, zap.NewNop())
	_, _, err := svc.UpsertDocument(context.Background(), "t", "", " ", "")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
