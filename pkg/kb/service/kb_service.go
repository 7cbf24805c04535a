package service

import (
	"context"

	"farmtech/entities"
)

// Hit is a retrieved chunk with its parent document's metadata.
type Hit struct {
	ChunkID   uint    `json:"chunk_id"`
	DocID     uint    `json:"doc_id"`
	Ord       int     `json:"ord"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	DocTitle  string  `json:"doc_title,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
}

type KBService interface {
	UpsertDocument(ctx context.Context, title, tags, text, sourceURL string) (*entities.KBDocument, int, error)
	Search(ctx context.Context, query string, k int) ([]Hit, error)
	ListDocs(ctx context.Context) ([]entities.KBDocument, error)
}
