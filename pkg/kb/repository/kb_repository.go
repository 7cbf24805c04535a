package repository

import (
	"context"

	"farmtech/entities"
)

type KBRepository interface {
	CreateDoc(ctx context.Context, d *entities.KBDocument) error
	BulkInsertChunks(ctx context.Context, cs []entities.KBChunk) error
	ListDocs(ctx context.Context) ([]entities.KBDocument, error)
	AllChunks(ctx context.Context) ([]entities.KBChunk, error)
	DocsByIDs(ctx context.Context, ids []uint) (map[uint]entities.KBDocument, error)
}
