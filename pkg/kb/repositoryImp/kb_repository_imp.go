package repositoryImp

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"farmtech/entities"
	"farmtech/pkg/kb/repository"
)

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.KBRepository { return &repo{db} }

// CreateDoc and BulkInsertChunks are separate calls; the service writes the
// document first so chunks can reference its id.
func (r *repo) CreateDoc(ctx context.Context, d *entities.KBDocument) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create kb document: %w", err)
	}
	return nil
}

func (r *repo) BulkInsertChunks(ctx context.Context, cs []entities.KBChunk) error {
	if len(cs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&cs, 100).Error; err != nil {
		return fmt.Errorf("insert kb chunks: %w", err)
	}
	return nil
}

func (r *repo) ListDocs(ctx context.Context) ([]entities.KBDocument, error) {
	var ds []entities.KBDocument
	return ds, r.db.WithContext(ctx).Order("doc_id DESC").Find(&ds).Error
}

func (r *repo) AllChunks(ctx context.Context) ([]entities.KBChunk, error) {
	var cs []entities.KBChunk
	return cs, r.db.WithContext(ctx).Order("doc_id, ord").Find(&cs).Error
}

func (r *repo) DocsByIDs(ctx context.Context, ids []uint) (map[uint]entities.KBDocument, error) {
	if len(ids) == 0 {
		return map[uint]entities.KBDocument{}, nil
	}
	var ds []entities.KBDocument
	if err := r.db.WithContext(ctx).Where("doc_id IN ?", ids).Find(&ds).Error; err != nil {
		return nil, err
	}
	m := make(map[uint]entities.KBDocument, len(ds))
	for i := range ds {
		m[ds[i].DocID] = ds[i]
	}
	return m, nil
}
