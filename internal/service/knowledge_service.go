package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/knowbase/internal/ai"
	"github.com/xxxsen/knowbase/internal/model"
	appErr "github.com/xxxsen/knowbase/internal/pkg/errors"
)

// KnowledgeTypeScraped tags documents produced by the ingestion pipeline.
const KnowledgeTypeScraped = "scraped_web_content"

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// KnowledgeStore is the persistence contract the services need: insert with a
// store-assigned id, top-K vector similarity, newest-first listing and
// idempotent delete.
type KnowledgeStore interface {
	Insert(ctx context.Context, doc *model.KnowledgeDocument) (string, error)
	SimilaritySearch(ctx context.Context, vector []float32, limit int) ([]model.RetrievalHit, error)
	ListRecent(ctx context.Context, limit uint) ([]model.KnowledgeDocument, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type KnowledgeService struct {
	store    KnowledgeStore
	embedder ai.IEmbedder
	timeout  time.Duration
}

func NewKnowledgeService(store KnowledgeStore, embedder ai.IEmbedder, timeout time.Duration) *KnowledgeService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KnowledgeService{store: store, embedder: embedder, timeout: timeout}
}

// EmbedAndStore embeds text and inserts the resulting document in one shot.
// The document is fully built before the single insert call, so a failure
// leaves nothing behind.
func (s *KnowledgeService) EmbedAndStore(ctx context.Context, text, entity, slot, knowledgeType string) (*model.KnowledgeDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", appErr.ErrInvalid)
	}
	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	vector, err := s.embedder.Embed(embedCtx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbedding, err)
	}
	doc := &model.KnowledgeDocument{
		Text:          text,
		Entity:        entity,
		Slot:          slot,
		KnowledgeType: knowledgeType,
		Embedding:     vector,
	}
	if _, err := s.store.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	logutil.GetLogger(ctx).Info("knowledge stored",
		zap.String("id", doc.ID),
		zap.String("type", knowledgeType),
		zap.Int("chars", len(text)),
	)
	return doc, nil
}

func (s *KnowledgeService) ListRecent(ctx context.Context, limit uint) ([]model.KnowledgeDocument, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	docs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	if docs == nil {
		docs = []model.KnowledgeDocument{}
	}
	return docs, nil
}

// Delete removes one document. Deleting an id that does not exist is reported
// as ErrNotFound, never as a storage failure, so repeated deletes are safe.
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	found, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	if !found {
		return fmt.Errorf("%w: document %s", appErr.ErrNotFound, id)
	}
	logutil.GetLogger(ctx).Info("knowledge deleted", zap.String("id", id))
	return nil
}
