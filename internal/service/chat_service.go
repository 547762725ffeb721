package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/knowbase/internal/ai"
	"github.com/xxxsen/knowbase/internal/model"
	appErr "github.com/xxxsen/knowbase/internal/pkg/errors"
)

const systemPrompt = "You are a product and shopping Q&A assistant. " +
	"Answer using only the information in the provided context. " +
	"If the context does not contain the answer, say the information is insufficient."

// The llm route reuses the RAG prompt template with this marker instead of a
// neutral prompt, so the model behaves consistently on both routes.
const noContextMarker = "No information provided."

// ChatLogStore records answered questions and serves the audit trail back.
type ChatLogStore interface {
	Append(ctx context.Context, entry *model.ChatLogEntry) error
	ListRecent(ctx context.Context, limit uint) ([]model.ChatLogEntry, error)
}

type ChatService struct {
	embedder  ai.IEmbedder
	generator ai.IGenerator
	store     KnowledgeStore
	logs      ChatLogStore
	topK      int
	timeout   time.Duration
	embCache  *expirable.LRU[string, []float32]
}

func NewChatService(embedder ai.IEmbedder, generator ai.IGenerator, store KnowledgeStore, logs ChatLogStore, topK int, timeout time.Duration) *ChatService {
	if topK <= 0 {
		topK = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatService{
		embedder:  embedder,
		generator: generator,
		store:     store,
		logs:      logs,
		topK:      topK,
		timeout:   timeout,
		embCache:  expirable.NewLRU[string, []float32](4096, nil, 2*time.Hour),
	}
}

// DecideRoute is the whole routing policy: trust retrieved evidence iff the
// best match clears the threshold. Equality counts as rag.
func DecideRoute(topScore, threshold float64) string {
	if topScore >= threshold {
		return model.RouteRAG
	}
	return model.RouteLLM
}

// TopScore returns the score of the best hit, or 0 for an empty result.
// Hits arrive ordered best-first from the store.
func TopScore(hits []model.RetrievalHit) float64 {
	if len(hits) == 0 {
		return 0
	}
	return hits[0].Score
}

// Answer is the always-RAG baseline: whatever retrieval found is used as
// context, even an empty list, and the log carries no route label.
func (s *ChatService) Answer(ctx context.Context, question string) (string, []model.RetrievalHit, error) {
	hits, err := s.retrieve(ctx, question)
	if err != nil {
		return "", nil, err
	}
	answer, err := s.complete(ctx, hits, question)
	if err != nil {
		return "", nil, err
	}
	if err := s.appendLog(ctx, question, answer, "", hits); err != nil {
		return "", nil, err
	}
	return answer, hits, nil
}

// RouteAndAnswer layers the threshold policy on top of Answer: when the best
// hit scores below threshold the context is replaced by an explicit
// no-information marker and the log records that no evidence was used, even
// though a retrieval happened.
func (s *ChatService) RouteAndAnswer(ctx context.Context, question string, threshold float64) (string, []model.RetrievalHit, string, error) {
	hits, err := s.retrieve(ctx, question)
	if err != nil {
		return "", nil, "", err
	}
	route := DecideRoute(TopScore(hits), threshold)
	used := hits
	if route == model.RouteLLM {
		used = nil
	}
	logutil.GetLogger(ctx).Info("query routed",
		zap.String("route", route),
		zap.Float64("top_score", TopScore(hits)),
		zap.Float64("threshold", threshold),
		zap.Int("retrieved", len(hits)),
	)
	answer, err := s.complete(ctx, used, question)
	if err != nil {
		return "", nil, "", err
	}
	if err := s.appendLog(ctx, question, answer, route, used); err != nil {
		return "", nil, "", err
	}
	if used == nil {
		used = []model.RetrievalHit{}
	}
	return answer, used, route, nil
}

// RecentLogs returns the newest audit entries, most recent first.
func (s *ChatService) RecentLogs(ctx context.Context, limit uint) ([]model.ChatLogEntry, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	if entries == nil {
		entries = []model.ChatLogEntry{}
	}
	return entries, nil
}

func (s *ChatService) retrieve(ctx context.Context, question string) ([]model.RetrievalHit, error) {
	vector, err := s.embedQuestion(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbedding, err)
	}
	hits, err := s.store.SimilaritySearch(ctx, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	return hits, nil
}

func (s *ChatService) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	key := cacheKey(s.embedder.ModelName(), question)
	if vector, ok := s.embCache.Get(key); ok {
		return vector, nil
	}
	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	vector, err := s.embedder.Embed(embedCtx, question)
	if err != nil {
		return nil, err
	}
	s.embCache.Add(key, vector)
	return vector, nil
}

func (s *ChatService) complete(ctx context.Context, hits []model.RetrievalHit, question string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	answer, err := s.generator.Generate(genCtx, systemPrompt, BuildUserPrompt(hits, question))
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrCompletion, err)
	}
	return answer, nil
}

func (s *ChatService) appendLog(ctx context.Context, question, answer, route string, used []model.RetrievalHit) error {
	entry := &model.ChatLogEntry{
		Question:           question,
		Answer:             answer,
		Route:              route,
		RetrievedDocuments: used,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return fmt.Errorf("%w: chat log: %v", appErr.ErrStorage, err)
	}
	return nil
}

// BuildUserPrompt renders the context block (one hit per line, score order)
// followed by the question. With no hits the context is the explicit
// no-information marker rather than an empty block.
func BuildUserPrompt(hits []model.RetrievalHit, question string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	if len(hits) == 0 {
		sb.WriteString(noContextMarker)
		sb.WriteString("\n")
	} else {
		for _, hit := range hits {
			sb.WriteString("- ")
			sb.WriteString(hit.Text)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return hex.EncodeToString(sum[:])
}
