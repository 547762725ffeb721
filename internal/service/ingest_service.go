package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xxxsen/knowbase/internal/model"
	appErr "github.com/xxxsen/knowbase/internal/pkg/errors"
	"github.com/xxxsen/knowbase/internal/search"
)

// PageFetcher is the soft-failing page retrieval contract: ok=false means the
// URL yielded nothing usable, whatever the underlying reason.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, bool)
}

// KnowledgeStorer is the slice of KnowledgeService the ingestion pipeline
// needs.
type KnowledgeStorer interface {
	EmbedAndStore(ctx context.Context, text, entity, slot, knowledgeType string) (*model.KnowledgeDocument, error)
}

type IngestOptions struct {
	MaxTextChars int
	Workers      int
	PaceInterval time.Duration
}

// IngestService turns web pages into bounded text units and optionally
// persists them as knowledge. Per-URL work runs on a fixed-size worker pool;
// a shared limiter keeps a minimum spacing between external calls so upstream
// rate limits are respected even with concurrency.
type IngestService struct {
	searcher  search.Searcher
	fetcher   PageFetcher
	knowledge KnowledgeStorer
	maxChars  int
	workers   int
	limiter   *rate.Limiter
}

func NewIngestService(searcher search.Searcher, fetcher PageFetcher, knowledge KnowledgeStorer, opts IngestOptions) *IngestService {
	if opts.MaxTextChars <= 0 {
		opts.MaxTextChars = 20000
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.PaceInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PaceInterval), 1)
	}
	return &IngestService{
		searcher:  searcher,
		fetcher:   fetcher,
		knowledge: knowledge,
		maxChars:  opts.MaxTextChars,
		workers:   opts.Workers,
		limiter:   limiter,
	}
}

// IngestQuery searches for candidate URLs and runs the scrape pipeline over
// them. A search that yields nothing is fatal to this call; everything after
// that is per-URL best effort.
func (s *IngestService) IngestQuery(ctx context.Context, query string, k int, store bool) (*model.IngestResult, error) {
	urls, err := s.searcher.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrNoSearchResults, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: query %q", appErr.ErrNoSearchResults, query)
	}
	return s.ScrapeURLs(ctx, query, urls, store), nil
}

// ScrapeURLs fetches every URL and optionally embeds and stores the surviving
// texts. Each URL's outcome is independent data in the result; one bad URL or
// one failed store call never aborts the batch.
func (s *IngestService) ScrapeURLs(ctx context.Context, query string, urls []string, store bool) *model.IngestResult {
	items := make([]model.IngestItem, len(urls))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := s.workers
	if workers > len(urls) {
		workers = len(urls)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				items[idx] = s.processURL(ctx, query, urls[idx], store)
			}
		}()
	}
	for idx := range urls {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	result := &model.IngestResult{
		Query:     query,
		URLs:      urls,
		Documents: items,
	}
	for _, item := range items {
		if item.FetchError == "" {
			result.Fetched++
		}
		if item.Stored {
			result.Stored++
		}
	}
	logutil.GetLogger(ctx).Info("ingestion finished",
		zap.String("query", query),
		zap.Int("urls", len(urls)),
		zap.Int("fetched", result.Fetched),
		zap.Int("stored", result.Stored),
	)
	return result
}

func (s *IngestService) processURL(ctx context.Context, query, url string, store bool) model.IngestItem {
	item := model.IngestItem{URL: url}
	if err := s.limiter.Wait(ctx); err != nil {
		item.FetchError = err.Error()
		return item
	}
	text, ok := s.fetcher.FetchText(ctx, url)
	if !ok {
		item.FetchError = "no usable content"
		return item
	}
	item.Text = truncateChars(text, s.maxChars)
	if !store {
		return item
	}
	if _, err := s.knowledge.EmbedAndStore(ctx, item.Text, query, "", KnowledgeTypeScraped); err != nil {
		logutil.GetLogger(ctx).Warn("store scraped content failed", zap.String("url", url), zap.Error(err))
		item.StoreError = err.Error()
		return item
	}
	item.Stored = true
	return item
}

// truncateChars caps text at max characters (runes, not bytes) as a hard
// safety bound against unbounded page payloads.
func truncateChars(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
