package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/knowbase/internal/model"
	appErr "github.com/xxxsen/knowbase/internal/pkg/errors"
)

type fakeSearcher struct {
	urls []string
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, k int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.urls) {
		return f.urls[:k], nil
	}
	return f.urls, nil
}

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string) (string, bool) {
	text, ok := f.pages[url]
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

type fakeStorer struct {
	mu     sync.Mutex
	stored []string
	failOn string
}

func (f *fakeStorer) EmbedAndStore(ctx context.Context, text, entity, slot, knowledgeType string) (*model.KnowledgeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.HasPrefix(text, f.failOn) {
		return nil, errors.New("embed exploded")
	}
	f.stored = append(f.stored, text)
	return &model.KnowledgeDocument{ID: "id", Text: text, Entity: entity, KnowledgeType: knowledgeType}, nil
}

func newTestIngestService(searcher *fakeSearcher, fetcher *fakeFetcher, storer *fakeStorer) *IngestService {
	return NewIngestService(searcher, fetcher, storer, IngestOptions{Workers: 2})
}

func TestIngestQueryNoResults(t *testing.T) {
	svc := newTestIngestService(&fakeSearcher{}, &fakeFetcher{}, &fakeStorer{})
	_, err := svc.IngestQuery(context.Background(), "nothing", 5, false)
	require.ErrorIs(t, err, appErr.ErrNoSearchResults)
}

func TestIngestQuerySearchError(t *testing.T) {
	svc := newTestIngestService(&fakeSearcher{err: errors.New("blocked")}, &fakeFetcher{}, &fakeStorer{})
	_, err := svc.IngestQuery(context.Background(), "q", 5, false)
	require.ErrorIs(t, err, appErr.ErrNoSearchResults)
}

func TestIngestQueryPartialFetchFailure(t *testing.T) {
	searcher := &fakeSearcher{urls: []string{"http://a", "http://b", "http://c"}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://a": "alpha text",
		"http://c": "gamma text",
	}}
	svc := newTestIngestService(searcher, fetcher, &fakeStorer{})

	result, err := svc.IngestQuery(context.Background(), "q", 5, false)
	require.NoError(t, err)
	require.Equal(t, 2, result.Fetched)
	require.Equal(t, 0, result.Stored)
	require.Len(t, result.Documents, 3)

	// per-URL outcomes stay in input order
	require.Equal(t, "http://a", result.Documents[0].URL)
	require.Equal(t, "alpha text", result.Documents[0].Text)
	require.Equal(t, "http://b", result.Documents[1].URL)
	require.NotEmpty(t, result.Documents[1].FetchError)
	require.Equal(t, "http://c", result.Documents[2].URL)
	require.Equal(t, "gamma text", result.Documents[2].Text)
}

func TestScrapeURLsStoreFalseNeverStores(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"http://a": "text"}}
	storer := &fakeStorer{}
	svc := newTestIngestService(&fakeSearcher{}, fetcher, storer)

	result := svc.ScrapeURLs(context.Background(), "q", []string{"http://a"}, false)
	require.Equal(t, 1, result.Fetched)
	require.Equal(t, 0, result.Stored)
	require.Empty(t, storer.stored)
	require.False(t, result.Documents[0].Stored)
}

func TestScrapeURLsStoresWithQueryEntity(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"http://a": "text"}}
	storer := &fakeStorer{}
	svc := newTestIngestService(&fakeSearcher{}, fetcher, storer)

	result := svc.ScrapeURLs(context.Background(), "widget specs", []string{"http://a"}, true)
	require.Equal(t, 1, result.Stored)
	require.True(t, result.Documents[0].Stored)
	require.Equal(t, []string{"text"}, storer.stored)
}

func TestScrapeURLsStoreFailureIsPerItem(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://a": "bad text",
		"http://b": "good text",
	}}
	storer := &fakeStorer{failOn: "bad"}
	svc := newTestIngestService(&fakeSearcher{}, fetcher, storer)

	result := svc.ScrapeURLs(context.Background(), "q", []string{"http://a", "http://b"}, true)
	require.Equal(t, 2, result.Fetched)
	require.Equal(t, 1, result.Stored)
	require.False(t, result.Documents[0].Stored)
	require.NotEmpty(t, result.Documents[0].StoreError)
	require.True(t, result.Documents[1].Stored)
	require.Empty(t, result.Documents[1].StoreError)
}

func TestScrapeURLsTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 25000)
	fetcher := &fakeFetcher{pages: map[string]string{"http://a": long}}
	storer := &fakeStorer{}
	svc := newTestIngestService(&fakeSearcher{}, fetcher, storer)

	result := svc.ScrapeURLs(context.Background(), "q", []string{"http://a"}, true)
	require.Len(t, result.Documents[0].Text, 20000)
	require.Len(t, storer.stored[0], 20000)
}

func TestTruncateCharsCountsRunes(t *testing.T) {
	text := strings.Repeat("한", 30)
	require.Equal(t, strings.Repeat("한", 10), truncateChars(text, 10))
	require.Equal(t, "short", truncateChars("short", 10))
}
