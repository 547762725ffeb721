package search

import "context"

// Searcher returns up to k candidate URLs for a free-text query, in the
// backend's relevance order. Duplicates are not filtered here; that is the
// caller's concern if it ever becomes one.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}
