package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrNotFound
	ErrInvalid
	ErrTooMany
	ErrInternal
	ErrNoSearchResults
	ErrEmbeddingFailed
	ErrCompletionFailed
	ErrStorageFailed
	ErrAIUnavailable
)
