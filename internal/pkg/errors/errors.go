package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrNoSearchResults = errors.New("search returned no results")
	ErrEmbedding       = errors.New("embedding failed")
	ErrCompletion      = errors.New("completion failed")
	ErrStorage         = errors.New("storage failed")
	ErrInternal        = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
