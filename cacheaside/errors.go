package cacheaside

import "errors"

var (
	ErrNilCache = errors.New("cacheaside: cache store is nil")
	ErrNilStore = errors.New("cacheaside: document store is nil")
)

// CacheError wraps a failure reported by the cache tier.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string { return "cache " + e.Op + ": " + e.Err.Error() }
func (e *CacheError) Unwrap() error { return e.Err }

// StoreError wraps a failure reported by the document store tier.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }
