// Package store is the Postgres binding for the product and advice-cache
// tables. Reads return rows in insertion order; the cache table is
// append-only.
package store

import (
	"fmt"
	"strings"
	"time"
)

// ProductRecord is one recommendable item.
type ProductRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Keywords    string    `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
}

// KeywordTokens splits the comma-separated keywords field into trimmed,
// non-empty tokens, preserving order.
func (p ProductRecord) KeywordTokens() []string {
	if strings.TrimSpace(p.Keywords) == "" {
		return nil
	}
	parts := strings.Split(p.Keywords, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// CacheEntry is one memoized advice row, keyed by the exact message text.
type CacheEntry struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// CacheStats summarizes advice_cache growth for the periodic report and
// the admin API.
type CacheStats struct {
	Rows   int64     `json:"rows"`
	Oldest time.Time `json:"oldest,omitzero"`
	Newest time.Time `json:"newest,omitzero"`
}

// StoreError marks a failure at the tabular-store boundary, including
// schema drift (missing or renamed columns) surfaced by the explicit
// column lists in each query.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
