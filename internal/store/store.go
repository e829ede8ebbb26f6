package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads product rows and reads/appends advice-cache rows.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store over the given pool.
func NewStore(log *slog.Logger, pool *pgxpool.Pool) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		pool:   pool,
		logger: log.With(slog.String("service", "store")),
	}
}

// ListProducts returns all product rows in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]ProductRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, url, keywords, created_at
		 FROM products
		 ORDER BY id`)
	if err != nil {
		return nil, &StoreError{Op: "list products", Err: err}
	}
	defer rows.Close()

	var items []ProductRecord
	for rows.Next() {
		var p ProductRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.URL, &p.Keywords, &p.CreatedAt); err != nil {
			return nil, &StoreError{Op: "scan product", Err: err}
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list products", Err: err}
	}
	return items, nil
}

// AppendProduct inserts a product row and returns it with id and timestamp
// filled in. Only the admin surface calls this; the webhook pipeline never
// mutates products.
func (s *Store) AppendProduct(ctx context.Context, p ProductRecord) (ProductRecord, error) {
	if strings.TrimSpace(p.Name) == "" {
		return ProductRecord{}, &StoreError{Op: "append product", Err: errors.New("name is required")}
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, url, keywords)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.Name, p.Description, p.URL, p.Keywords,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return ProductRecord{}, &StoreError{Op: "append product", Err: err}
	}
	return p, nil
}

// FindCachedAdvice returns the earliest cache row whose message exactly
// equals text. Matching is case- and whitespace-sensitive.
func (s *Store) FindCachedAdvice(ctx context.Context, text string) (CacheEntry, bool, error) {
	var entry CacheEntry
	err := s.pool.QueryRow(ctx,
		`SELECT id, message, response, created_at
		 FROM advice_cache
		 WHERE message = $1
		 ORDER BY id
		 LIMIT 1`,
		text,
	).Scan(&entry.ID, &entry.Message, &entry.Response, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, &StoreError{Op: "find cached advice", Err: err}
	}
	return entry, true, nil
}

// AppendCachedAdvice appends one cache row. Rows are never updated or
// deleted.
func (s *Store) AppendCachedAdvice(ctx context.Context, message, response string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO advice_cache (message, response) VALUES ($1, $2)`,
		message, response)
	if err != nil {
		return &StoreError{Op: "append cached advice", Err: err}
	}
	return nil
}

// AdviceCacheStats reports row count and age range of the cache table.
func (s *Store) AdviceCacheStats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	err := s.pool.QueryRow(ctx,
		`SELECT count(*),
		        coalesce(min(created_at), 'epoch'::timestamptz),
		        coalesce(max(created_at), 'epoch'::timestamptz)
		 FROM advice_cache`,
	).Scan(&stats.Rows, &stats.Oldest, &stats.Newest)
	if err != nil {
		return CacheStats{}, &StoreError{Op: "cache stats", Err: err}
	}
	return stats, nil
}
