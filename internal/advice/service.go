package advice

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/kaiunlab/kaiun/internal/store"
)

// FallbackMessage is returned whenever the generation engine fails. The
// pipeline must still produce a reply, so engine errors never propagate
// past this package.
const FallbackMessage = "申し訳ありません。ただいまアドバイスを作成できませんでした。少し時間をおいて、もう一度ご相談ください。"

// Cache is the advice-cache slice of the tabular store.
type Cache interface {
	FindCachedAdvice(ctx context.Context, text string) (store.CacheEntry, bool, error)
	AppendCachedAdvice(ctx context.Context, message, response string) error
}

// Service resolves advice cache-aside: exact-text cache lookup first,
// generation plus cache append on a miss. Keys are the raw message text,
// case- and whitespace-sensitive; two wordings of the same question are
// different keys. The cache has no TTL and no eviction.
type Service struct {
	engine Engine
	cache  Cache
	logger *slog.Logger

	// group collapses concurrent identical lookups into one generation
	// call when dedup is enabled. With dedup off, concurrent misses on the
	// same text each call the engine and each append a row; reads return
	// the earliest row, so duplicates cost generation calls, not
	// correctness.
	group *singleflight.Group
}

// NewService creates an advice service. dedupe enables single-flight
// collapsing of concurrent identical lookups.
func NewService(log *slog.Logger, engine Engine, cache Cache, dedupe bool) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		engine: engine,
		cache:  cache,
		logger: log.With(slog.String("service", "advice")),
	}
	if dedupe {
		s.group = &singleflight.Group{}
	}
	return s
}

// GetAdvice returns advice for the message text. Cache and engine failures
// are both recovered here: a cache read failure is treated as a miss, a
// cache write failure loses only the memoization, and an engine failure
// yields FallbackMessage. The returned string is always usable as reply
// text.
func (s *Service) GetAdvice(ctx context.Context, text string) string {
	if s.group == nil {
		return s.resolve(ctx, text)
	}
	result, _, _ := s.group.Do(text, func() (any, error) {
		return s.resolve(ctx, text), nil
	})
	return result.(string)
}

func (s *Service) resolve(ctx context.Context, text string) string {
	entry, ok, err := s.cache.FindCachedAdvice(ctx, text)
	if err != nil {
		s.logger.Warn("cache read failed, treating as miss", slog.Any("error", err))
	} else if ok {
		return entry.Response
	}

	generated, err := s.engine.Generate(ctx, text)
	if err != nil {
		s.logger.Error("advice generation failed", slog.Any("error", err))
		return FallbackMessage
	}

	if err := s.cache.AppendCachedAdvice(ctx, text, generated); err != nil {
		s.logger.Warn("cache append failed", slog.Any("error", err))
	}
	return generated
}
