// Package content serves blog posts and testimonials, from the database
// when there is one and from built-in copy otherwise.
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

type CacheConfig struct {
	Size int           `env:"CONTENT_CACHE_SIZE" envDefault:"16"`
	TTL  time.Duration `env:"CONTENT_CACHE_TTL" envDefault:"1m"`
}

type Service struct {
	store        storage.ContentStore
	logger       *slog.Logger
	posts        *expirable.LRU[int, []model.BlogPost]
	testimonials *expirable.LRU[int, []model.Testimonial]
}

// NewService caches reads per limit. A zero Size disables caching.
func NewService(store storage.ContentStore, logger *slog.Logger, cfg CacheConfig) *Service {
	s := &Service{store: store, logger: logger}
	if cfg.Size > 0 && store.Durable() {
		s.posts = expirable.NewLRU[int, []model.BlogPost](cfg.Size, nil, cfg.TTL)
		s.testimonials = expirable.NewLRU[int, []model.Testimonial](cfg.Size, nil, cfg.TTL)
	}
	return s
}

func (s *Service) Posts(ctx context.Context, limit int) ([]model.BlogPost, error) {
	if !s.store.Durable() {
		return fallbackPosts(), nil
	}
	return cached(ctx, s.posts, limit, s.store.ListPosts)
}

func (s *Service) Testimonials(ctx context.Context, limit int) ([]model.Testimonial, error) {
	if !s.store.Durable() {
		return SeedTestimonials(), nil
	}
	return cached(ctx, s.testimonials, limit, s.store.ListTestimonials)
}

// Seed fills empty content tables with the built-in copy.
func (s *Service) Seed(ctx context.Context) (int, error) {
	if !s.store.Durable() {
		return 0, nil
	}
	n, err := s.store.SeedIfEmpty(ctx, SeedPosts(), SeedTestimonials())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("content seeded", "rows", n)
		if s.posts != nil {
			s.posts.Purge()
			s.testimonials.Purge()
		}
	}
	return n, nil
}

func cached[T any](ctx context.Context, cache *expirable.LRU[int, []T], limit int, load func(context.Context, int) ([]T, error)) ([]T, error) {
	if cache != nil {
		if v, ok := cache.Get(limit); ok {
			return v, nil
		}
	}
	v, err := load(ctx, limit)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Add(limit, v)
	}
	return v, nil
}
