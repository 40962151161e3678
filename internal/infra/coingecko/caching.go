package coingecko

import (
	"context"
	"log/slog"
)

//go:generate mockgen -source=caching.go -destination=mocks/caching_mock.go -package=mocks

// DetailFetcher — источник подробной информации по монете
type DetailFetcher interface {
	FetchDetail(ctx context.Context, id string) (*CoinDetail, error)
}

// DetailCache — короткоживущий кэш ответов /coins/{id}
type DetailCache interface {
	GetDetail(ctx context.Context, id string) (*CoinDetail, bool, error)
	SetDetail(ctx context.Context, id string, d *CoinDetail) error
}

// CachingClient — оборачивает DetailFetcher кэшем, чтобы не тратить лимит API
// на повторные запросы info/create/update по одной и той же монете.
// Ошибки кэша только логируются.
type CachingClient struct {
	inner  DetailFetcher
	cache  DetailCache
	logger *slog.Logger
}

func NewCachingClient(inner DetailFetcher, cache DetailCache, logger *slog.Logger) *CachingClient {
	return &CachingClient{inner: inner, cache: cache, logger: logger}
}

func (c *CachingClient) FetchDetail(ctx context.Context, id string) (*CoinDetail, error) {
	cached, ok, err := c.cache.GetDetail(ctx, id)
	switch {
	case err != nil:
		c.logger.Warn("detail cache read failed", slog.String("id", id), slog.String("error", err.Error()))
	case ok:
		c.logger.Debug("detail cache hit", slog.String("id", id))
		return cached, nil
	}

	detail, err := c.inner.FetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetDetail(ctx, id, detail); err != nil {
		c.logger.Warn("detail cache write failed", slog.String("id", id), slog.String("error", err.Error()))
	}
	return detail, nil
}
