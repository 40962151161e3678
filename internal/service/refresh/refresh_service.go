package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
)

//go:generate mockgen -source=refresh_service.go -destination=mocks/refresh_mock.go -package=mocks

// Фоновое обновление: один bulk-запрос на весь набор сохранённых монет

type RecordStore interface {
	List(ctx context.Context, order domain.OrderBy) ([]domain.Cryptocurrency, error)
	Update(ctx context.Context, id string, u domain.CryptoUpdate) (domain.Cryptocurrency, error)
}

type PriceProvider interface {
	FetchBulkPrices(ctx context.Context, ids []string) (map[string]domain.PricePoint, error)
}

// Stats — итог одного цикла
type Stats struct {
	Total   int // записей в БД на момент цикла
	Updated int
	Missing int // нет в ответе API
	Skipped int // неполные данные или запись удалена во время цикла
}

type Service struct {
	store    RecordStore
	provider PriceProvider
	logger   *slog.Logger
	clock    Clock
}

func NewService(store RecordStore, provider PriceProvider, logger *slog.Logger) *Service {
	return NewServiceWithClock(store, provider, logger, NewRealClock())
}

func NewServiceWithClock(store RecordStore, provider PriceProvider, logger *slog.Logger, clock Clock) *Service {
	return &Service{
		store:    store,
		provider: provider,
		logger:   logger,
		clock:    clock,
	}
}

// RefreshAll — обновляет все сохранённые записи.
// Ошибки list/fetch прерывают цикл; ошибки записи отдельных монет собираются и возвращаются после обхода.
func (s *Service) RefreshAll(ctx context.Context) (Stats, error) {
	records, err := s.store.List(ctx, domain.OrderByID)
	if err != nil {
		return Stats{}, fmt.Errorf("list records: %w", err)
	}

	stats := Stats{Total: len(records)}
	if len(records) == 0 {
		s.logger.Info("no cryptocurrencies to refresh")
		return stats, nil
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	prices, err := s.provider.FetchBulkPrices(ctx, ids)
	if err != nil {
		return stats, fmt.Errorf("fetch bulk prices: %w", err)
	}

	var writeErrs []error
	for _, r := range records {
		p, ok := prices[r.ID]
		if !ok {
			stats.Missing++
			s.logger.Debug("no bulk data for cryptocurrency", "id", r.ID)
			continue
		}
		if p.PriceUSD == nil {
			stats.Skipped++
			s.logger.Warn("bulk data without usd price, skipping", "id", r.ID)
			continue
		}

		if _, err := s.store.Update(ctx, r.ID, s.buildUpdate(r.ID, p)); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				stats.Skipped++
				s.logger.Debug("cryptocurrency deleted during refresh", "id", r.ID)
				continue
			}
			writeErrs = append(writeErrs, fmt.Errorf("update %s: %w", r.ID, err))
			continue
		}
		stats.Updated++
	}

	s.logger.Info("refresh cycle finished",
		"total", stats.Total, "updated", stats.Updated,
		"missing", stats.Missing, "skipped", stats.Skipped, "failed", len(writeErrs))

	return stats, errors.Join(writeErrs...)
}

// buildUpdate — symbol и name не трогаем, остальные поля перезаписываются целиком
func (s *Service) buildUpdate(id string, p domain.PricePoint) domain.CryptoUpdate {
	ts := s.clock.Now().UTC()
	if p.LastUpdatedAt != nil {
		ts = p.LastUpdatedAt.UTC()
	} else {
		s.logger.Warn("bulk data without last_updated_at, using current time", "id", id, "ts", ts)
	}
	return domain.CryptoUpdate{
		PriceUSD:       *p.PriceUSD,
		MarketCap:      p.MarketCap,
		Volume24h:      p.Volume24h,
		PriceChange24h: p.PriceChange24h,
		LastUpdated:    ts,
	}
}
