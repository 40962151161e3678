package coins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/infra/coingecko"
)

//go:generate mockgen -source=coins_service.go -destination=mocks/coins_mock.go -package=mocks

// Бизнес-логика API: CRUD над сохранёнными монетами + живые данные из CoinGecko

type Service interface {
	// List — все сохранённые монеты в заданном порядке
	List(ctx context.Context, order domain.OrderBy) ([]domain.Cryptocurrency, error)
	// Get — одна сохранённая монета или errs.ErrNotFound
	Get(ctx context.Context, id string) (domain.Cryptocurrency, error)
	// Info — живые данные из API + признак наличия в БД; БД не меняется
	Info(ctx context.Context, id string) (LiveInfo, error)
	// Create — сохранить монету из свежих данных API
	Create(ctx context.Context, id string) (domain.Cryptocurrency, error)
	// Update — перезаписать сохранённую монету свежими данными API
	Update(ctx context.Context, id string) (domain.Cryptocurrency, error)
	// Delete — удалить и вернуть последний снимок
	Delete(ctx context.Context, id string) (domain.Cryptocurrency, error)
}

type Repository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (domain.Cryptocurrency, error)
	List(ctx context.Context, order domain.OrderBy) ([]domain.Cryptocurrency, error)
	Create(ctx context.Context, c domain.Cryptocurrency) (domain.Cryptocurrency, error)
	Update(ctx context.Context, id string, u domain.CryptoUpdate) (domain.Cryptocurrency, error)
	Delete(ctx context.Context, id string) (domain.Cryptocurrency, error)
}

type MarketData interface {
	FetchDetail(ctx context.Context, id string) (*coingecko.CoinDetail, error)
}

// LiveInfo — ответ /cryptocurrency/info/{id}
type LiveInfo struct {
	domain.Cryptocurrency
	ExistsInDB bool `json:"exists_in_db"`
}

type Option func(*service)

// WithInfoCache — источник для Info (например, с кэшем); Create и Update всегда идут в API напрямую
func WithInfoCache(cached MarketData) Option {
	return func(s *service) { s.info = cached }
}

type service struct {
	repo   Repository
	market MarketData
	info   MarketData
	logger *slog.Logger
}

func NewService(repo Repository, market MarketData, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		repo:   repo,
		market: market,
		info:   market,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, order domain.OrderBy) ([]domain.Cryptocurrency, error) {
	items, err := s.repo.List(ctx, order)
	if err != nil {
		s.logger.Error("failed to list cryptocurrencies", "err", err)
		return nil, err
	}
	s.logger.Debug("listed cryptocurrencies", "count", len(items), "order", order)
	return items, nil
}

func (s *service) Get(ctx context.Context, id string) (domain.Cryptocurrency, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.logger.Debug("cryptocurrency not found", "id", id)
		} else {
			s.logger.Error("failed to get cryptocurrency", "id", id, "err", err)
		}
		return domain.Cryptocurrency{}, err
	}
	return c, nil
}

func (s *service) Info(ctx context.Context, id string) (LiveInfo, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.logger.Error("failed to check existence", "id", id, "err", err)
		return LiveInfo{}, err
	}

	fresh, err := s.fetch(ctx, s.info, id)
	if err != nil {
		return LiveInfo{}, err
	}
	return LiveInfo{Cryptocurrency: fresh, ExistsInDB: exists}, nil
}

func (s *service) Create(ctx context.Context, id string) (domain.Cryptocurrency, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.logger.Error("failed to check existence", "id", id, "err", err)
		return domain.Cryptocurrency{}, err
	}
	if exists {
		s.logger.Warn("cryptocurrency already exists", "id", id)
		return domain.Cryptocurrency{}, fmt.Errorf("create %s: %w", id, errs.ErrAlreadyExists)
	}

	fresh, err := s.fetch(ctx, s.market, id)
	if err != nil {
		return domain.Cryptocurrency{}, err
	}

	// проверка выше не защищает от гонки: второй запрос получит ErrAlreadyExists от БД
	created, err := s.repo.Create(ctx, fresh)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			s.logger.Warn("cryptocurrency created concurrently", "id", id)
		} else {
			s.logger.Error("failed to create cryptocurrency", "id", id, "err", err)
		}
		return domain.Cryptocurrency{}, err
	}
	s.logger.Info("cryptocurrency created", "id", created.ID, "price_usd", created.PriceUSD)
	return created, nil
}

func (s *service) Update(ctx context.Context, id string) (domain.Cryptocurrency, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.logger.Error("failed to check existence", "id", id, "err", err)
		return domain.Cryptocurrency{}, err
	}
	if !exists {
		s.logger.Debug("cryptocurrency not found", "id", id)
		return domain.Cryptocurrency{}, fmt.Errorf("update %s: %w", id, errs.ErrNotFound)
	}

	fresh, err := s.fetch(ctx, s.market, id)
	if err != nil {
		return domain.Cryptocurrency{}, err
	}

	updated, err := s.repo.Update(ctx, id, domain.UpdateFrom(fresh))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.Error("failed to update cryptocurrency", "id", id, "err", err)
		}
		return domain.Cryptocurrency{}, err
	}
	s.logger.Info("cryptocurrency updated", "id", id, "price_usd", updated.PriceUSD)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) (domain.Cryptocurrency, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.Error("failed to delete cryptocurrency", "id", id, "err", err)
		}
		return domain.Cryptocurrency{}, err
	}
	s.logger.Info("cryptocurrency deleted", "id", id)
	return deleted, nil
}

// fetch — запрос к API и разбор ответа; до записи в БД дело не доходит при ошибке
func (s *service) fetch(ctx context.Context, src MarketData, id string) (domain.Cryptocurrency, error) {
	detail, err := src.FetchDetail(ctx, id)
	if err != nil {
		s.logger.Warn("failed to fetch cryptocurrency detail", "id", id, "err", err)
		return domain.Cryptocurrency{}, err
	}
	c, err := coingecko.Extract(detail)
	if err != nil {
		s.logger.Warn("malformed cryptocurrency detail", "id", id, "err", err)
		return domain.Cryptocurrency{}, err
	}
	return c, nil
}
