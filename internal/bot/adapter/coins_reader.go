package adapter

import (
	"context"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/bot"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/coins"
)

// serviceCoinsReader — адаптер, который превращает сервис монет в интерфейс бота CoinsReader.
type serviceCoinsReader struct{ svc coins.Service }

// NewCoinsReader — конструктор адаптера над сервисом монет.
func NewCoinsReader(svc coins.Service) bot.CoinsReader {
	return serviceCoinsReader{svc: svc}
}

// ListCoins — все сохранённые монеты, отсортированные по имени
func (a serviceCoinsReader) ListCoins(ctx context.Context) ([]bot.CoinDTO, error) {
	items, err := a.svc.List(ctx, domain.OrderByName)
	if err != nil {
		return nil, err
	}
	out := make([]bot.CoinDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toDTO(it))
	}
	return out, nil
}

// GetCoin — одна сохранённая монета в формате DTO бота.
func (a serviceCoinsReader) GetCoin(ctx context.Context, id string) (bot.CoinDTO, error) {
	it, err := a.svc.Get(ctx, id)
	if err != nil {
		return bot.CoinDTO{}, err
	}
	return toDTO(it), nil
}

func toDTO(it domain.Cryptocurrency) bot.CoinDTO {
	return bot.CoinDTO{
		ID:        it.ID,
		Symbol:    it.Symbol,
		Name:      it.Name,
		PriceUSD:  it.PriceUSD,
		MarketCap: it.MarketCap,
		Change24h: it.PriceChange24h,
		UpdatedAt: it.LastUpdated,
	}
}
