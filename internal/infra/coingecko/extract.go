package coingecko

import (
	"fmt"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
)

const vsCurrency = "usd"

// Extract — переводит вложенный ответ /coins/{id} в плоскую запись.
// Обязательные поля: id, symbol, name, market_data.current_price.usd, last_updated.
// market_cap, total_volume и price_change_percentage_24h могут отсутствовать.
func Extract(d *CoinDetail) (domain.Cryptocurrency, error) {
	if d == nil || d.ID == nil {
		return domain.Cryptocurrency{}, &errs.MalformedDataError{Field: "id"}
	}
	if d.Symbol == nil {
		return domain.Cryptocurrency{}, &errs.MalformedDataError{Field: "symbol"}
	}
	if d.Name == nil {
		return domain.Cryptocurrency{}, &errs.MalformedDataError{Field: "name"}
	}
	if d.MarketData == nil {
		return domain.Cryptocurrency{}, &errs.MalformedDataError{Field: "market_data"}
	}
	price := d.MarketData.CurrentPrice[vsCurrency]
	if price == nil {
		return domain.Cryptocurrency{}, &errs.MalformedDataError{Field: "market_data.current_price." + vsCurrency}
	}
	if d.LastUpdated == nil {
		return domain.Cryptocurrency{}, &errs.MalformedDataError{Field: "last_updated"}
	}

	ts, err := ParseISOTime(*d.LastUpdated)
	if err != nil {
		return domain.Cryptocurrency{}, fmt.Errorf("last_updated %q: %w", *d.LastUpdated,
			&errs.MalformedDataError{Field: "last_updated"})
	}

	return domain.Cryptocurrency{
		ID:             *d.ID,
		Symbol:         *d.Symbol,
		Name:           *d.Name,
		PriceUSD:       *price,
		MarketCap:      d.MarketData.MarketCap[vsCurrency],
		Volume24h:      d.MarketData.TotalVolume[vsCurrency],
		PriceChange24h: d.MarketData.PriceChangePercentage24h,
		LastUpdated:    ts,
	}, nil
}
