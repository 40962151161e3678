package domain

import "time"

// Cryptocurrency - снимок рыночных данных монеты, сохранённый в БД
type Cryptocurrency struct {
	ID             string    `json:"id"`               // bitcoin, ethereum
	Symbol         string    `json:"symbol"`           // btc, eth
	Name           string    `json:"name"`             // Bitcoin
	PriceUSD       float64   `json:"price_usd"`        // Текущая цена в USD
	MarketCap      *float64  `json:"market_cap"`       // nil, если API не вернул значение
	Volume24h      *float64  `json:"volume_24h"`       // nil, если API не вернул значение
	PriceChange24h *float64  `json:"price_change_24h"` // изменение цены за 24ч в процентах
	LastUpdated    time.Time `json:"last_updated"`     // Время актуальности цены (UTC), а не время записи
}

// CryptoUpdate - явный набор полей для обновления записи.
// Symbol и Name == nil означает "оставить как есть".
// Рыночные показатели перезаписываются всегда, nil очищает значение.
type CryptoUpdate struct {
	Symbol         *string
	Name           *string
	PriceUSD       float64
	MarketCap      *float64
	Volume24h      *float64
	PriceChange24h *float64
	LastUpdated    time.Time
}

// Apply - поле за полем переносит обновление в запись
func (c *Cryptocurrency) Apply(u CryptoUpdate) {
	if u.Symbol != nil {
		c.Symbol = *u.Symbol
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	c.PriceUSD = u.PriceUSD
	c.MarketCap = u.MarketCap
	c.Volume24h = u.Volume24h
	c.PriceChange24h = u.PriceChange24h
	c.LastUpdated = u.LastUpdated.UTC()
}

// UpdateFrom - полное обновление из свежих данных API (все поля, кроме ID)
func UpdateFrom(c Cryptocurrency) CryptoUpdate {
	symbol, name := c.Symbol, c.Name
	return CryptoUpdate{
		Symbol:         &symbol,
		Name:           &name,
		PriceUSD:       c.PriceUSD,
		MarketCap:      c.MarketCap,
		Volume24h:      c.Volume24h,
		PriceChange24h: c.PriceChange24h,
		LastUpdated:    c.LastUpdated,
	}
}

// PricePoint - одна запись пакетного ответа simple/price
type PricePoint struct {
	PriceUSD       *float64
	MarketCap      *float64
	Volume24h      *float64
	PriceChange24h *float64
	LastUpdatedAt  *time.Time // nil, если API не прислал last_updated_at
}

// OrderBy - колонка сортировки списка
type OrderBy string

const (
	OrderByID          OrderBy = "id"
	OrderBySymbol      OrderBy = "symbol"
	OrderByName        OrderBy = "name"
	OrderByPrice       OrderBy = "price_usd"
	OrderByMarketCap   OrderBy = "market_cap"
	OrderByLastUpdated OrderBy = "last_updated"
)

// ParseOrderBy - неизвестные значения сводятся к сортировке по id
func ParseOrderBy(s string) OrderBy {
	switch o := OrderBy(s); o {
	case OrderBySymbol, OrderByName, OrderByPrice, OrderByMarketCap, OrderByLastUpdated:
		return o
	default:
		return OrderByID
	}
}
