package bot

import (
	"fmt"
	"strings"
	"time"
)

// formatCoinLine — короткая строка для списка
func formatCoinLine(r CoinDTO) string {
	line := fmt.Sprintf("%s (%s) | Цена: %s", r.Name, strings.ToUpper(r.Symbol), humanPrice(r.PriceUSD))
	if r.Change24h != nil {
		line += fmt.Sprintf(" | 24ч: %+.2f%%", *r.Change24h)
	}
	return line
}

// formatCoinDetails — подробное сообщение для команды /coin {id}
func formatCoinDetails(r CoinDTO) string {
	return fmt.Sprintf(
		"[%s] %s\nЦена: %s\nКапитализация: %s\nИзменение за 24ч: %s\nОбновлено: %s",
		strings.ToUpper(r.Symbol),
		r.Name,
		humanPrice(r.PriceUSD),
		optional(r.MarketCap, humanPrice),
		optional(r.Change24h, func(v float64) string { return fmt.Sprintf("%+.2f%%", v) }),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
}

// humanPrice — форматирование числа с двумя знаками после запятой.
func humanPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func optional(v *float64, f func(float64) string) string {
	if v == nil {
		return "нет данных"
	}
	return f(*v)
}
