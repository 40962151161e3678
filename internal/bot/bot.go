package bot

import (
	"context"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"
)

// Config — конфигурация бота
type Config struct {
	Token           string
	LongPollTimeout time.Duration
}

// CoinDTO — сохранённая монета в том виде, в каком её показывает бот
type CoinDTO struct {
	ID        string
	Symbol    string
	Name      string
	PriceUSD  float64
	MarketCap *float64
	Change24h *float64
	UpdatedAt time.Time
}

// CoinsReader — интерфейс для чтения сохранённых монет
type CoinsReader interface {
	ListCoins(ctx context.Context) ([]CoinDTO, error)
	GetCoin(ctx context.Context, id string) (CoinDTO, error)
}

// Bot — телеграм-бот только для чтения
type Bot struct {
	bot    *telebot.Bot
	coins  CoinsReader
	logger *slog.Logger
}

// New создаёт новый экземпляр бота
func New(cfg Config, coins CoinsReader, logger *slog.Logger) (*Bot, error) {
	if cfg.LongPollTimeout <= 0 {
		cfg.LongPollTimeout = 10 * time.Second
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.LongPollTimeout},
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		bot:    b,
		coins:  coins,
		logger: logger,
	}

	// маршруты команд
	b.Handle("/start", bot.handleStart)
	b.Handle("/coins", bot.handleCoins)
	b.Handle("/coin", bot.handleCoin)
	return bot, nil
}

// Run — long polling до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	go b.bot.Start()
	b.logger.Info("bot started")
	<-ctx.Done()
	b.Stop()
	return nil
}

// Stop останавливает бота
func (b *Bot) Stop() {
	b.bot.Stop()
	b.logger.Info("bot stopped")
}
