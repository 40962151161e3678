package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/ports/errcode"
	"gopkg.in/telebot.v4"
)

const requestTimeout = 3 * time.Second

const helpText = "Привет! Доступные команды:\n" +
	"/coins - все отслеживаемые монеты\n" +
	"/coin {id} - подробности по монете (например, /coin bitcoin)"

// handleStart — отправляет справку по доступным командам бота
func (b *Bot) handleStart(c telebot.Context) error {
	return c.Send(helpText)
}

func (b *Bot) handleCoins(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.Send(b.coinsReply(ctx))
}

func (b *Bot) handleCoin(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Укажи id монеты: /coin bitcoin")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.Send(b.coinReply(ctx, args[0]))
}

// coinsReply — текст ответа на /coins
func (b *Bot) coinsReply(ctx context.Context) string {
	list, err := b.coins.ListCoins(ctx)
	if err != nil {
		b.logger.Error("bot: list coins failed", slog.String("error", err.Error()))
		return translateBotError(errcode.FromError(err))
	}
	if len(list) == 0 {
		return "Пока нет отслеживаемых монет"
	}
	var bld strings.Builder
	for _, r := range list {
		bld.WriteString(formatCoinLine(r))
		bld.WriteByte('\n')
	}
	return bld.String()
}

// coinReply — текст ответа на /coin {id}
func (b *Bot) coinReply(ctx context.Context, id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	item, err := b.coins.GetCoin(ctx, id)
	if err != nil {
		code := errcode.FromError(err)
		if code != errcode.NotFound {
			b.logger.Error("bot: get coin failed", slog.String("id", id), slog.String("error", err.Error()))
		}
		return translateBotError(code)
	}
	return formatCoinDetails(item)
}
