package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	botpkg "github.com/NastyaGoryachaya/crypto-tracker-service/internal/bot"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/bot/adapter"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/config"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/infra/cache"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/infra/coingecko"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/infra/db"
	repopg "github.com/NastyaGoryachaya/crypto-tracker-service/internal/repository/postgres"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/scheduler"
	coinssvc "github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/coins"
	refreshsvc "github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/refresh"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/transport/httptransport"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db   *pgxpool.Pool
	rdb  *redis.Client
	e    *echo.Echo
	serv *http.Server

	cryptoRepo *repopg.CryptoRepo

	coins   coinssvc.Service
	refresh *refreshsvc.Service

	updater *scheduler.Scheduler

	bot *botpkg.Bot
}

// NewApp — собирает зависимости: БД (со схемой), клиент CoinGecko, сервисы, HTTP, планировщик, бот
func NewApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	pool, err := db.NewPool(ctx, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	app.db = pool

	// без схемы сервис работать не может
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	app.cryptoRepo = repopg.NewCryptoRepository(pool)

	client := coingecko.NewClient(cfg.CoinGecko)
	var coinsOpts []coinssvc.Option
	if cfg.Redis.Enabled {
		detailCache, rdb, err := cache.NewRedisAdapter(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.rdb = rdb
		// кэш только для /info: запись в БД всегда из свежего ответа API
		coinsOpts = append(coinsOpts, coinssvc.WithInfoCache(coingecko.NewCachingClient(client, detailCache, log)))
	}

	app.coins = coinssvc.NewService(app.cryptoRepo, client, log, coinsOpts...)
	app.refresh = refreshsvc.NewService(app.cryptoRepo, client, log)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httptransport.ErrorHandler(log)
	app.e = e

	h := httptransport.NewCryptoHandler(log, app.coins, pool, cfg.Server.RequestTimeout)
	h.RegisterRoutes(e)

	app.serv = &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Handler:      e,
	}

	if cfg.Scheduler.Enabled {
		app.updater = scheduler.NewScheduler(app.refresh, cfg.Scheduler.Interval, log,
			scheduler.WithRunOnStart(cfg.Scheduler.RunOnStart))
	}

	if cfg.Telegram.Enabled {
		// Если бот включён, отсутствие токена — ошибка конфигурации
		token := strings.TrimSpace(cfg.Telegram.Token)
		if token == "" {
			log.Error("telegram enabled but TELEGRAM_BOT_TOKEN is empty")
			app.closeStores()
			return nil, errors.New("telegram token is empty")
		}

		botApp, err := botpkg.New(
			botpkg.Config{Token: token, LongPollTimeout: 10 * time.Second},
			adapter.NewCoinsReader(app.coins),
			log,
		)
		if err != nil {
			log.Error("telegram init failed", slog.String("error", err.Error()))
			app.closeStores()
			return nil, err
		}
		app.bot = botApp
	}

	log.Info("app initialized",
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		slog.Bool("redis_enabled", cfg.Redis.Enabled),
		slog.Bool("bot_attached", app.bot != nil),
		slog.String("http_addr", cfg.Server.Addr),
	)
	return app, nil
}

// Run — HTTP-сервер, планировщик и бот до отмены ctx; ошибка любого из них останавливает остальных
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.updater != nil {
		a.log.Info("starting updater")
		if err := a.updater.Start(gctx); err != nil {
			return err
		}
	}

	if a.bot != nil {
		a.log.Info("starting bot")
		g.Go(func() error { return a.bot.Run(gctx) })
	}

	g.Go(func() error {
		a.log.Info("starting server", slog.String("addr", a.cfg.Server.Addr))
		if err := a.e.StartServer(a.serv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown — порядок: планировщик (ждём текущий цикл), HTTP, Redis, пул БД
func (a *App) Shutdown(ctx context.Context) error {
	if a.updater != nil {
		a.updater.Stop()
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// StartServer не присваивает e.Server, поэтому e.Shutdown наш сервер не остановит
	var err error
	if a.serv != nil {
		if err = a.serv.Shutdown(shCtx); err != nil {
			a.log.Error("http shutdown error", slog.String("error", err.Error()))
		}
	}

	a.closeStores()
	a.log.Info("application stopped")
	return err
}

func (a *App) closeStores() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
