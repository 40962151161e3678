package httptransport

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/coins"
	"github.com/labstack/echo/v4"
)

// Pinger — проверка доступности БД для /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router — то, что нужно хендлеру от echo.Echo / echo.Group
type Router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// CryptoHandler — HTTP‑handler для сохранённых монет.
type CryptoHandler struct {
	logger  *slog.Logger
	svc     coins.Service
	db      Pinger
	timeout time.Duration
}

func NewCryptoHandler(logger *slog.Logger, svc coins.Service, db Pinger, timeout time.Duration) *CryptoHandler {
	if logger == nil {
		log.Fatal("nil logger")
	}
	if svc == nil {
		log.Fatal("nil service")
	}
	// Задаём таймаут по умолчанию, если он не задан
	if timeout <= 0 {
		timeout = time.Second * 15
	}
	return &CryptoHandler{
		logger:  logger,
		svc:     svc,
		db:      db,
		timeout: timeout,
	}
}

func (h *CryptoHandler) RegisterRoutes(r Router) {
	r.GET("/health", h.Health)
	r.GET("/cryptocurrencies", h.List)
	r.GET("/cryptocurrency/info/:id", h.Info)
	r.GET("/cryptocurrency/:id", h.Get)
	r.POST("/cryptocurrency", h.Create)
	r.PUT("/cryptocurrency/:id", h.Update)
	r.DELETE("/cryptocurrency/:id", h.Delete)
}

func (h *CryptoHandler) Health(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("health check failed", slog.String("error", err.Error()))
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *CryptoHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order := domain.ParseOrderBy(c.QueryParam("order_by"))
	items, err := h.svc.List(ctx, order)
	if err != nil {
		return h.fail(c, "List", "", err)
	}
	if items == nil {
		items = []domain.Cryptocurrency{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CryptoHandler) Get(c echo.Context) error {
	id := pathID(c)
	if id == "" {
		return detail(c, http.StatusBadRequest, msgIDRequired)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.svc.Get(ctx, id)
	if err != nil {
		return h.fail(c, "Get", id, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CryptoHandler) Info(c echo.Context) error {
	id := pathID(c)
	if id == "" {
		return detail(c, http.StatusBadRequest, msgIDRequired)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	info, err := h.svc.Info(ctx, id)
	if err != nil {
		return h.fail(c, "Info", id, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (h *CryptoHandler) Create(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("crypto_id"))
	if id == "" {
		return detail(c, http.StatusBadRequest, "Query parameter crypto_id is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.svc.Create(ctx, id)
	if err != nil {
		return h.fail(c, "Create", id, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *CryptoHandler) Update(c echo.Context) error {
	id := pathID(c)
	if id == "" {
		return detail(c, http.StatusBadRequest, msgIDRequired)
	}
	// crypto_id в query необязателен, но если передан — должен совпадать с путём
	if q := strings.TrimSpace(c.QueryParam("crypto_id")); q != "" && q != id {
		return detail(c, http.StatusBadRequest, fmt.Sprintf("crypto_id %s does not match path id %s", q, id))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.svc.Update(ctx, id)
	if err != nil {
		return h.fail(c, "Update", id, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *CryptoHandler) Delete(c echo.Context) error {
	id := pathID(c)
	if id == "" {
		return detail(c, http.StatusBadRequest, msgIDRequired)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.svc.Delete(ctx, id); err != nil {
		return h.fail(c, "Delete", id, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Cryptocurrency %s successfully deleted", id),
	})
}

func pathID(c echo.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
