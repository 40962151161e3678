package httptransport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/ports/errcode"
	"github.com/labstack/echo/v4"
)

const (
	msgRateLimited = "You have exceeded the request limit. Please wait a moment and try again."
	msgUpstream    = "Failed to fetch cryptocurrency data"
	msgInternal    = "Internal server error"
	msgIDRequired  = "Cryptocurrency id is required"
)

// detail — единый формат ошибки: {"detail": "..."}
func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"detail": msg})
}

// Translate — HTTP-статус и текст ошибки для доменной ошибки
func Translate(err error, id string) (int, string) {
	switch errcode.FromError(err) {
	case errcode.NotFound:
		return http.StatusNotFound, fmt.Sprintf("Cryptocurrency %s not found", id)
	case errcode.AlreadyExists:
		return http.StatusBadRequest, fmt.Sprintf("Cryptocurrency %s already exists", id)
	case errcode.RateLimited:
		return http.StatusTooManyRequests, msgRateLimited
	case errcode.MalformedData:
		var mErr *errs.MalformedDataError
		if errors.As(err, &mErr) {
			return http.StatusUnprocessableEntity, "Missing required field in API response: " + mErr.Field
		}
		return http.StatusUnprocessableEntity, msgUpstream
	case errcode.Upstream:
		// любой не-200 статус апстрима пробрасываем как есть; сетевые сбои и битый JSON — 502
		var uErr *errs.UpstreamError
		if errors.As(err, &uErr) && uErr.StatusCode != 0 && uErr.StatusCode != http.StatusOK {
			return uErr.StatusCode, msgUpstream
		}
		return http.StatusBadGateway, msgUpstream
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (h *CryptoHandler) fail(c echo.Context, op, id string, err error) error {
	status, msg := Translate(err, id)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		h.logger.Error(op+" failed",
			slog.String("op", op),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
	return detail(c, status, msg)
}

// ErrorHandler — ошибки самого echo (404 маршрута, 405) в том же формате {"detail": ...}
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := http.StatusInternalServerError, msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
		} else {
			logger.Error("unhandled error", slog.String("error", err.Error()))
		}
		if err := detail(c, status, msg); err != nil {
			logger.Error("failed to write error response", slog.String("error", err.Error()))
		}
	}
}
