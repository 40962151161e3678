package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("cryptocurrency not found")
	ErrAlreadyExists         = errors.New("cryptocurrency already exists")
	ErrRateLimited           = errors.New("upstream rate limit exceeded")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrMalformedUpstreamData = errors.New("malformed upstream data")
)

// UpstreamError - неуспешный ответ внешнего API, статус пробрасывается клиенту
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstreamUnavailable }

// MalformedDataError - в ответе API нет обязательного поля
type MalformedDataError struct {
	Field string // путь через точку: market_data.current_price.usd
}

func (e *MalformedDataError) Error() string {
	return "missing required field in API response: " + e.Field
}

func (e *MalformedDataError) Unwrap() error { return ErrMalformedUpstreamData }
