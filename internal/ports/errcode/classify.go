package errcode

import (
	"errors"

	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
)

// FromError - общий для HTTP и бота перевод доменной ошибки в код
func FromError(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errs.ErrNotFound):
		return NotFound
	case errors.Is(err, errs.ErrAlreadyExists):
		return AlreadyExists
	case errors.Is(err, errs.ErrRateLimited):
		return RateLimited
	case errors.Is(err, errs.ErrMalformedUpstreamData):
		return MalformedData
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		return Upstream
	default:
		return Internal
	}
}
