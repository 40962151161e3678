package errcode

type Code string

const (
	NotFound      Code = "NOT_FOUND"
	AlreadyExists Code = "ALREADY_EXISTS"

	RateLimited   Code = "RATE_LIMITED"
	Upstream      Code = "UPSTREAM_UNAVAILABLE"
	MalformedData Code = "MALFORMED_UPSTREAM_DATA"

	Internal Code = "INTERNAL_ERROR"
)
