package redis

import "errors"

var (
	ErrFailedToParseConnString = errors.New("failed to parse redis connection string")
	ErrEmptyConnectionURL      = errors.New("empty redis connection URL, set REDIS_URL")
	ErrNotReady                = errors.New("redis did not become ready in time")
	ErrHealthcheckFailed       = errors.New("redis healthcheck failed")
)
