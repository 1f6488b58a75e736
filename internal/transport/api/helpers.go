package api

import "errors"

const maxIdempotencyKeyBytes = 255

var errIdempotencyKeyTooLong = errors.New("idempotency key is too long")
