package api

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/gin-gonic/gin"
)

// serviceErrorStatus сопоставляет ошибку сервиса со статусом ответа. public - можно ли показать текст
// ошибки клиенту.
func serviceErrorStatus(err error) (status int, public error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidUser):
		return http.StatusBadRequest, err
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired, domain.ErrInsufficientBalance
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict, domain.ErrIdempotencyConflict
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, errors.New("user with this email already exists")
	case errors.Is(err, domain.ErrConcurrencyTimeout):
		return http.StatusServiceUnavailable, domain.ErrConcurrencyTimeout
	default:
		return http.StatusInternalServerError, nil
	}
}

// abortWithServiceError прерывает запрос с ошибкой сервиса. Исходная ошибка всегда попадает в лог как приватная.
func abortWithServiceError(c *gin.Context, err error) {
	status, public := serviceErrorStatus(err)
	if public == nil {
		_ = c.AbortWithError(status, err).SetType(gin.ErrorTypePrivate)
		return
	}
	_ = c.AbortWithError(status, public).SetType(gin.ErrorTypePublic)
	if public != err { //nolint:errorlint
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
	}
}
