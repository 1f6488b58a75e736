package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	foreignKeyViolationCode = "23503"
	uniqueViolationCode     = "23505"
	checkViolationCode      = "23514"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
// Особенности:
//   - pgx.ErrNoRows превращается в domain.ErrRecordNotFound.
//   - Нарушение уникальности - domain.ErrDuplicateKey.
//   - Нарушение внешнего ключа (транзакция несуществующего юзера) - domain.ErrUserNotFound.
//   - Нарушение CHECK (нулевая сумма) - domain.ErrInvalidAmount.
//   - Все остальные ошибки возвращаются как domain.ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case foreignKeyViolationCode:
			errType = domain.ErrUserNotFound
		case checkViolationCode:
			errType = domain.ErrInvalidAmount
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
