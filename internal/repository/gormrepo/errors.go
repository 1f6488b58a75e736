package gormrepo

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"gorm.io/gorm"
)

// convertErr приводит ошибки gorm к ошибкам домена в том же формате, что и pgrepo.
// Для распознавания дублей соединение открывается с TranslateError.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("[repository/%s] %w: %s", msg, domain.ErrDuplicateKey, err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("[repository/%s] %w: %s", msg, domain.ErrUserNotFound, err.Error())
	}
	return fmt.Errorf("[repository/%s] %w: %s", msg, domain.ErrUnknown, err.Error())
}
