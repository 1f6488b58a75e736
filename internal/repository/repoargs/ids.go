package repoargs

import "github.com/google/uuid"

// NewUserID возвращает непрозрачный идентификатор юзера.
func NewUserID() string {
	return uuid.NewString()
}

// NewTransactionID возвращает UUIDv7. Идентификаторы упорядочены по времени создания, и строковое представление
// сортируется так же.
func NewTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return id.String(), nil
}
