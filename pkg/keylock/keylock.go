// Package keylock эксклюзивные блокировки по строковому ключу. Блокировки разных ключей не зависят друг от друга.
package keylock

import (
	"context"
	"errors"
)

var ErrNotHeld = errors.New("[keylock] lock is not held")

// Unlock освобождает блокировку. Повторный вызов ничего не делает.
type Unlock func()

type Locker interface {
	// Lock блокирует ключ key и ждет освобождения не дольше, чем живет ctx. Если контекст закончился раньше,
	// возвращается ctx.Err().
	Lock(ctx context.Context, key string) (Unlock, error)
}
