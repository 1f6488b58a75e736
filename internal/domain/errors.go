package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConcurrencyTimeout  = errors.New("concurrency timeout")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different parameters")
	ErrInvalidUser         = errors.New("invalid user data")
)

// DuplicateAdjustmentError возвращается хранилищем, когда для юзера уже записана транзакция с тем же
// ключом идемпотентности.
type DuplicateAdjustmentError struct {
	Transaction *Transaction
}

func NewDuplicateAdjustmentError(transaction *Transaction) error {
	return &DuplicateAdjustmentError{Transaction: transaction}
}

func (e *DuplicateAdjustmentError) Error() string {
	return fmt.Sprintf(
		"adjustment with idempotency key %s already recorded for user %s",
		e.Transaction.IdempotencyKey,
		e.Transaction.UserID,
	)
}

func (e *DuplicateAdjustmentError) Unwrap() error {
	return ErrDuplicateKey
}
