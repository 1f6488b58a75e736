package repoargs

import (
	"github.com/shopspring/decimal"
)

type CreateUser struct {
	Name  string
	Email string
	Phone string
}

// RecordAdjustment аргументы единственной изменяющей операции хранилища.
type RecordAdjustment struct {
	UserID         string
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
	// AllowNegative при false операция, уводящая баланс ниже нуля, отклоняется с domain.ErrInsufficientBalance.
	AllowNegative bool
	// Scale максимальное кол-во знаков после запятой у Amount.
	Scale int32
}

type LedgerTotals struct {
	Users        int64
	Transactions int64
	Balance      decimal.Decimal
}
