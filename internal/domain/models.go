package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Name          string
	Email         string
	Phone         string
	WalletBalance decimal.Decimal
}

type Transaction struct {
	ID             string
	CreatedAt      time.Time
	UserID         string
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
}

// Type вычисляется из знака суммы и не хранится отдельно, поэтому не может разойтись с Amount.
func (t Transaction) Type() TransactionType {
	if t.Amount.IsPositive() {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// Summary агрегированные показатели по всему леджеру.
type Summary struct {
	TotalUsers        int64
	TotalBalance      decimal.Decimal
	TotalTransactions int64
}
