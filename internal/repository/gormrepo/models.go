package gormrepo

import (
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/shopspring/decimal"
)

// userModel Seq задает порядок создания, ID - внешний идентификатор.
type userModel struct {
	Seq           uint64          `gorm:"primaryKey;autoIncrement"`
	ID            string          `gorm:"size:36;not null;uniqueIndex"`
	CreatedAt     time.Time       `gorm:"precision:6;not null"`
	UpdatedAt     time.Time       `gorm:"precision:6;not null"`
	Name          string          `gorm:"size:255;not null"`
	Email         string          `gorm:"size:255;not null"`
	EmailKey      string          `gorm:"size:255;not null;uniqueIndex"`
	Phone         string          `gorm:"size:64;not null;default:''"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Name:          m.Name,
		Email:         m.Email,
		Phone:         m.Phone,
		WalletBalance: m.WalletBalance,
	}
}

type transactionModel struct {
	ID             string          `gorm:"primaryKey;size:36"`
	CreatedAt      time.Time       `gorm:"precision:6;not null;index:idx_wallet_tx_user_created,priority:2"`
	UserID         string          `gorm:"size:36;not null;index:idx_wallet_tx_user_created,priority:1;uniqueIndex:idx_wallet_tx_user_key,priority:1"` //nolint:lll
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Description    string          `gorm:"size:255;not null"`
	IdempotencyKey *string         `gorm:"size:255;uniqueIndex:idx_wallet_tx_user_key,priority:2"`
}

func (transactionModel) TableName() string {
	return "wallet_transactions"
}

func (m transactionModel) toDomain() domain.Transaction {
	t := domain.Transaction{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UserID:      m.UserID,
		Amount:      m.Amount,
		Description: m.Description,
	}
	if m.IdempotencyKey != nil {
		t.IdempotencyKey = *m.IdempotencyKey
	}
	return t
}
