package api

import (
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/shopspring/decimal"
)

// UserResponse суммы и балансы в ответах сериализуются строкой ("70.5") без потери точности.
type UserResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func newUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		WalletBalance: u.WalletBalance,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

type TransactionResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	Description     string          `json:"description"`
	CreatedAt       string          `json:"created_at"`
}

func newTransactionResponse(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		Amount:          t.Amount,
		TransactionType: string(t.Type()),
		Description:     t.Description,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339Nano),
	}
}

func newTransactionsResponse(transactions []domain.Transaction) []*TransactionResponse {
	response := make([]*TransactionResponse, len(transactions))
	for i := range transactions {
		response[i] = newTransactionResponse(&transactions[i])
	}
	return response
}

type AdjustmentResponse struct {
	User        *UserResponse        `json:"user"`
	Transaction *TransactionResponse `json:"transaction"`
}
