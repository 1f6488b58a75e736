package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/fsdevblog/groph-wallet/internal/worker"
)

type WalletServicer interface {
	CreateUser(ctx context.Context, args service.CreateUserArgs) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, search string) ([]domain.User, error)
	ApplyAdjustment(ctx context.Context, args service.ApplyAdjustmentArgs) (*domain.User, *domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	GetSummary(ctx context.Context) (*domain.Summary, error)
}

type BatchApplier interface {
	Apply(ctx context.Context, items []service.ApplyAdjustmentArgs) []worker.Result
}
