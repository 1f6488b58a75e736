package service

import (
	"context"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/groph-wallet/pkg/keylock"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// LedgerRepository хранилище балансов и журнала транзакций. Реализации: memrepo, pgrepo, gormrepo.
type LedgerRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, userID string, key string) (*domain.Transaction, error)
	RecordAndAdjust(ctx context.Context, args repoargs.RecordAdjustment) (*domain.User, *domain.Transaction, error)
	Totals(ctx context.Context) (*repoargs.LedgerTotals, error)
}

type Locker interface {
	Lock(ctx context.Context, key string) (keylock.Unlock, error)
}
