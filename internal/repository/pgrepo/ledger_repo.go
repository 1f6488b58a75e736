package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/groph-wallet/pkg/uow"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InitUOW создает UnitOfWork и регистрирует в нем репозитории юзеров и транзакций.
func InitUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	userRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return NewUserRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.UserRepoName), userRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	transactionRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return NewTransactionRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.TransactionRepoName),
		transactionRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	return unitOfWork, nil
}

// LedgerRepository хранилище леджера поверх postgres. Изменение баланса и вставка транзакции выполняются
// в одной транзакции под блокировкой строки юзера (SELECT ... FOR UPDATE).
type LedgerRepository struct {
	uow          uow.UOW
	users        *UserRepository
	transactions *TransactionRepository
}

func NewLedgerRepository(unitOfWork uow.UOW) (*LedgerRepository, error) {
	users, uErr := uow.GetRepositoryAs[*UserRepository](unitOfWork, uow.RepositoryName(repoargs.UserRepoName))
	if uErr != nil {
		return nil, fmt.Errorf("new ledger repository: %w", uErr)
	}
	transactions, tErr := uow.GetRepositoryAs[*TransactionRepository](
		unitOfWork,
		uow.RepositoryName(repoargs.TransactionRepoName),
	)
	if tErr != nil {
		return nil, fmt.Errorf("new ledger repository: %w", tErr)
	}
	return &LedgerRepository{
		uow:          unitOfWork,
		users:        users,
		transactions: transactions,
	}, nil
}

func (l *LedgerRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	return l.users.Create(ctx, repoargs.NewUserID(), args)
}

func (l *LedgerRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return nil, userNotFound(err, userID)
	}
	return user, nil
}

func (l *LedgerRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return l.users.List(ctx)
}

func (l *LedgerRepository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	if userID != "" {
		if _, err := l.GetUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	return l.transactions.List(ctx, userID)
}

func (l *LedgerRepository) FindByIdempotencyKey(
	ctx context.Context,
	userID string,
	key string,
) (*domain.Transaction, error) {
	return l.transactions.FindByIdempotencyKey(ctx, userID, key)
}

// RecordAndAdjust записывает транзакцию и меняет баланс атомарно. При любой ошибке транзакция БД
// откатывается целиком.
func (l *LedgerRepository) RecordAndAdjust(
	ctx context.Context,
	args repoargs.RecordAdjustment,
) (*domain.User, *domain.Transaction, error) {
	if err := repoargs.ValidateAmount(args.Amount, args.Scale); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	var (
		user        *domain.User
		transaction *domain.Transaction
	)
	err := l.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		users, uErr := uow.GetAs[*UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if uErr != nil {
			return uErr //nolint:wrapcheck
		}
		transactions, tErr := uow.GetAs[*TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if tErr != nil {
			return tErr //nolint:wrapcheck
		}

		current, findErr := users.FindByIDForUpdate(ctx, args.UserID)
		if findErr != nil {
			return userNotFound(findErr, args.UserID)
		}

		if args.IdempotencyKey != "" {
			existing, keyErr := transactions.FindByIdempotencyKey(ctx, args.UserID, args.IdempotencyKey)
			if keyErr == nil {
				return domain.NewDuplicateAdjustmentError(existing)
			}
			if !errors.Is(keyErr, domain.ErrRecordNotFound) {
				return keyErr
			}
		}

		balance, balanceErr := repoargs.NewBalance(current.WalletBalance, args)
		if balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}

		id, idErr := repoargs.NewTransactionID()
		if idErr != nil {
			return fmt.Errorf("[repository/allocating transaction id] %w: %s", domain.ErrUnknown, idErr.Error())
		}

		var createErr error
		transaction, createErr = transactions.Create(ctx, domain.Transaction{
			ID:             id,
			UserID:         args.UserID,
			Amount:         args.Amount,
			Description:    args.Description,
			IdempotencyKey: args.IdempotencyKey,
		})
		if createErr != nil {
			return createErr
		}

		var updateErr error
		user, updateErr = users.SetBalance(ctx, args.UserID, balance)
		return updateErr
	})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}
	return user, transaction, nil
}

func (l *LedgerRepository) Totals(ctx context.Context) (*repoargs.LedgerTotals, error) {
	return l.transactions.Totals(ctx)
}

func userNotFound(err error, userID string) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("[repository/finding user `%s`] %w", userID, domain.ErrUserNotFound)
	}
	return err
}
