package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	now := r.now()
	model := userModel{
		ID:            repoargs.NewUserID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Name:          args.Name,
		Email:         args.Email,
		EmailKey:      strings.ToLower(args.Email),
		Phone:         args.Phone,
		WalletBalance: decimal.Zero,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, convertErr(err, "creating user with email `%s`", args.Email)
	}
	user := model.toDomain()
	return &user, nil
}

func (r *LedgerRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	model, err := findUser(r.db.WithContext(ctx), userID, false)
	if err != nil {
		return nil, err
	}
	user := model.toDomain()
	return &user, nil
}

// ListUsers возвращает юзеров в порядке создания.
func (r *LedgerRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := r.db.WithContext(ctx).Order("seq").Find(&models).Error; err != nil {
		return nil, convertErr(err, "listing users")
	}
	users := make([]domain.User, len(models))
	for i, m := range models {
		users[i] = m.toDomain()
	}
	return users, nil
}

// ListTransactions возвращает транзакции от новых к старым. Пустой userID - транзакции всех юзеров.
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	db := r.db.WithContext(ctx)
	if userID != "" {
		if _, err := findUser(db, userID, false); err != nil {
			return nil, err
		}
		db = db.Where("user_id = ?", userID)
	}

	var models []transactionModel
	if err := db.Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, convertErr(err, "listing transactions")
	}
	transactions := make([]domain.Transaction, len(models))
	for i, m := range models {
		transactions[i] = m.toDomain()
	}
	return transactions, nil
}

func (r *LedgerRepository) FindByIdempotencyKey(
	ctx context.Context,
	userID string,
	key string,
) (*domain.Transaction, error) {
	return findByKey(r.db.WithContext(ctx), userID, key)
}

// RecordAndAdjust выполняет проверку, вставку транзакции и обновление баланса в одной транзакции БД
// под блокировкой строки юзера.
func (r *LedgerRepository) RecordAndAdjust(
	ctx context.Context,
	args repoargs.RecordAdjustment,
) (*domain.User, *domain.Transaction, error) {
	if err := repoargs.ValidateAmount(args.Amount, args.Scale); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	var (
		user        domain.User
		transaction domain.Transaction
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, findErr := findUser(tx, args.UserID, true)
		if findErr != nil {
			return findErr
		}

		if args.IdempotencyKey != "" {
			existing, keyErr := findByKey(tx, args.UserID, args.IdempotencyKey)
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

		now := r.now()
		model := transactionModel{
			ID:          id,
			CreatedAt:   now,
			UserID:      args.UserID,
			Amount:      args.Amount,
			Description: args.Description,
		}
		if args.IdempotencyKey != "" {
			key := args.IdempotencyKey
			model.IdempotencyKey = &key
		}
		if createErr := tx.Create(&model).Error; createErr != nil {
			return convertErr(createErr, "creating transaction for user `%s`", args.UserID)
		}

		updateErr := tx.Model(&userModel{}).
			Where("id = ?", args.UserID).
			Updates(map[string]any{"wallet_balance": balance, "updated_at": now}).Error
		if updateErr != nil {
			return convertErr(updateErr, "setting balance of user `%s`", args.UserID)
		}

		current.WalletBalance = balance
		current.UpdatedAt = now
		user = current.toDomain()
		transaction = model.toDomain()
		return nil
	})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}
	return &user, &transaction, nil
}

// Totals читает все агрегаты внутри одной транзакции. Сумма балансов считается в decimal, а не средствами БД,
// потому что sqlite хранит decimal как REAL.
func (r *LedgerRepository) Totals(ctx context.Context) (*repoargs.LedgerTotals, error) {
	totals := repoargs.LedgerTotals{Balance: decimal.Zero}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balances []decimal.Decimal
		if err := tx.Model(&userModel{}).Pluck("wallet_balance", &balances).Error; err != nil {
			return convertErr(err, "summing balances")
		}
		totals.Users = int64(len(balances))
		for _, b := range balances {
			totals.Balance = totals.Balance.Add(b)
		}
		if err := tx.Model(&transactionModel{}).Count(&totals.Transactions).Error; err != nil {
			return convertErr(err, "counting transactions")
		}
		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &totals, nil
}

func (r *LedgerRepository) now() time.Time {
	return r.db.NowFunc()
}

func findUser(db *gorm.DB, userID string, forUpdate bool) (*userModel, error) {
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model userModel
	if err := db.Where("id = ?", userID).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("[repository/finding user `%s`] %w", userID, domain.ErrUserNotFound)
		}
		return nil, convertErr(err, "finding user `%s`", userID)
	}
	return &model, nil
}

func findByKey(db *gorm.DB, userID string, key string) (*domain.Transaction, error) {
	var model transactionModel
	if err := db.Where("user_id = ? AND idempotency_key = ?", userID, key).Take(&model).Error; err != nil {
		return nil, convertErr(err, "finding transaction by key `%s`", key)
	}
	transaction := model.toDomain()
	return &transaction, nil
}
