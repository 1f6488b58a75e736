package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCurrencyScale int32 = 2
	DefaultMaxAdjustment int64 = 1_000_000_000
)

type Config struct {
	// AllowNegative разрешает уводить баланс ниже нуля.
	AllowNegative bool
	// Scale кол-во знаков после запятой у валюты.
	Scale int32
	// MaxAdjustment максимальный модуль одной операции. Нулевое значение снимает ограничение.
	MaxAdjustment decimal.Decimal
	// LockTimeout ограничивает ожидание блокировки юзера. 0 - ждать, пока жив контекст запроса.
	LockTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		AllowNegative: true,
		Scale:         DefaultCurrencyScale,
		MaxAdjustment: decimal.NewFromInt(DefaultMaxAdjustment),
	}
}

type WalletService struct {
	repo   LedgerRepository
	locker Locker
	conf   Config
	logger *logrus.Entry
}

func NewWalletService(repo LedgerRepository, locker Locker, conf Config, l *logrus.Logger) *WalletService {
	return &WalletService{
		repo:   repo,
		locker: locker,
		conf:   conf,
		logger: l.WithField("component", "wallet_service"),
	}
}

type CreateUserArgs struct {
	Name  string
	Email string
	Phone string
}

// CreateUser регистрирует юзера с нулевым балансом. Email уникален без учета регистра.
func (s *WalletService) CreateUser(ctx context.Context, args CreateUserArgs) (*domain.User, error) {
	args.Name = strings.TrimSpace(args.Name)
	args.Email = strings.TrimSpace(args.Email)
	args.Phone = strings.TrimSpace(args.Phone)
	if args.Name == "" || args.Email == "" {
		return nil, fmt.Errorf("creating user: %w: name and email are required", domain.ErrInvalidUser)
	}

	user, err := s.repo.CreateUser(ctx, repoargs.CreateUser{
		Name:  args.Name,
		Email: args.Email,
		Phone: args.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	s.logger.WithField("userID", user.ID).Info("user created")
	return user, nil
}

func (s *WalletService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

type ApplyAdjustmentArgs struct {
	UserID string
	// Amount положительная сумма - зачисление, отрицательная - списание.
	Amount      decimal.Decimal
	Description string
	// IdempotencyKey необязательный ключ. Повтор запроса с тем же ключом не создает новую транзакцию.
	IdempotencyKey string
}

// ApplyAdjustment меняет баланс юзера на args.Amount и записывает транзакцию.
//
// Алгоритм работы:
//  1. Проверяет сумму: не ноль, не больше MaxAdjustment по модулю, не точнее Scale знаков.
//  2. Подставляет описание по умолчанию.
//  3. Если ключ идемпотентности уже использован с теми же параметрами, возвращает ранее записанную
//     транзакцию и текущий снимок юзера. С другими параметрами - domain.ErrIdempotencyConflict.
//  4. Берет блокировку юзера и атомарно записывает транзакцию и новый баланс. Ключ проверяется
//     повторно уже внутри хранилища, так что гонка двух одинаковых запросов тоже дает один результат.
func (s *WalletService) ApplyAdjustment(
	ctx context.Context,
	args ApplyAdjustmentArgs,
) (*domain.User, *domain.Transaction, error) {
	if err := s.validateAmount(args.Amount); err != nil {
		return nil, nil, fmt.Errorf("applying adjustment: %w", err)
	}

	args.Description = strings.TrimSpace(args.Description)
	if args.Description == "" {
		args.Description = defaultDescription(args.Amount)
	}

	if args.IdempotencyKey != "" {
		existing, findErr := s.repo.FindByIdempotencyKey(ctx, args.UserID, args.IdempotencyKey)
		if findErr == nil {
			return s.replay(ctx, args, existing)
		}
		if !errors.Is(findErr, domain.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("applying adjustment: %w", findErr)
		}
	}

	unlock, lockErr := s.lockUser(ctx, args.UserID)
	if lockErr != nil {
		return nil, nil, fmt.Errorf("applying adjustment: %w", lockErr)
	}
	defer unlock()

	user, transaction, err := s.repo.RecordAndAdjust(ctx, repoargs.RecordAdjustment{
		UserID:         args.UserID,
		Amount:         args.Amount,
		Description:    args.Description,
		IdempotencyKey: args.IdempotencyKey,
		AllowNegative:  s.conf.AllowNegative,
		Scale:          s.conf.Scale,
	})

	var dupErr *domain.DuplicateAdjustmentError
	if errors.As(err, &dupErr) {
		return s.replay(ctx, args, dupErr.Transaction)
	}
	if err != nil {
		s.logger.WithError(err).
			WithFields(logrus.Fields{"userID": args.UserID, "amount": args.Amount.String()}).
			Warn("adjustment rejected")
		return nil, nil, fmt.Errorf("applying adjustment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"userID":        user.ID,
		"transactionID": transaction.ID,
		"amount":        transaction.Amount.String(),
		"balance":       user.WalletBalance.String(),
	}).Info("adjustment applied")
	return user, transaction, nil
}

// ListUsers возвращает юзеров, у которых имя или email содержат search без учета регистра.
// Пустой search возвращает всех.
func (s *WalletService) ListUsers(ctx context.Context, search string) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return users, nil
	}

	filtered := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// ListTransactions возвращает транзакции от новых к старым. Пустой userID - транзакции всех юзеров.
func (s *WalletService) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	transactions, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return transactions, nil
}

// GetSummary пересчитывает агрегаты при каждом вызове.
func (s *WalletService) GetSummary(ctx context.Context) (*domain.Summary, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting summary: %w", err)
	}
	return &domain.Summary{
		TotalUsers:        totals.Users,
		TotalBalance:      totals.Balance,
		TotalTransactions: totals.Transactions,
	}, nil
}

func (s *WalletService) validateAmount(amount decimal.Decimal) error {
	if !s.conf.MaxAdjustment.IsZero() && amount.Abs().GreaterThan(s.conf.MaxAdjustment) {
		return fmt.Errorf("%w: amount %s exceeds limit %s", domain.ErrInvalidAmount, amount, s.conf.MaxAdjustment)
	}
	return repoargs.ValidateAmount(amount, s.conf.Scale) //nolint:wrapcheck
}

// lockUser берет блокировку юзера. Истечение LockTimeout превращается в domain.ErrConcurrencyTimeout.
func (s *WalletService) lockUser(ctx context.Context, userID string) (func(), error) {
	lockCtx := ctx
	if s.conf.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.conf.LockTimeout)
		defer cancel()
	}

	unlock, err := s.locker.Lock(lockCtx, userID)
	if err != nil {
		if s.conf.LockTimeout > 0 && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: user %s is locked longer than %s", domain.ErrConcurrencyTimeout, userID,
				s.conf.LockTimeout)
		}
		return nil, fmt.Errorf("locking user %s: %w", userID, err)
	}
	return unlock, nil
}

func (s *WalletService) replay(
	ctx context.Context,
	args ApplyAdjustmentArgs,
	existing *domain.Transaction,
) (*domain.User, *domain.Transaction, error) {
	if !existing.Amount.Equal(args.Amount) || existing.Description != args.Description {
		return nil, nil, fmt.Errorf("applying adjustment with key %s: %w", args.IdempotencyKey,
			domain.ErrIdempotencyConflict)
	}
	user, err := s.repo.GetUser(ctx, args.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("applying adjustment: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"userID":         user.ID,
		"transactionID":  existing.ID,
		"idempotencyKey": args.IdempotencyKey,
	}).Info("adjustment replayed")
	return user, existing, nil
}

func defaultDescription(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return domain.DefaultCreditDescription
	}
	return domain.DefaultDebitDescription
}
