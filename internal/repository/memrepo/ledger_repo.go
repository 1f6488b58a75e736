// Package memrepo хранилище леджера в памяти процесса.
package memrepo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

// wallet баланс и журнал одного юзера. Оба поля меняются только под mu, поэтому читатель никогда не увидит
// баланс, учитывающий транзакцию, которой ещё нет в журнале.
type wallet struct {
	mu           sync.RWMutex
	user         domain.User
	transactions []domain.Transaction
	keys         map[string]int
}

type LedgerRepository struct {
	// mu защищает только состав users/order. Изменение баланса берёт его на чтение, так что записи разных
	// юзеров не сериализуются.
	mu     sync.RWMutex
	users  map[string]*wallet
	emails map[string]string
	order  []string
	now    func() time.Time
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		users:  make(map[string]*wallet),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

// CreateUser создает юзера с нулевым балансом. При совпадении email возвращает domain.ErrDuplicateKey.
func (r *LedgerRepository) CreateUser(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(args.Email)
	if _, ok := r.emails[email]; ok {
		return nil, fmt.Errorf("[repository/creating user with email `%s`] %w", args.Email, domain.ErrDuplicateKey)
	}

	now := r.now()
	user := domain.User{
		ID:            repoargs.NewUserID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Name:          args.Name,
		Email:         args.Email,
		Phone:         args.Phone,
		WalletBalance: decimal.Zero,
	}
	r.users[user.ID] = &wallet{user: user, keys: make(map[string]int)}
	r.emails[email] = user.ID
	r.order = append(r.order, user.ID)

	return &user, nil
}

func (r *LedgerRepository) GetUser(_ context.Context, userID string) (*domain.User, error) {
	w, err := r.wallet(userID)
	if err != nil {
		return nil, err
	}
	w.mu.RLock()
	user := w.user
	w.mu.RUnlock()
	return &user, nil
}

// ListUsers возвращает юзеров в порядке создания.
func (r *LedgerRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	wallets := r.snapshotWallets()
	users := make([]domain.User, len(wallets))
	for i, w := range wallets {
		w.mu.RLock()
		users[i] = w.user
		w.mu.RUnlock()
	}
	return users, nil
}

// ListTransactions возвращает транзакции юзера (или всех юзеров, если userID пустой) от новых к старым.
func (r *LedgerRepository) ListTransactions(_ context.Context, userID string) ([]domain.Transaction, error) {
	var wallets []*wallet
	if userID != "" {
		w, err := r.wallet(userID)
		if err != nil {
			return nil, err
		}
		wallets = []*wallet{w}
	} else {
		wallets = r.snapshotWallets()
	}

	var transactions []domain.Transaction
	for _, w := range wallets {
		w.mu.RLock()
		transactions = append(transactions, w.transactions...)
		w.mu.RUnlock()
	}
	sortNewestFirst(transactions)
	return transactions, nil
}

// FindByIdempotencyKey ищет транзакцию юзера по ключу идемпотентности. Возвращает domain.ErrRecordNotFound.
func (r *LedgerRepository) FindByIdempotencyKey(
	_ context.Context,
	userID string,
	key string,
) (*domain.Transaction, error) {
	w, err := r.wallet(userID)
	if err != nil {
		return nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()

	i, ok := w.keys[key]
	if !ok {
		return nil, fmt.Errorf("[repository/finding transaction by key `%s`] %w", key, domain.ErrRecordNotFound)
	}
	transaction := w.transactions[i]
	return &transaction, nil
}

// RecordAndAdjust записывает транзакцию и меняет баланс под блокировкой кошелька юзера. Все проверки
// выполняются до первой записи, поэтому при ошибке состояние не меняется.
func (r *LedgerRepository) RecordAndAdjust(
	_ context.Context,
	args repoargs.RecordAdjustment,
) (*domain.User, *domain.Transaction, error) {
	if err := repoargs.ValidateAmount(args.Amount, args.Scale); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	w, err := r.wallet(args.UserID)
	if err != nil {
		return nil, nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if args.IdempotencyKey != "" {
		if i, ok := w.keys[args.IdempotencyKey]; ok {
			existing := w.transactions[i]
			return nil, nil, domain.NewDuplicateAdjustmentError(&existing)
		}
	}

	balance, balanceErr := repoargs.NewBalance(w.user.WalletBalance, args)
	if balanceErr != nil {
		return nil, nil, balanceErr //nolint:wrapcheck
	}

	id, idErr := repoargs.NewTransactionID()
	if idErr != nil {
		return nil, nil, fmt.Errorf("[repository/allocating transaction id] %w: %s", domain.ErrUnknown, idErr.Error())
	}

	now := r.now()
	transaction := domain.Transaction{
		ID:             id,
		CreatedAt:      now,
		UserID:         args.UserID,
		Amount:         args.Amount,
		Description:    args.Description,
		IdempotencyKey: args.IdempotencyKey,
	}

	w.transactions = append(w.transactions, transaction)
	if args.IdempotencyKey != "" {
		w.keys[args.IdempotencyKey] = len(w.transactions) - 1
	}
	w.user.WalletBalance = balance
	w.user.UpdatedAt = now

	user := w.user
	return &user, &transaction, nil
}

// Totals считает агрегаты. Баланс и кол-во транзакций каждого юзера берутся из одного снимка.
func (r *LedgerRepository) Totals(_ context.Context) (*repoargs.LedgerTotals, error) {
	wallets := r.snapshotWallets()
	totals := repoargs.LedgerTotals{
		Users:   int64(len(wallets)),
		Balance: decimal.Zero,
	}
	for _, w := range wallets {
		w.mu.RLock()
		totals.Balance = totals.Balance.Add(w.user.WalletBalance)
		totals.Transactions += int64(len(w.transactions))
		w.mu.RUnlock()
	}
	return &totals, nil
}

func (r *LedgerRepository) wallet(userID string) (*wallet, error) {
	r.mu.RLock()
	w, ok := r.users[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("[repository/finding user `%s`] %w", userID, domain.ErrUserNotFound)
	}
	return w, nil
}

func (r *LedgerRepository) snapshotWallets() []*wallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallets := make([]*wallet, len(r.order))
	for i, id := range r.order {
		wallets[i] = r.users[id]
	}
	return wallets
}

func sortNewestFirst(transactions []domain.Transaction) {
	slices.SortStableFunc(transactions, func(a, b domain.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
