package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/groph-wallet/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, created_at, user_id, amount, description, coalesce(idempotency_key, '')`

type TransactionRepository struct {
	db uow.DBTX
}

func NewTransactionRepository(db uow.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create записывает created_at через clock_timestamp(): now() вернул бы время начала транзакции БД, а не
// момент записи.
func (t *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (*domain.Transaction, error) {
	var key *string
	if transaction.IdempotencyKey != "" {
		key = &transaction.IdempotencyKey
	}
	row := t.db.QueryRow(ctx, `
		INSERT INTO wallet_transactions (id, user_id, amount, description, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		RETURNING `+transactionColumns,
		transaction.ID, transaction.UserID, transaction.Amount, transaction.Description, key,
	)
	created, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction for user `%s`", transaction.UserID)
	}
	return created, nil
}

// FindByIdempotencyKey возвращает domain.ErrRecordNotFound, если транзакции с таким ключом нет.
func (t *TransactionRepository) FindByIdempotencyKey(
	ctx context.Context,
	userID string,
	key string,
) (*domain.Transaction, error) {
	row := t.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM wallet_transactions WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding transaction by key `%s`", key)
	}
	return transaction, nil
}

// List возвращает транзакции от новых к старым. Пустой userID - транзакции всех юзеров.
func (t *TransactionRepository) List(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := t.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM wallet_transactions
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "listing transactions")
	}
	transactions, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		transaction, scanErr := scanTransaction(row)
		if scanErr != nil {
			return domain.Transaction{}, scanErr
		}
		return *transaction, nil
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "listing transactions")
	}
	return transactions, nil
}

// Totals считает агрегаты одним запросом, поэтому все три значения берутся из одного снимка базы.
func (t *TransactionRepository) Totals(ctx context.Context) (*repoargs.LedgerTotals, error) {
	var totals repoargs.LedgerTotals
	err := t.db.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM users),
		       (SELECT count(*) FROM wallet_transactions),
		       (SELECT coalesce(sum(wallet_balance), 0) FROM users)`,
	).Scan(&totals.Users, &totals.Transactions, &totals.Balance)
	if err != nil {
		return nil, convertErr(err, "calculating totals")
	}
	return &totals, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var transaction domain.Transaction
	if err := row.Scan(
		&transaction.ID,
		&transaction.CreatedAt,
		&transaction.UserID,
		&transaction.Amount,
		&transaction.Description,
		&transaction.IdempotencyKey,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &transaction, nil
}
