package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/groph-wallet/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, created_at, updated_at, name, email, phone, wallet_balance`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create вставляет юзера с нулевым балансом. При конфликте email возвращает domain.ErrDuplicateKey.
func (u *UserRepository) Create(ctx context.Context, id string, args repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, phone, wallet_balance)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING `+userColumns,
		id, args.Name, args.Email, args.Phone,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user with email `%s`", args.Email)
	}
	return user, nil
}

// FindByID ищет юзера. Возвращает domain.ErrRecordNotFound.
func (u *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, convertErr(err, "finding user `%s`", id)
	}
	return user, nil
}

// FindByIDForUpdate то же, что FindByID, но блокирует строку до конца транзакции.
func (u *UserRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, convertErr(err, "locking user `%s`", id)
	}
	return user, nil
}

// List возвращает юзеров в порядке создания.
func (u *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := u.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, convertErr(err, "listing users")
	}
	users, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		user, scanErr := scanUser(row)
		if scanErr != nil {
			return domain.User{}, scanErr
		}
		return *user, nil
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "listing users")
	}
	return users, nil
}

func (u *UserRepository) SetBalance(ctx context.Context, id string, balance decimal.Decimal) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users SET wallet_balance = $2, updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING `+userColumns,
		id, balance,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "setting balance of user `%s`", id)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.WalletBalance,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
