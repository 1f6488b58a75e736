package memrepo

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerRepositoryTestSuite struct {
	suite.Suite
	repo *LedgerRepository
}

func TestLedgerRepositorySuite(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func (s *LedgerRepositoryTestSuite) SetupTest() {
	s.repo = NewLedgerRepository()
}

func (s *LedgerRepositoryTestSuite) createUser() *domain.User {
	user, err := s.repo.CreateUser(s.T().Context(), repoargs.CreateUser{
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Phone: gofakeit.Phone(),
	})
	s.Require().NoError(err)
	return user
}

func (s *LedgerRepositoryTestSuite) record(userID string, amount string) (*domain.User, *domain.Transaction, error) {
	return s.repo.RecordAndAdjust(s.T().Context(), repoargs.RecordAdjustment{
		UserID:        userID,
		Amount:        decimal.RequireFromString(amount),
		Description:   "test",
		AllowNegative: true,
		Scale:         2,
	})
}

func (s *LedgerRepositoryTestSuite) TestCreateUser_DuplicateEmail() {
	user := s.createUser()
	s.True(user.WalletBalance.IsZero())

	_, err := s.repo.CreateUser(s.T().Context(), repoargs.CreateUser{Name: "copy", Email: user.Email})
	s.Require().ErrorIs(err, domain.ErrDuplicateKey)
}

func (s *LedgerRepositoryTestSuite) TestRecordAndAdjust() {
	user := s.createUser()

	updated, transaction, err := s.record(user.ID, "100.00")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(100).Equal(updated.WalletBalance))
	s.Equal(domain.TransactionTypeCredit, transaction.Type())
	s.Equal(user.ID, transaction.UserID)
	s.NotEmpty(transaction.ID)
	s.False(transaction.CreatedAt.IsZero())

	updated, transaction, err = s.record(user.ID, "-30.00")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(70).Equal(updated.WalletBalance))
	s.Equal(domain.TransactionTypeDebit, transaction.Type())

	stored, getErr := s.repo.GetUser(s.T().Context(), user.ID)
	s.Require().NoError(getErr)
	s.True(updated.WalletBalance.Equal(stored.WalletBalance))
}

func (s *LedgerRepositoryTestSuite) TestRecordAndAdjust_Errors() {
	user := s.createUser()
	_, _, err := s.record(user.ID, "10")
	s.Require().NoError(err)

	cases := []struct {
		name    string
		args    repoargs.RecordAdjustment
		wantErr error
	}{
		{
			name:    "unknown user",
			args:    repoargs.RecordAdjustment{UserID: "missing", Amount: decimal.NewFromInt(1), Scale: 2},
			wantErr: domain.ErrUserNotFound,
		}, {
			name:    "zero amount",
			args:    repoargs.RecordAdjustment{UserID: user.ID, Amount: decimal.Zero, Scale: 2},
			wantErr: domain.ErrInvalidAmount,
		}, {
			name:    "too precise",
			args:    repoargs.RecordAdjustment{UserID: user.ID, Amount: decimal.RequireFromString("0.001"), Scale: 2},
			wantErr: domain.ErrInvalidAmount,
		}, {
			name: "overdraft disabled",
			args: repoargs.RecordAdjustment{
				UserID:        user.ID,
				Amount:        decimal.RequireFromString("-10.01"),
				Scale:         2,
				AllowNegative: false,
			},
			wantErr: domain.ErrInsufficientBalance,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			_, _, recordErr := s.repo.RecordAndAdjust(s.T().Context(), t.args)
			s.Require().ErrorIs(recordErr, t.wantErr)

			// ни одна ошибка не должна оставить следов.
			stored, getErr := s.repo.GetUser(s.T().Context(), user.ID)
			s.Require().NoError(getErr)
			s.True(decimal.NewFromInt(10).Equal(stored.WalletBalance))

			transactions, listErr := s.repo.ListTransactions(s.T().Context(), user.ID)
			s.Require().NoError(listErr)
			s.Len(transactions, 1)
		})
	}
}

func (s *LedgerRepositoryTestSuite) TestRecordAndAdjust_IdempotencyKey() {
	user := s.createUser()
	args := repoargs.RecordAdjustment{
		UserID:         user.ID,
		Amount:         decimal.NewFromInt(5),
		Description:    "tip",
		IdempotencyKey: "key-1",
		AllowNegative:  true,
		Scale:          2,
	}

	_, first, err := s.repo.RecordAndAdjust(s.T().Context(), args)
	s.Require().NoError(err)

	_, _, err = s.repo.RecordAndAdjust(s.T().Context(), args)
	var dupErr *domain.DuplicateAdjustmentError
	s.Require().ErrorAs(err, &dupErr)
	s.Equal(first.ID, dupErr.Transaction.ID)
	s.Require().ErrorIs(err, domain.ErrDuplicateKey)

	found, findErr := s.repo.FindByIdempotencyKey(s.T().Context(), user.ID, "key-1")
	s.Require().NoError(findErr)
	s.Equal(first.ID, found.ID)

	_, findErr = s.repo.FindByIdempotencyKey(s.T().Context(), user.ID, "key-2")
	s.Require().ErrorIs(findErr, domain.ErrRecordNotFound)

	stored, _ := s.repo.GetUser(s.T().Context(), user.ID)
	s.True(decimal.NewFromInt(5).Equal(stored.WalletBalance))
}

func (s *LedgerRepositoryTestSuite) TestListTransactions_Order() {
	first := s.createUser()
	second := s.createUser()

	_, t1, _ := s.record(first.ID, "1")
	_, t2, _ := s.record(second.ID, "2")
	_, t3, _ := s.record(first.ID, "-3")

	all, err := s.repo.ListTransactions(s.T().Context(), "")
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{t3.ID, t2.ID, t1.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	own, err := s.repo.ListTransactions(s.T().Context(), first.ID)
	s.Require().NoError(err)
	s.Require().Len(own, 2)
	s.Equal(t3.ID, own[0].ID)
	s.Equal(t1.ID, own[1].ID)

	_, err = s.repo.ListTransactions(s.T().Context(), "missing")
	s.Require().ErrorIs(err, domain.ErrUserNotFound)
}

func (s *LedgerRepositoryTestSuite) TestListUsers_StableOrder() {
	var ids []string
	for range 5 {
		ids = append(ids, s.createUser().ID)
	}
	for range 2 {
		users, err := s.repo.ListUsers(s.T().Context())
		s.Require().NoError(err)
		got := make([]string, len(users))
		for i, u := range users {
			got[i] = u.ID
		}
		s.Equal(ids, got)
	}
}

func (s *LedgerRepositoryTestSuite) TestTotals() {
	first := s.createUser()
	second := s.createUser()
	_, _, _ = s.record(first.ID, "10.50")
	_, _, _ = s.record(second.ID, "-0.25")
	_, _, _ = s.record(second.ID, "4")

	totals, err := s.repo.Totals(s.T().Context())
	s.Require().NoError(err)
	s.Equal(int64(2), totals.Users)
	s.Equal(int64(3), totals.Transactions)
	s.True(decimal.RequireFromString("14.25").Equal(totals.Balance))
}

// TestConcurrentReadersSeeConsistentWallets проверяет, что читатель не видит баланс без соответствующей транзакции.
func (s *LedgerRepositoryTestSuite) TestConcurrentReadersSeeConsistentWallets() {
	user := s.createUser()
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 500 {
			_, _, err := s.record(user.ID, "1")
			s.NoError(err)
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
			totals, err := s.repo.Totals(ctx)
			s.Require().NoError(err)
			s.True(decimal.NewFromInt(totals.Transactions).Equal(totals.Balance))
		}
	}
}
