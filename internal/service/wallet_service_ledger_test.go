package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/memrepo"
	"github.com/fsdevblog/groph-wallet/pkg/keylock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

// WalletLedgerTestSuite проверяет сервис поверх настоящего хранилища в памяти.
type WalletLedgerTestSuite struct {
	suite.Suite
	service *WalletService
}

func TestWalletLedgerSuite(t *testing.T) {
	suite.Run(t, new(WalletLedgerTestSuite))
}

func (s *WalletLedgerTestSuite) SetupTest() {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	s.service = NewWalletService(memrepo.NewLedgerRepository(), keylock.NewLocal(), DefaultConfig(), l)
}

func (s *WalletLedgerTestSuite) createUser() *domain.User {
	user, err := s.service.CreateUser(context.Background(), CreateUserArgs{
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Phone: gofakeit.Phone(),
	})
	s.Require().NoError(err)
	return user
}

func (s *WalletLedgerTestSuite) apply(userID string, amount string, description string) (*domain.User, *domain.Transaction) {
	user, transaction, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
	})
	s.Require().NoError(err)
	return user, transaction
}

// assertBalanceInvariant баланс юзера равен сумме его транзакций.
func (s *WalletLedgerTestSuite) assertBalanceInvariant(userID string) {
	ctx := context.Background()
	user, err := s.service.GetUser(ctx, userID)
	s.Require().NoError(err)
	transactions, listErr := s.service.ListTransactions(ctx, userID)
	s.Require().NoError(listErr)

	sum := decimal.Zero
	for _, t := range transactions {
		sum = sum.Add(t.Amount)
		s.Equal(t.Amount.IsPositive(), t.Type() == domain.TransactionTypeCredit)
	}
	s.True(user.WalletBalance.Equal(sum), "balance %s, sum %s", user.WalletBalance, sum)
}

func (s *WalletLedgerTestSuite) TestEndToEnd() {
	u1 := s.createUser()
	s.True(u1.WalletBalance.IsZero())

	user, credit := s.apply(u1.ID, "100.00", "")
	s.True(user.WalletBalance.Equal(decimal.RequireFromString("100.00")))
	s.True(credit.Amount.Equal(decimal.RequireFromString("100.00")))
	s.Equal(domain.TransactionTypeCredit, credit.Type())
	s.Equal(domain.DefaultCreditDescription, credit.Description)

	user, debit := s.apply(u1.ID, "-30.00", "coffee")
	s.True(user.WalletBalance.Equal(decimal.RequireFromString("70.00")))
	s.Equal(domain.TransactionTypeDebit, debit.Type())
	s.Equal("coffee", debit.Description)

	transactions, err := s.service.ListTransactions(context.Background(), u1.ID)
	s.Require().NoError(err)
	s.Require().Len(transactions, 2)
	s.Equal(debit.ID, transactions[0].ID)
	s.Equal("coffee", transactions[0].Description)
	s.Equal(credit.ID, transactions[1].ID)
	s.Equal(domain.DefaultCreditDescription, transactions[1].Description)

	s.assertBalanceInvariant(u1.ID)
}

func (s *WalletLedgerTestSuite) TestDefaultDebitDescription() {
	u := s.createUser()
	_, transaction := s.apply(u.ID, "-50", "")
	s.Equal(domain.DefaultDebitDescription, transaction.Description)
}

func (s *WalletLedgerTestSuite) TestFailedAdjustmentLeavesNoTrace() {
	ctx := context.Background()
	conf := DefaultConfig()
	conf.AllowNegative = false
	s.service = NewWalletService(memrepo.NewLedgerRepository(), keylock.NewLocal(), conf, logrus.New())

	u := s.createUser()
	s.apply(u.ID, "10", "")

	attempts := []ApplyAdjustmentArgs{
		{UserID: u.ID, Amount: decimal.Zero},
		{UserID: u.ID, Amount: decimal.RequireFromString("0.005")},
		{UserID: u.ID, Amount: decimal.NewFromInt(-11)},
		{UserID: "missing", Amount: decimal.NewFromInt(1)},
	}
	for _, args := range attempts {
		_, _, err := s.service.ApplyAdjustment(ctx, args)
		s.Require().Error(err)
	}

	summary, err := s.service.GetSummary(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), summary.TotalTransactions)
	s.True(summary.TotalBalance.Equal(decimal.NewFromInt(10)))
	s.assertBalanceInvariant(u.ID)
}

func (s *WalletLedgerTestSuite) TestConcurrentDistinctUsers() {
	const n = 50
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = s.createUser()
	}

	var g errgroup.Group
	for i, u := range users {
		g.Go(func() error {
			for j := range 5 {
				_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
					UserID: u.ID,
					Amount: decimal.NewFromInt(int64(i + j + 1)),
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	for i, u := range users {
		got, err := s.service.GetUser(context.Background(), u.ID)
		s.Require().NoError(err)
		// (i+1) + (i+2) + ... + (i+5)
		want := decimal.NewFromInt(int64(5*i + 15))
		s.True(got.WalletBalance.Equal(want), "user %d: %s != %s", i, got.WalletBalance, want)
		s.assertBalanceInvariant(u.ID)
	}
}

func (s *WalletLedgerTestSuite) TestConcurrentSameUser() {
	const k = 100
	u := s.createUser()
	s.apply(u.ID, "1000", "initial")

	var g errgroup.Group
	expected := decimal.NewFromInt(1000)
	for i := range k {
		amount := decimal.NewFromFloat(float64(i%7) - 3.25)
		expected = expected.Add(amount)
		g.Go(func() error {
			_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
				UserID: u.ID,
				Amount: amount,
			})
			return err
		})
	}
	s.Require().NoError(g.Wait())

	got, err := s.service.GetUser(context.Background(), u.ID)
	s.Require().NoError(err)
	s.True(got.WalletBalance.Equal(expected), "%s != %s", got.WalletBalance, expected)

	transactions, listErr := s.service.ListTransactions(context.Background(), u.ID)
	s.Require().NoError(listErr)
	s.Len(transactions, k+1)
	s.assertBalanceInvariant(u.ID)
}

func (s *WalletLedgerTestSuite) TestConcurrentIdempotentRequests() {
	u := s.createUser()

	var g errgroup.Group
	ids := make([]string, 20)
	for i := range ids {
		g.Go(func() error {
			_, transaction, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
				UserID:         u.ID,
				Amount:         decimal.NewFromInt(10),
				Description:    "top up",
				IdempotencyKey: "same-request",
			})
			if err != nil {
				return err
			}
			ids[i] = transaction.ID
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	got, err := s.service.GetUser(context.Background(), u.ID)
	s.Require().NoError(err)
	s.True(got.WalletBalance.Equal(decimal.NewFromInt(10)))
}

func (s *WalletLedgerTestSuite) TestLockTimeoutWhileUserIsBusy() {
	locker := keylock.NewLocal()
	conf := DefaultConfig()
	conf.LockTimeout = 20 * time.Millisecond
	s.service = NewWalletService(memrepo.NewLedgerRepository(), locker, conf, logrus.New())
	u := s.createUser()

	unlock, err := locker.Lock(context.Background(), u.ID)
	s.Require().NoError(err)

	_, _, applyErr := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
		UserID: u.ID,
		Amount: decimal.NewFromInt(1),
	})
	s.Require().ErrorIs(applyErr, domain.ErrConcurrencyTimeout)
	unlock()

	// после освобождения блокировки операция проходит.
	s.apply(u.ID, "1", "")
}

func (s *WalletLedgerTestSuite) TestSummary() {
	ctx := context.Background()
	for i, amount := range []string{"1250.00", "750.50", "-125.25"} {
		u := s.createUser()
		s.apply(u.ID, amount, fmt.Sprintf("opening %d", i))
	}
	summary, err := s.service.GetSummary(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), summary.TotalUsers)
	s.Equal(int64(3), summary.TotalTransactions)
	s.True(summary.TotalBalance.Equal(decimal.RequireFromString("1875.25")))
}
