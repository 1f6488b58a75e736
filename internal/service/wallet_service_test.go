package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/groph-wallet/internal/service/mocks"
	"github.com/fsdevblog/groph-wallet/pkg/keylock"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

type WalletServiceTestSuite struct {
	suite.Suite
	mockRepo   *mocks.MockLedgerRepository
	mockLocker *mocks.MockLocker
	logHook    *test.Hook
	service    *WalletService
	unlocked   int
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockRepo = mocks.NewMockLedgerRepository(mockCtrl)
	s.mockLocker = mocks.NewMockLocker(mockCtrl)
	s.unlocked = 0

	l, hook := test.NewNullLogger()
	s.logHook = hook
	s.service = NewWalletService(s.mockRepo, s.mockLocker, DefaultConfig(), l)
}

// expectLock мок блокировки юзера, считающий освобождения.
func (s *WalletServiceTestSuite) expectLock(userID string) {
	s.mockLocker.EXPECT().Lock(gomock.Any(), userID).
		Return(keylock.Unlock(func() { s.unlocked++ }), nil)
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentDefaultDescription() {
	cases := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{name: "credit", amount: decimal.NewFromInt(100), want: domain.DefaultCreditDescription},
		{name: "debit", amount: decimal.NewFromInt(-50), want: domain.DefaultDebitDescription},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.expectLock("u1")
			s.mockRepo.EXPECT().
				RecordAndAdjust(gomock.Any(), repoargs.RecordAdjustment{
					UserID:        "u1",
					Amount:        tc.amount,
					Description:   tc.want,
					AllowNegative: true,
					Scale:         DefaultCurrencyScale,
				}).
				Return(
					&domain.User{ID: "u1", WalletBalance: tc.amount},
					&domain.Transaction{ID: "t1", UserID: "u1", Amount: tc.amount, Description: tc.want},
					nil,
				)

			_, transaction, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
				UserID: "u1",
				Amount: tc.amount,
			})
			s.Require().NoError(err)
			s.Equal(tc.want, transaction.Description)
		})
	}
	s.Equal(2, s.unlocked)
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentInvalidAmount() {
	cases := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "zero", amount: decimal.Zero},
		{name: "too precise", amount: decimal.RequireFromString("0.001")},
		{name: "too large", amount: decimal.NewFromInt(DefaultMaxAdjustment + 1)},
		{name: "too large debit", amount: decimal.NewFromInt(-DefaultMaxAdjustment - 1)},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			// Ни блокировка, ни хранилище не должны вызываться.
			_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
				UserID: "u1",
				Amount: tc.amount,
			})
			s.Require().ErrorIs(err, domain.ErrInvalidAmount)
		})
	}
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentStoreErrorReleasesLock() {
	for _, storeErr := range []error{domain.ErrUserNotFound, domain.ErrInsufficientBalance} {
		s.expectLock("u1")
		s.mockRepo.EXPECT().RecordAndAdjust(gomock.Any(), gomock.Any()).Return(nil, nil, storeErr)

		_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
			UserID: "u1",
			Amount: decimal.NewFromInt(-10),
		})
		s.Require().ErrorIs(err, storeErr)
	}
	s.Equal(2, s.unlocked)
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentLockTimeout() {
	conf := DefaultConfig()
	conf.LockTimeout = 10 * time.Millisecond
	s.service = NewWalletService(s.mockRepo, s.mockLocker, conf, logrus.New())

	s.mockLocker.EXPECT().Lock(gomock.Any(), "u1").
		DoAndReturn(func(ctx context.Context, _ string) (keylock.Unlock, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
		UserID: "u1",
		Amount: decimal.NewFromInt(1),
	})
	s.Require().ErrorIs(err, domain.ErrConcurrencyTimeout)
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.mockLocker.EXPECT().Lock(gomock.Any(), "u1").Return(nil, context.Canceled)

	_, _, err := s.service.ApplyAdjustment(ctx, ApplyAdjustmentArgs{UserID: "u1", Amount: decimal.NewFromInt(1)})
	s.Require().ErrorIs(err, context.Canceled)
	s.Require().NotErrorIs(err, domain.ErrConcurrencyTimeout)
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentIdempotency() {
	amount := decimal.NewFromInt(25)
	recorded := &domain.Transaction{
		ID:             "t1",
		UserID:         "u1",
		Amount:         amount,
		Description:    "bonus",
		IdempotencyKey: "k1",
	}
	current := &domain.User{ID: "u1", WalletBalance: decimal.NewFromInt(125)}

	s.Run("replay before lock", func() {
		s.mockRepo.EXPECT().FindByIdempotencyKey(gomock.Any(), "u1", "k1").Return(recorded, nil)
		s.mockRepo.EXPECT().GetUser(gomock.Any(), "u1").Return(current, nil)

		user, transaction, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
			UserID:         "u1",
			Amount:         amount,
			Description:    "bonus",
			IdempotencyKey: "k1",
		})
		s.Require().NoError(err)
		s.Equal("t1", transaction.ID)
		s.True(user.WalletBalance.Equal(current.WalletBalance))
	})

	s.Run("replay after race inside store", func() {
		s.mockRepo.EXPECT().FindByIdempotencyKey(gomock.Any(), "u1", "k1").
			Return(nil, domain.ErrRecordNotFound)
		s.expectLock("u1")
		s.mockRepo.EXPECT().RecordAndAdjust(gomock.Any(), gomock.Any()).
			Return(nil, nil, domain.NewDuplicateAdjustmentError(recorded))
		s.mockRepo.EXPECT().GetUser(gomock.Any(), "u1").Return(current, nil)

		_, transaction, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
			UserID:         "u1",
			Amount:         amount,
			Description:    "bonus",
			IdempotencyKey: "k1",
		})
		s.Require().NoError(err)
		s.Equal("t1", transaction.ID)
	})

	s.Run("conflict", func() {
		s.mockRepo.EXPECT().FindByIdempotencyKey(gomock.Any(), "u1", "k1").Return(recorded, nil)

		_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
			UserID:         "u1",
			Amount:         decimal.NewFromInt(26),
			Description:    "bonus",
			IdempotencyKey: "k1",
		})
		s.Require().ErrorIs(err, domain.ErrIdempotencyConflict)
	})

	s.Run("lookup failure", func() {
		s.mockRepo.EXPECT().FindByIdempotencyKey(gomock.Any(), "u1", "k1").Return(nil, domain.ErrUnknown)

		_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
			UserID:         "u1",
			Amount:         amount,
			IdempotencyKey: "k1",
		})
		s.Require().ErrorIs(err, domain.ErrUnknown)
	})
}

func (s *WalletServiceTestSuite) TestApplyAdjustmentLogs() {
	s.expectLock("u1")
	s.mockRepo.EXPECT().RecordAndAdjust(gomock.Any(), gomock.Any()).Return(
		&domain.User{ID: "u1", WalletBalance: decimal.NewFromInt(5)},
		&domain.Transaction{ID: "t1", UserID: "u1", Amount: decimal.NewFromInt(5)},
		nil,
	)
	_, _, err := s.service.ApplyAdjustment(context.Background(), ApplyAdjustmentArgs{
		UserID: "u1",
		Amount: decimal.NewFromInt(5),
	})
	s.Require().NoError(err)

	entry := s.logHook.LastEntry()
	s.Require().NotNil(entry)
	s.Equal("adjustment applied", entry.Message)
	s.Equal("t1", entry.Data["transactionID"])
}

func (s *WalletServiceTestSuite) TestListUsers() {
	users := []domain.User{
		{ID: "1", Name: "John Doe", Email: "john.doe@example.com"},
		{ID: "2", Name: "Jane Smith", Email: "jane.smith@example.com"},
		{ID: "3", Name: "Bob Johnson", Email: "bob@EXAMPLE.org"},
	}
	s.mockRepo.EXPECT().ListUsers(gomock.Any()).Return(users, nil).AnyTimes()

	cases := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty", search: "", want: []string{"1", "2", "3"}},
		{name: "blank", search: "   ", want: []string{"1", "2", "3"}},
		{name: "by name case insensitive", search: "JOHN", want: []string{"1", "3"}},
		{name: "by email", search: "example.org", want: []string{"3"}},
		{name: "no match", search: "alice", want: []string{}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			got, err := s.service.ListUsers(context.Background(), tc.search)
			s.Require().NoError(err)
			ids := make([]string, 0, len(got))
			for _, u := range got {
				ids = append(ids, u.ID)
			}
			s.Equal(tc.want, ids)
		})
	}
}

func (s *WalletServiceTestSuite) TestListUsersError() {
	s.mockRepo.EXPECT().ListUsers(gomock.Any()).Return(nil, domain.ErrUnknown)
	_, err := s.service.ListUsers(context.Background(), "x")
	s.Require().ErrorIs(err, domain.ErrUnknown)
}

func (s *WalletServiceTestSuite) TestGetSummary() {
	s.mockRepo.EXPECT().Totals(gomock.Any()).Return(&repoargs.LedgerTotals{
		Users:        3,
		Transactions: 7,
		Balance:      decimal.RequireFromString("1875.25"),
	}, nil)

	summary, err := s.service.GetSummary(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(3), summary.TotalUsers)
	s.Equal(int64(7), summary.TotalTransactions)
	s.True(summary.TotalBalance.Equal(decimal.RequireFromString("1875.25")))
}

func (s *WalletServiceTestSuite) TestCreateUser() {
	s.Run("trims input", func() {
		s.mockRepo.EXPECT().CreateUser(gomock.Any(), repoargs.CreateUser{
			Name:  "John Doe",
			Email: "john@example.com",
		}).Return(&domain.User{ID: "u1", Name: "John Doe"}, nil)

		user, err := s.service.CreateUser(context.Background(), CreateUserArgs{
			Name:  " John Doe ",
			Email: "john@example.com ",
		})
		s.Require().NoError(err)
		s.Equal("u1", user.ID)
	})

	s.Run("missing email", func() {
		_, err := s.service.CreateUser(context.Background(), CreateUserArgs{Name: "John"})
		s.Require().ErrorIs(err, domain.ErrInvalidUser)
	})

	s.Run("duplicate", func() {
		s.mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDuplicateKey)
		_, err := s.service.CreateUser(context.Background(), CreateUserArgs{Name: "John", Email: "j@example.com"})
		s.Require().ErrorIs(err, domain.ErrDuplicateKey)
	})
}
