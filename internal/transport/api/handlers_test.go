package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/fsdevblog/groph-wallet/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-wallet/internal/transport/api/tokens"
	"github.com/fsdevblog/groph-wallet/internal/worker"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *UsersHandlerTestSuite) TestTransactionsIndex() {
	all := []domain.Transaction{
		{ID: "t3", UserID: "2", Amount: decimal.NewFromInt(5), CreatedAt: time.Now()},
		{ID: "t2", UserID: "1", Amount: decimal.NewFromInt(-30), CreatedAt: time.Now()},
	}
	s.mockService.EXPECT().ListTransactions(gomock.Any(), "").Return(all, nil)
	s.mockService.EXPECT().ListTransactions(gomock.Any(), "2").Return(all[:1], nil)

	res := s.request(http.MethodGet, RouteGroup+TransactionsRoute, "")
	var body []TransactionResponse
	s.Require().NoError(testutils.DecodeJSON(res, &body))
	s.Len(body, 2)

	res = s.request(http.MethodGet, RouteGroup+TransactionsRoute+"?user_id=2", "")
	body = nil
	s.Require().NoError(testutils.DecodeJSON(res, &body))
	s.Require().Len(body, 1)
	s.Equal("t3", body[0].ID)
	s.Equal(string(domain.TransactionTypeCredit), body[0].TransactionType)
}

func (s *UsersHandlerTestSuite) TestSummaryShow() {
	s.mockService.EXPECT().GetSummary(gomock.Any()).Return(&domain.Summary{
		TotalUsers:        3,
		TotalBalance:      decimal.RequireFromString("1875.25"),
		TotalTransactions: 5,
	}, nil)

	res := s.request(http.MethodGet, RouteGroup+SummaryRoute, "")
	s.Equal(http.StatusOK, res.StatusCode)
	var body SummaryResponse
	s.Require().NoError(testutils.DecodeJSON(res, &body))
	s.Equal(int64(3), body.TotalUsers)
	s.Equal("1875.25", body.TotalBalance.String())
	s.Equal(int64(5), body.TotalTransactions)
}

func (s *UsersHandlerTestSuite) TestSummaryError() {
	s.mockService.EXPECT().GetSummary(gomock.Any()).Return(nil, errors.New("connection refused"))

	res := s.request(http.MethodGet, RouteGroup+SummaryRoute, "")
	var body map[string]string
	s.Require().NoError(testutils.DecodeJSON(res, &body))
	s.Equal(http.StatusInternalServerError, res.StatusCode)
	s.Equal("internal server error", body["error"], "внутренние ошибки не раскрываются")
}

type batchResponse struct {
	Results []BatchItemResponse `json:"results"`
}

func (s *UsersHandlerTestSuite) TestBatchCreate() {
	s.mockBatch.EXPECT().Apply(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, items []service.ApplyAdjustmentArgs) []worker.Result {
			s.Require().Len(items, 3)
			s.Equal("1", items[0].UserID)
			s.Equal("key-1", items[0].IdempotencyKey)
			s.True(items[2].Amount.Equal(decimal.NewFromInt(-500)))
			return []worker.Result{
				{
					Index:       0,
					User:        testUser("1", "100"),
					Transaction: &domain.Transaction{ID: "t1", UserID: "1", Amount: items[0].Amount},
				},
				{Index: 1, Error: domain.ErrUserNotFound},
				{Index: 2, Error: errors.New("boom")},
			}
		})

	payload := `{"items":[
		{"user_id":"1","amount":100,"idempotency_key":"key-1"},
		{"user_id":"missing","amount":1},
		{"user_id":"1","amount":"-500"}
	]}`
	res := s.request(http.MethodPost, RouteGroup+BatchRoute, payload)
	s.Equal(http.StatusOK, res.StatusCode)

	var body batchResponse
	s.Require().NoError(testutils.DecodeJSON(res, &body))
	s.Require().Len(body.Results, 3)

	s.Equal(http.StatusOK, body.Results[0].Status)
	s.Require().NotNil(body.Results[0].Transaction)
	s.Equal("t1", body.Results[0].Transaction.ID)

	s.Equal(http.StatusNotFound, body.Results[1].Status)
	s.Equal(domain.ErrUserNotFound.Error(), body.Results[1].Error)
	s.Nil(body.Results[1].User)

	s.Equal(http.StatusInternalServerError, body.Results[2].Status)
	s.Equal(http.StatusText(http.StatusInternalServerError), body.Results[2].Error)
}

func (s *UsersHandlerTestSuite) TestBatchCreate_BadRequest() {
	cases := []struct {
		name    string
		payload string
	}{
		{name: "no items", payload: `{}`},
		{name: "empty items", payload: `{"items":[]}`},
		{name: "item without amount", payload: `{"items":[{"user_id":"1"}]}`},
		{name: "item without user", payload: `{"items":[{"amount":1}]}`},
		{name: "too many items", payload: `{"items":[` + strings.Repeat(`{"user_id":"1","amount":1},`, 1000) +
			`{"user_id":"1","amount":1}]}`},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.request(http.MethodPost, RouteGroup+BatchRoute, t.payload)
			defer res.Body.Close()
			s.Equal(http.StatusBadRequest, res.StatusCode)
		})
	}
}

func (s *UsersHandlerTestSuite) TestAuth() {
	secret := []byte("operator-secret")
	router, err := New(RouterArgs{WalletService: s.mockService, Batch: s.mockBatch, JWTSecretKey: secret})
	s.Require().NoError(err)

	validToken, err := tokens.GenerateOperatorJWT("alice", time.Hour, secret)
	s.Require().NoError(err)
	foreignToken, err := tokens.GenerateOperatorJWT("alice", time.Hour, []byte("other-secret"))
	s.Require().NoError(err)
	expiredToken, err := tokens.GenerateOperatorJWT("alice", -time.Minute, secret)
	s.Require().NoError(err)

	s.mockService.EXPECT().GetSummary(gomock.Any()).Return(&domain.Summary{}, nil)

	cases := []struct {
		name       string
		opts       []func(*testutils.RequestOptions)
		wantStatus int
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized},
		{
			name:       "foreign token",
			opts:       []func(*testutils.RequestOptions){testutils.WithBearer(foreignToken)},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			opts:       []func(*testutils.RequestOptions){testutils.WithBearer(expiredToken)},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			opts:       []func(*testutils.RequestOptions){testutils.WithBearer(validToken)},
			wantStatus: http.StatusOK,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := testutils.MakeRequest(testutils.RequestArgs{
				Router: router,
				Method: http.MethodGet,
				URL:    RouteGroup + SummaryRoute,
			}, t.opts...)
			defer res.Body.Close()
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
