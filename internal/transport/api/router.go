package api

import (
	"time"

	"github.com/fsdevblog/groph-wallet/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	BatchServiceTimeout   = 30 * time.Second
)

const (
	RouteGroup        = "/api"
	UsersRoute        = "/users"
	UserRoute         = "/users/:id"
	AdjustmentsRoute  = "/users/:id/adjustments"
	UserTxRoute       = "/users/:id/transactions"
	TransactionsRoute = "/transactions"
	BatchRoute        = "/adjustments/batch"
	SummaryRoute      = "/summary"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type RouterArgs struct {
	Logger        *logrus.Logger
	WalletService WalletServicer
	Batch         BatchApplier
	// JWTSecretKey пустой ключ отключает авторизацию операторов.
	JWTSecretKey []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	usersHandler := NewUsersHandler(args.WalletService)
	transactionsHandler := NewTransactionsHandler(args.WalletService)
	summaryHandler := NewSummaryHandler(args.WalletService)
	batchHandler := NewBatchHandler(args.Batch)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))

	api.GET(UsersRoute, usersHandler.Index)
	api.POST(UsersRoute, usersHandler.Create)
	api.GET(UserRoute, usersHandler.Show)
	api.POST(AdjustmentsRoute, usersHandler.Adjust)
	api.GET(UserTxRoute, usersHandler.Transactions)

	api.GET(TransactionsRoute, transactionsHandler.Index)
	api.POST(BatchRoute, batchHandler.Create)
	api.GET(SummaryRoute, summaryHandler.Show)
	return r, nil
}
