package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type UsersHandler struct {
	svs WalletServicer
}

func NewUsersHandler(svs WalletServicer) *UsersHandler {
	return &UsersHandler{svs: svs}
}

type UsersIndexParams struct {
	Search string `binding:"max_bytes=255" form:"search"`
}

// Index GET RouteGroup + UsersRoute. Список юзеров с необязательным поиском по имени или email.
func (h *UsersHandler) Index(c *gin.Context) {
	var params UsersIndexParams
	if bindErr := c.ShouldBindQuery(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	users, err := h.svs.ListUsers(ctx, params.Search)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]*UserResponse, len(users))
	for i := range users {
		response[i] = newUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, response)
}

type CreateUserParams struct {
	Name  string `binding:"required,max_bytes=255"        json:"name"`
	Email string `binding:"required,email,max_bytes=255"  json:"email"`
	Phone string `binding:"omitempty,max_bytes=64"        json:"phone"`
}

// Create POST RouteGroup + UsersRoute. Регистрирует юзера с нулевым балансом.
func (h *UsersHandler) Create(c *gin.Context) {
	var params CreateUserParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.CreateUser(ctx, service.CreateUserArgs{
		Name:  params.Name,
		Email: params.Email,
		Phone: params.Phone,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Show GET RouteGroup + UserRoute.
func (h *UsersHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.GetUser(ctx, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

type AdjustParams struct {
	// Amount со знаком: списание передается отрицательной суммой.
	Amount      *decimal.Decimal `binding:"required"                json:"amount"`
	Description string           `binding:"omitempty,max_bytes=255" json:"description"`
}

// Adjust POST RouteGroup + AdjustmentsRoute. Зачисление или списание. Необязательный заголовок
// IdempotencyKeyHeader защищает от повторного применения той же операции.
func (h *UsersHandler) Adjust(c *gin.Context) {
	var params AdjustParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
	if len(idempotencyKey) > maxIdempotencyKeyBytes {
		_ = c.AbortWithError(http.StatusBadRequest, errIdempotencyKeyTooLong).SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, transaction, err := h.svs.ApplyAdjustment(ctx, service.ApplyAdjustmentArgs{
		UserID:         c.Param("id"),
		Amount:         *params.Amount,
		Description:    params.Description,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, &AdjustmentResponse{
		User:        newUserResponse(user),
		Transaction: newTransactionResponse(transaction),
	})
}

// Transactions GET RouteGroup + UserTxRoute. Транзакции юзера от новых к старым.
func (h *UsersHandler) Transactions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.svs.ListTransactions(ctx, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionsResponse(transactions))
}
