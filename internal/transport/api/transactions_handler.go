package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct {
	svs WalletServicer
}

func NewTransactionsHandler(svs WalletServicer) *TransactionsHandler {
	return &TransactionsHandler{svs: svs}
}

type TransactionsIndexParams struct {
	UserID string `binding:"max_bytes=64" form:"user_id"`
}

// Index GET RouteGroup + TransactionsRoute. Все транзакции или транзакции одного юзера (?user_id=).
func (h *TransactionsHandler) Index(c *gin.Context) {
	var params TransactionsIndexParams
	if bindErr := c.ShouldBindQuery(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.svs.ListTransactions(ctx, params.UserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionsResponse(transactions))
}
