package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BatchHandler struct {
	batch BatchApplier
}

func NewBatchHandler(batch BatchApplier) *BatchHandler {
	return &BatchHandler{batch: batch}
}

type BatchItemParams struct {
	UserID         string           `binding:"required,max_bytes=64"   json:"user_id"`
	Amount         *decimal.Decimal `binding:"required"                json:"amount"`
	Description    string           `binding:"omitempty,max_bytes=255" json:"description"`
	IdempotencyKey string           `binding:"omitempty,max_bytes=255" json:"idempotency_key"`
}

type BatchParams struct {
	Items []BatchItemParams `binding:"required,min=1,max=1000,dive" json:"items"`
}

type BatchItemResponse struct {
	Index       int                  `json:"index"`
	Status      int                  `json:"status"`
	Error       string               `json:"error,omitempty"`
	User        *UserResponse        `json:"user,omitempty"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// Create POST RouteGroup + BatchRoute. Применяет пачку корректировок. Ответ всегда 200, у каждого элемента
// свой статус.
func (h *BatchHandler) Create(c *gin.Context) {
	var params BatchParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	items := make([]service.ApplyAdjustmentArgs, len(params.Items))
	for i, item := range params.Items {
		items[i] = service.ApplyAdjustmentArgs{
			UserID:         item.UserID,
			Amount:         *item.Amount,
			Description:    item.Description,
			IdempotencyKey: item.IdempotencyKey,
		}
	}

	ctx, cancel := context.WithTimeout(c, BatchServiceTimeout)
	defer cancel()

	results := h.batch.Apply(ctx, items)
	response := make([]BatchItemResponse, len(results))
	for i, result := range results {
		item := BatchItemResponse{Index: result.Index, Status: http.StatusOK}
		if result.Error != nil {
			status, public := serviceErrorStatus(result.Error)
			item.Status = status
			item.Error = http.StatusText(status)
			if public != nil {
				item.Error = public.Error()
			}
		} else {
			item.User = newUserResponse(result.User)
			item.Transaction = newTransactionResponse(result.Transaction)
		}
		response[i] = item
	}
	c.JSON(http.StatusOK, gin.H{"results": response})
}
