package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SummaryHandler struct {
	svs WalletServicer
}

func NewSummaryHandler(svs WalletServicer) *SummaryHandler {
	return &SummaryHandler{svs: svs}
}

type SummaryResponse struct {
	TotalUsers        int64           `json:"total_users"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	TotalTransactions int64           `json:"total_transactions"`
}

// Show GET RouteGroup + SummaryRoute.
func (h *SummaryHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, err := h.svs.GetSummary(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, &SummaryResponse{
		TotalUsers:        summary.TotalUsers,
		TotalBalance:      summary.TotalBalance,
		TotalTransactions: summary.TotalTransactions,
	})
}
