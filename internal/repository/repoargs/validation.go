package repoargs

import (
	"fmt"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/shopspring/decimal"
)

// ValidateAmount проверяет сумму перед любыми изменениями состояния: ненулевая и не точнее scale знаков.
func ValidateAmount(amount decimal.Decimal, scale int32) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: amount must not be zero", domain.ErrInvalidAmount)
	}
	if scale >= 0 && !amount.Equal(amount.Truncate(scale)) {
		return fmt.Errorf("%w: amount %s has more than %d fractional digits", domain.ErrInvalidAmount, amount, scale)
	}
	return nil
}

// NewBalance вычисляет баланс после применения суммы и проверяет овердрафт.
func NewBalance(current decimal.Decimal, args RecordAdjustment) (decimal.Decimal, error) {
	balance := current.Add(args.Amount)
	if !args.AllowNegative && balance.IsNegative() {
		return decimal.Zero, fmt.Errorf(
			"%w: balance %s, adjustment %s",
			domain.ErrInsufficientBalance,
			current,
			args.Amount,
		)
	}
	return balance, nil
}
