package worker

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/fsdevblog/groph-wallet/internal/service"
)

type Applier interface {
	ApplyAdjustment(
		ctx context.Context,
		args service.ApplyAdjustmentArgs,
	) (*domain.User, *domain.Transaction, error)
}
