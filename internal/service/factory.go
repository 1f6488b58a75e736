package service

import (
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	WalletService *WalletService
}

func Factory(repo LedgerRepository, locker Locker, conf Config, l *logrus.Logger) *AppServices {
	return &AppServices{
		WalletService: NewWalletService(repo, locker, conf, l),
	}
}
