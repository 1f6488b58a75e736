package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/groph-wallet/internal/config"
	"github.com/fsdevblog/groph-wallet/internal/repository/gormrepo"
	"github.com/fsdevblog/groph-wallet/internal/repository/memrepo"
	"github.com/fsdevblog/groph-wallet/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-wallet/internal/seed"
	"github.com/fsdevblog/groph-wallet/internal/service"
	"github.com/fsdevblog/groph-wallet/internal/transport/api"
	"github.com/fsdevblog/groph-wallet/internal/worker"
	"github.com/fsdevblog/groph-wallet/pkg/keylock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	seedTimeout       = time.Minute
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Run поднимает хранилище, блокировки и HTTP сервер и работает до SIGINT/SIGTERM. При штатной остановке
// возвращает context.Canceled.
func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"address": a.Config.RunAddress,
		"storage": a.Config.StorageDriver,
		"redis":   a.Config.RedisAddr != "",
		"auth":    a.Config.JWTSecret != "",
		"workers": a.Config.BatchWorkers,
	}).Info("starting app")

	store, closeStore, storeErr := a.openStorage(notifyCtx)
	if storeErr != nil {
		return fmt.Errorf("app run: %s", storeErr.Error())
	}
	defer closeStore()

	locker, closeLocker, lockerErr := a.newLocker(notifyCtx)
	if lockerErr != nil {
		return fmt.Errorf("app run: %s", lockerErr.Error())
	}
	defer closeLocker()

	services := service.Factory(store, locker, service.Config{
		AllowNegative: a.Config.AllowNegative,
		Scale:         a.Config.CurrencyScale,
		MaxAdjustment: a.Config.MaxAdjustment,
		LockTimeout:   a.Config.LockTimeout,
	}, a.Logger)
	batch := worker.New(services.WalletService, a.Logger).SetWorkers(a.Config.BatchWorkers)

	if a.Config.SeedFile != "" {
		if seedErr := a.seed(notifyCtx, services.WalletService, batch); seedErr != nil {
			return fmt.Errorf("app run: %s", seedErr.Error())
		}
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:        a.Logger,
		WalletService: services.WalletService,
		Batch:         batch,
		JWTSecretKey:  []byte(a.Config.JWTSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	srv := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(notifyCtx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		a.Logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}

// openStorage открывает хранилище согласно StorageDriver. Возвращаемая функция закрывает соединения.
func (a *App) openStorage(ctx context.Context) (service.LedgerRepository, func(), error) {
	switch a.Config.StorageDriver {
	case config.DriverMemory:
		return memrepo.NewLedgerRepository(), func() {}, nil
	case config.DriverPostgres:
		conn, connErr := pgrepo.Connect(ctx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
		if connErr != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", connErr)
		}
		unitOfWork, uowErr := pgrepo.InitUOW(conn)
		if uowErr != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("open postgres: %w", uowErr)
		}
		repo, repoErr := pgrepo.NewLedgerRepository(unitOfWork)
		if repoErr != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("open postgres: %w", repoErr)
		}
		return repo, conn.Close, nil
	case config.DriverMySQL, config.DriverSQLite:
		db, dbErr := gormrepo.Open(gormrepo.Dialect(a.Config.StorageDriver), a.Config.DatabaseDSN, a.Logger)
		if dbErr != nil {
			return nil, nil, fmt.Errorf("open %s: %w", a.Config.StorageDriver, dbErr)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return gormrepo.NewLedgerRepository(db), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, a.Config.StorageDriver)
	}
}

// newLocker блокировки в redis, если задан RedisAddr, иначе в памяти процесса.
func (a *App) newLocker(ctx context.Context) (service.Locker, func(), error) {
	if a.Config.RedisAddr == "" {
		return keylock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	closeFn := func() {
		_ = client.Close()
	}
	return keylock.NewRedis(client).SetLogger(a.Logger), closeFn, nil
}

func (a *App) seed(ctx context.Context, svs seed.Servicer, batch seed.Batcher) error {
	f, err := seed.LoadFile(a.Config.SeedFile)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()
	if runErr := seed.NewSeeder(svs, batch, a.Logger).Run(ctx, f); runErr != nil {
		return fmt.Errorf("seed: %w", runErr)
	}
	a.Logger.WithField("users", len(f.Users)).Info("seed applied")
	return nil
}
