// Package gormrepo хранилище леджера поверх gorm. Поддерживает mysql и sqlite.
package gormrepo

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// Open открывает соединение и создает недостающие таблицы.
func Open(dialect Dialect, dsn string, l *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectMySQL:
		dialector = mysql.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("open gorm: unsupported dialect `%s`", dialect)
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if l.IsLevelEnabled(logrus.DebugLevel) {
		gormLogger = logger.New(l, logger.Config{
			SlowThreshold: 200 * time.Millisecond, //nolint:mnd
			LogLevel:      logger.Info,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if dialect == DialectSQLite {
		// sqlite не поддерживает конкурентную запись, все транзакции идут через одно соединение.
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
		_, _ = sqlDB.Exec("PRAGMA busy_timeout = 5000;")
	} else {
		sqlDB.SetMaxOpenConns(25) //nolint:mnd
		sqlDB.SetMaxIdleConns(5)  //nolint:mnd
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if migrateErr := db.AutoMigrate(&userModel{}, &transactionModel{}); migrateErr != nil {
		return nil, fmt.Errorf("gorm migrate: %w", migrateErr)
	}
	return db, nil
}
