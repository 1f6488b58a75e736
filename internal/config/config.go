package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fsdevblog/groph-wallet/internal/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrDSNNotSet     = errors.New("database DSN is not set")
	ErrInvalidScale  = errors.New("invalid currency scale")
	ErrInvalidLimit  = errors.New("invalid adjustment limit")
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	StorageDriver string `env:"STORAGE_DRIVER"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	JWTSecret     string `env:"JWT_SECRET"`
	SeedFile      string `env:"SEED_FILE"`
	LogLevel      string `env:"LOG_LEVEL"`

	AllowNegative bool            `env:"ALLOW_NEGATIVE" envDefault:"true"`
	CurrencyScale int32           `env:"CURRENCY_SCALE" envDefault:"2"`
	MaxAdjustment decimal.Decimal `env:"MAX_ADJUSTMENT" envDefault:"1000000000"`
	LockTimeout   time.Duration   `env:"LOCK_TIMEOUT"   envDefault:"0s"`
	BatchWorkers  uint            `env:"BATCH_WORKERS"  envDefault:"8"`
}

func LoadConfig() (*Config, error) {
	return loadConfig(flag.CommandLine, os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %s", err.Error())
	}

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if err := loadFlags(fs, args, &flagsConfig); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := validate(conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func loadFlags(fs *flag.FlagSet, args []string, flagConfig *Config) error {
	fs.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	fs.StringVar(&flagConfig.StorageDriver, "s", DriverMemory, "Storage driver: memory, postgres, mysql, sqlite")
	fs.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fs.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	fs.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address for distributed locks, in-process locks if empty")
	fs.StringVar(&flagConfig.JWTSecret, "j", "", "Operator JWT secret, auth is disabled if empty")
	fs.StringVar(&flagConfig.SeedFile, "seed", "", "YAML file with users and opening balances")

	return fs.Parse(args) //nolint:wrapcheck
}

// mergeConfig строковые значения из env имеют приоритет над флагами. Остальные поля задаются только через env.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.StorageDriver = defaultIfBlank(envConfig.StorageDriver, flagsConfig.StorageDriver)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	conf.RedisAddr = defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr)
	conf.JWTSecret = defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret)
	conf.SeedFile = defaultIfBlank(envConfig.SeedFile, flagsConfig.SeedFile)
	return &conf
}

func validate(conf *Config) error {
	if conf.CurrencyScale < 0 || conf.CurrencyScale > domain.MaxCurrencyScale {
		return fmt.Errorf("%w: %d, expected 0..%d", ErrInvalidScale, conf.CurrencyScale, domain.MaxCurrencyScale)
	}
	if conf.MaxAdjustment.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidLimit, conf.MaxAdjustment)
	}

	switch conf.StorageDriver {
	case DriverMemory:
		return nil
	case DriverPostgres, DriverMySQL, DriverSQLite:
		if conf.DatabaseDSN == "" {
			return fmt.Errorf("%w for driver %s", ErrDSNNotSet, conf.StorageDriver)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, conf.StorageDriver)
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
