package config

import (
	"errors"
	"fmt"
	"time"

	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/database"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the API and the CLI tools.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"3000"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"inventory"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"inventory.db"`

	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"inventory"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"24h"`
	AdminUsername string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	LowStockCritical int `envconfig:"LOW_STOCK_CRITICAL" default:"5"`
	LowStockWarning  int `envconfig:"LOW_STOCK_WARNING" default:"10"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// missing files are fine
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case database.DriverPostgres, database.DriverSQLite, repository.DriverMongo:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be one of postgres, sqlite, mongo (got %q)", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be provided")
	}
	if c.LowStockCritical < 0 || c.LowStockWarning < c.LowStockCritical {
		return errors.New("config: LOW_STOCK_WARNING must be >= LOW_STOCK_CRITICAL >= 0")
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return errors.New("config: ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")
	}
	return nil
}

// DSN returns the connection string for the configured SQL driver.
func (c *Config) DSN() string {
	switch c.StoreDriver {
	case database.DriverSQLite:
		return c.SQLitePath
	default:
		if c.DatabaseURL != "" {
			return c.DatabaseURL
		}
		return database.PostgresDSN(c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// StoreOptions translates the store settings for repository.OpenStores.
func (c *Config) StoreOptions(migrate bool) repository.StoreOptions {
	return repository.StoreOptions{
		Driver:        c.StoreDriver,
		DSN:           c.DSN(),
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		Migrate:       migrate,
	}
}
