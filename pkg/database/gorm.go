package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported relational drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects and tunes the relational store.
type Options struct {
	Driver        string
	DSN           string
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

// Open connects GORM to PostgreSQL or SQLite and configures the pool.
func Open(opts Options, log *slog.Logger) (*gorm.DB, error) {
	if opts.SlowThreshold == 0 {
		opts.SlowThreshold = time.Second
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true, // Disables implicit prepared statements for pooled (transaction mode) proxies
		})
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	if opts.Driver == DriverSQLite {
		// One writer at a time; also keeps an in-memory database alive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("database connection established", "driver", opts.Driver)
	return db, nil
}

// PostgresDSN builds a key/value DSN from discrete settings.
func PostgresDSN(host, user, password, name, port string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, name, port,
	)
}
