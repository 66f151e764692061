package repository

import (
	"context"
	"fmt"
	"log/slog"

	"go-pos-inventory/pkg/database"
)

// DriverMongo selects the MongoDB stores; the SQL drivers are in pkg/database.
const DriverMongo = "mongo"

// StoreOptions selects the backing store.
type StoreOptions struct {
	Driver        string // postgres, sqlite or mongo
	DSN           string
	MongoURI      string
	MongoDatabase string
	Migrate       bool
}

// Stores bundles the repositories of one backing store.
type Stores struct {
	Products     ProductRepository
	Transactions TransactionRepository
	Users        UserRepository
	close        func(context.Context) error
}

// Close releases the underlying connection.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStores connects to the configured store and builds its repositories.
// With Migrate set, the schema (SQL) or indexes (MongoDB) are ensured first.
func OpenStores(ctx context.Context, opts StoreOptions, log *slog.Logger) (*Stores, error) {
	if opts.Driver == DriverMongo {
		client, db, err := database.ConnectMongo(ctx, opts.MongoURI, opts.MongoDatabase, log)
		if err != nil {
			return nil, err
		}
		if opts.Migrate {
			if err := EnsureMongoIndexes(ctx, db); err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("repository: mongo indexes: %w", err)
			}
		}
		return &Stores{
			Products:     NewMongoProductRepo(db),
			Transactions: NewMongoTransactionRepo(db),
			Users:        NewMongoUserRepo(db),
			close:        client.Disconnect,
		}, nil
	}

	db, err := database.Open(database.Options{Driver: opts.Driver, DSN: opts.DSN}, log)
	if err != nil {
		return nil, err
	}
	if opts.Migrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("repository: migrate: %w", err)
		}
	}
	return &Stores{
		Products:     NewProductRepo(db),
		Transactions: NewTransactionRepo(db),
		Users:        NewUserRepo(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}
