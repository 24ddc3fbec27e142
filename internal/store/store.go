package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"sheily-auth/internal/config"
	"sheily-auth/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// Open selects the backend once from configuration and returns a ready
// store. Callers never see which engine is behind it; this switch is the
// only place the two dialects diverge.
func Open(cfg config.Config) (*Store, error) {
	var dial gorm.Dialector
	switch cfg.DBBackend {
	case config.BackendSQLite:
		// _busy_timeout keeps a second writer waiting instead of failing.
		dial = sqlite.Open(cfg.SQLitePath + "?_busy_timeout=5000")
	case config.BackendPostgres:
		dial = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown db backend %q", cfg.DBBackend)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBBackend, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBBackend == config.BackendSQLite {
		// SQLite is single-writer; one pooled connection serializes all
		// access so concurrent lifecycle operations cannot interleave.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DBBackend, err)
	}

	return &Store{DB: gdb}, nil
}

// Migrate creates the schema. Unique indexes on users.username and
// users.email are the authoritative guard against duplicate
// registrations; pre-checks in the service layer are a fast path only.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&domain.User{},
		&domain.ChatSession{},
		&domain.ChatMessage{},
		&domain.Branch{},
	)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
