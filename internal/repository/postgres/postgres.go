package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/geo-gateway/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	connectAttempts = 3
	connectBackoff  = 2 * time.Second
	pingTimeout     = 5 * time.Second
)

// DB - пул соединений с базой истории
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// New подключается к PostgreSQL; при старте в docker-compose база может подняться позже сервиса,
// поэтому подключение повторяется connectAttempts раз.
func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = open(cfg)
		if err == nil {
			break
		}
		logger.Warn("PostgreSQL not ready",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < connectAttempts {
			time.Sleep(connectBackoff * time.Duration(attempt))
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns),
	)

	return &DB{DB: db, logger: logger}, nil
}

func open(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close закрывает пул
func (db *DB) Close() error {
	db.logger.Info("Closing PostgreSQL connection")
	return db.DB.Close()
}

// Health пингует базу, используется в /health
func (db *DB) Health(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// WithTx выполняет fn в транзакции; ошибка fn или паника откатывают транзакцию
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewDBForTest оборачивает готовое подключение (интеграционные тесты)
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		logger: logger,
	}
}
