package testhelpers

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/repository/postgres"
	"github.com/geo-gateway/migrations"
)

// NewDBForTest creates a postgres.DB with the schema applied
func NewDBForTest(t *testing.T, db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	t.Helper()
	pgDB := postgres.NewDBForTest(db, logger)
	if err := pgDB.ApplyMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return pgDB
}

// NewHistoryRepositoryForTest creates a history repository with test database and logger
func NewHistoryRepositoryForTest(t *testing.T, db *sqlx.DB, logger *zap.Logger) repository.HistoryRepository {
	t.Helper()
	return postgres.NewHistoryRepository(NewDBForTest(t, db, logger))
}
