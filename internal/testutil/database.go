// Package testutil provides test helpers for setting up in-memory
// databases, creating fixtures, and making assertions.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
	"github.com/mcp-tool-shop-org/budgetwise/internal/store"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite database with every store row
// migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying test DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(store.AllRows()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// NewUnitOfWork begins a fresh unit of work against db, for tests that
// exercise repository.UnitOfWork directly rather than through the
// orchestrator.
func NewUnitOfWork(t *testing.T, db *gorm.DB) repository.UnitOfWork {
	t.Helper()
	factory := store.NewFactory(db)
	uow, err := factory.Begin(context.Background())
	if err != nil {
		t.Fatalf("failed to begin unit of work: %v", err)
	}
	return uow
}
