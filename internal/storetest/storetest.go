// Package storetest opens throwaway SQLite databases with the production
// schema for package tests.
package storetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/azattello/cargo3589-server/internal/database"
	"github.com/azattello/cargo3589-server/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a migrated in-memory database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises
	// transactions the way row locks would on Postgres.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Seed inserts users and branches.
func Seed(t testing.TB, db *gorm.DB, records ...any) {
	t.Helper()
	for _, r := range records {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

// Count returns the number of rows of the model's table.
func Count(t testing.TB, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

// Admin, Filial and Client build users for the three roles.
func Admin(id uint) *models.User {
	return &models.User{ID: id, Phone: fmt.Sprintf("+7%09d", id), Role: models.RoleAdmin}
}

func Filial(id uint, phone string) *models.User {
	return &models.User{ID: id, Phone: phone, Role: models.RoleFilial}
}

func Client(id uint, selected string) *models.User {
	return &models.User{ID: id, Phone: fmt.Sprintf("+7%09d", id), Role: models.RoleClient, SelectedFilial: selected}
}

// Branch builds a branch linked to phone.
func Branch(id uint, phone, label string) *models.Branch {
	return &models.Branch{
		ID:            id,
		FilialText:    label,
		FilialID:      fmt.Sprintf("F-%d", id),
		UserPhone:     phone,
		FilialAddress: label + " street 1",
		UserID:        id,
	}
}
