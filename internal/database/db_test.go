package database

import (
	"testing"

	"github.com/azattello/cargo3589-server/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMemory(t, "migrate_idempotent")

	require.NoError(t, Migrate(db, zap.NewNop()))
	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, m := range []any{&models.User{}, &models.Branch{}, &models.GlobalSettings{}, &models.Contacts{}} {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Branch{}, "UserPhone"))
}

func TestMigrate_RefusesDuplicatePhones(t *testing.T) {
	db := openMemory(t, "migrate_dupes")
	require.NoError(t, db.Exec(`CREATE TABLE filials (
		id integer PRIMARY KEY,
		filial_text text NOT NULL,
		filial_id text NOT NULL,
		user_phone text NOT NULL,
		filial_address text NOT NULL,
		user_id integer NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO filials VALUES
		(1, 'Downtown', 'F-1', '+1000', 'Main st', 1),
		(2, 'Airport', 'F-2', '+1000', 'Terminal', 2)`).Error)

	core, logs := observer.New(zapcore.ErrorLevel)
	err := Migrate(db, zap.New(core))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate branch phones")
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, []any{"+1000"}, entries[0].ContextMap()["phones"])
}
