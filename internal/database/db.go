package database

import (
	"fmt"

	"github.com/azattello/cargo3589-server/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres and runs the migrations.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db, log); err != nil {
		return nil, err
	}

	log.Info("database connected, migrations done")
	return db, nil
}

// Migrate creates or updates the tables this service touches. users and
// filials are owned by other services; AutoMigrate only adds what is
// missing there.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	// The unique index on filials.user_phone fails on legacy duplicates.
	// Report them instead of letting AutoMigrate fail with a bare SQL error.
	if db.Migrator().HasTable(&models.Branch{}) && !db.Migrator().HasIndex(&models.Branch{}, "UserPhone") {
		var dupes []string
		if err := db.Model(&models.Branch{}).
			Select("user_phone").
			Group("user_phone").
			Having("COUNT(*) > 1").
			Pluck("user_phone", &dupes).Error; err != nil {
			return fmt.Errorf("check duplicate branch phones: %w", err)
		}
		if len(dupes) > 0 {
			log.Error("duplicate filials.user_phone values, fix them before migrating",
				zap.Strings("phones", dupes))
			return fmt.Errorf("%d duplicate branch phones block the unique index", len(dupes))
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.GlobalSettings{},
		&models.Contacts{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
