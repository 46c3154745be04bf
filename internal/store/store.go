// Package store is the GORM-backed document layer for users, branches and
// the two singleton records.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/azattello/cargo3589-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB

	// lock adds SELECT ... FOR UPDATE to lookups; set inside Transaction.
	lock bool
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a Store bound to one transaction whose
// lookups lock the rows they return. Any error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, lock: true})
	})
}

func (s *Store) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *Store) first(ctx context.Context, dst any, conds ...any) error {
	err := s.query(ctx).First(dst, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// User loads a user by id.
func (s *Store) User(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.first(ctx, &u, "id = ?", id); err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// BranchByPhone returns the branch managed by the user with that phone.
// user_phone is unique; ordering by id keeps the pick stable on data
// migrated before the index existed.
func (s *Store) BranchByPhone(ctx context.Context, phone string) (*models.Branch, error) {
	var b models.Branch
	err := s.query(ctx).Where("user_phone = ?", phone).Order("id ASC").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find branch by phone: %w", err)
	}
	return &b, nil
}

// BranchByLabel returns the first branch whose filialText matches.
func (s *Store) BranchByLabel(ctx context.Context, label string) (*models.Branch, error) {
	var b models.Branch
	err := s.query(ctx).Where("filial_text = ?", label).Order("id ASC").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find branch by label: %w", err)
	}
	return &b, nil
}

// GlobalSettings loads the singleton. With create=false a missing row
// yields (nil, nil); with create=true a zero-valued row is inserted first.
func (s *Store) GlobalSettings(ctx context.Context, create bool) (*models.GlobalSettings, error) {
	var gs models.GlobalSettings
	found, err := s.singleton(ctx, &gs, &models.GlobalSettings{ID: models.SingletonID}, create)
	if err != nil || !found {
		return nil, err
	}
	return &gs, nil
}

// Contacts behaves like GlobalSettings for the contacts singleton.
func (s *Store) Contacts(ctx context.Context, create bool) (*models.Contacts, error) {
	var c models.Contacts
	found, err := s.singleton(ctx, &c, &models.Contacts{ID: models.SingletonID}, create)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *Store) singleton(ctx context.Context, dst, zero any, create bool) (bool, error) {
	if create {
		// Concurrent first writers race on the fixed primary key; the loser
		// does nothing and reads the winner's row below.
		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(zero).Error; err != nil {
			return false, fmt.Errorf("create singleton: %w", err)
		}
	}

	err := s.first(ctx, dst, "id = ?", models.SingletonID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load singleton: %w", err)
	}
	return true, nil
}

// Save writes every column of an existing record.
func (s *Store) Save(ctx context.Context, record any) error {
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("save %T: %w", record, err)
	}
	return nil
}

// AddAuditLog appends a change log entry.
func (s *Store) AddAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("add audit log: %w", err)
	}
	return nil
}

// AuditLogs returns the newest entries first, optionally for one entity type.
func (s *Store) AuditLogs(ctx context.Context, entityType string, limit int) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
