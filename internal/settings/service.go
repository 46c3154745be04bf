package settings

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/azattello/cargo3589-server/internal/apperror"
	"github.com/azattello/cargo3589-server/internal/audit"
	"github.com/azattello/cargo3589-server/internal/cache"
	"github.com/azattello/cargo3589-server/internal/metrics"
	"github.com/azattello/cargo3589-server/internal/models"
	"github.com/azattello/cargo3589-server/internal/resolver"
	"github.com/azattello/cargo3589-server/internal/store"
	"github.com/azattello/cargo3589-server/internal/upload"

	"go.uber.org/zap"
)

// ContractFiles stores and removes uploaded contracts.
type ContractFiles interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(publicPath string) error
}

type Service struct {
	store     *store.Store
	contracts ContractFiles
	cache     cache.Settings
	log       *zap.Logger
}

func NewService(st *store.Store, contracts ContractFiles, c cache.Settings, log *zap.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{store: st, contracts: contracts, cache: c, log: log}
}

// UpdateSettings merges patch (and the stored contract, if any) into the
// record the user resolves to.
func (s *Service) UpdateSettings(ctx context.Context, userID uint, patch resolver.SettingsPatch, contract *multipart.FileHeader) (*resolver.Target, error) {
	var stored string

	target, err := s.write(ctx, userID, resolver.GroupSettings, func(t *resolver.Target) error {
		if contract != nil {
			p, err := s.contracts.Save(contract)
			if err != nil {
				metrics.ContractUploads.WithLabelValues("failed").Inc()
				var rejected *upload.ErrRejected
				if errors.As(err, &rejected) {
					return apperror.Validation(rejected.Error(), apperror.FieldError{Field: "contract", Rule: "file"})
				}
				return apperror.Internal("server error", err)
			}
			stored = p
			patch.ContractFilePath = p
		}
		patch.Apply(t)
		return nil
	})
	if err != nil {
		if stored != "" {
			if rmErr := s.contracts.Remove(stored); rmErr != nil {
				s.log.Warn("orphaned contract file", zap.String("path", stored), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	if stored != "" {
		metrics.ContractUploads.WithLabelValues("stored").Inc()
	}
	return target, nil
}

// UpdateContacts merges patch into the record the user resolves to.
func (s *Service) UpdateContacts(ctx context.Context, userID uint, patch resolver.ContactsPatch) (*resolver.Target, error) {
	return s.write(ctx, userID, resolver.GroupContacts, func(t *resolver.Target) error {
		patch.Apply(t)
		return nil
	})
}

// write runs resolve, merge and save in one transaction.
func (s *Service) write(ctx context.Context, userID uint, group resolver.Group, merge func(*resolver.Target) error) (*resolver.Target, error) {
	var target *resolver.Target

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		t, err := resolver.Resolve(ctx, tx, resolver.Write, group, userID)
		if err != nil {
			return err
		}
		before, err := audit.Snapshot(t.Record())
		if err != nil {
			return apperror.Internal("server error", err)
		}
		if err := merge(t); err != nil {
			return err
		}
		if err := tx.Save(ctx, t.Record()); err != nil {
			return apperror.Internal("server error", err)
		}
		if err := s.recordChange(ctx, tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  t.Kind(),
			EntityID:    t.RecordID(),
			Description: "update " + string(group),
			Before:      before,
			After:       t.Record(),
		}); err != nil {
			return err
		}
		target = t
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	metrics.RecordWrites.WithLabelValues(target.Kind()).Inc()
	if target.Settings != nil {
		s.invalidate(ctx)
	}
	s.log.Info("record updated",
		zap.Uint("user_id", userID),
		zap.String("group", string(group)),
		zap.String("kind", target.Kind()),
	)
	return target, nil
}

// Read resolves the record the user may see.
func (s *Service) Read(ctx context.Context, userID uint, group resolver.Group) (*resolver.Target, error) {
	return resolver.Resolve(ctx, s.store, resolver.Read, group, userID)
}

// GlobalSettings returns the singleton or nil, going through the cache.
func (s *Service) GlobalSettings(ctx context.Context) (*models.GlobalSettings, error) {
	cached, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("settings cache read failed", zap.Error(err))
	case cached != nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	gs, err := s.store.GlobalSettings(ctx, false)
	if err != nil {
		return nil, apperror.Internal("server error", err)
	}
	if gs != nil {
		if err := s.cache.Set(ctx, gs); err != nil {
			s.log.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return gs, nil
}

// UpdatePrice sets price and currency on the singleton, creating it if
// needed. actor is the JWT user, 0 when the guard is off.
func (s *Service) UpdatePrice(ctx context.Context, actor uint, patch resolver.PricePatch) (*models.GlobalSettings, error) {
	var gs *models.GlobalSettings
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		gs, err = tx.GlobalSettings(ctx, true)
		if err != nil {
			return apperror.Internal("server error", err)
		}
		before, err := audit.Snapshot(gs)
		if err != nil {
			return apperror.Internal("server error", err)
		}
		patch.ApplyTo(gs)
		if err := tx.Save(ctx, gs); err != nil {
			return apperror.Internal("server error", err)
		}
		return s.recordChange(ctx, tx, audit.LogOptions{
			UserID:      actor,
			EntityType:  "global_settings",
			EntityID:    gs.ID,
			Description: "update price",
			Before:      before,
			After:       gs,
		})
	})
	if err != nil {
		return nil, asAppError(err)
	}

	metrics.RecordWrites.WithLabelValues("global_settings").Inc()
	s.invalidate(ctx)
	return gs, nil
}

// SetGlobalBonus updates the referral percentage. It never creates the
// singleton.
func (s *Service) SetGlobalBonus(ctx context.Context, actor uint, percentage float64) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		gs, err := tx.GlobalSettings(ctx, false)
		if err != nil {
			return apperror.Internal("server error", err)
		}
		if gs == nil {
			return apperror.NotFound("settings not found")
		}
		before, err := audit.Snapshot(gs)
		if err != nil {
			return apperror.Internal("server error", err)
		}
		gs.GlobalReferralBonusPercentage = percentage
		if err := tx.Save(ctx, gs); err != nil {
			return apperror.Internal("server error", err)
		}
		return s.recordChange(ctx, tx, audit.LogOptions{
			UserID:      actor,
			EntityType:  "global_settings",
			EntityID:    gs.ID,
			Description: "update global bonus",
			Before:      before,
			After:       gs,
		})
	})
	if err != nil {
		return asAppError(err)
	}

	metrics.RecordWrites.WithLabelValues("global_settings").Inc()
	s.invalidate(ctx)
	return nil
}

// GlobalBonus returns the referral percentage.
func (s *Service) GlobalBonus(ctx context.Context) (float64, error) {
	gs, err := s.GlobalSettings(ctx)
	if err != nil {
		return 0, err
	}
	if gs == nil {
		return 0, apperror.NotFound("settings not found")
	}
	return gs.GlobalReferralBonusPercentage, nil
}

// AuditLogs lists recent changes for an admin caller.
func (s *Service) AuditLogs(ctx context.Context, userID uint, entityType string, limit int) ([]models.AuditLog, error) {
	user, err := s.store.User(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal("server error", err)
	}
	if user.Role.Normalize() != models.RoleAdmin {
		return nil, apperror.Forbidden("access denied")
	}

	logs, err := s.store.AuditLogs(ctx, entityType, limit)
	if err != nil {
		return nil, apperror.Internal("server error", err)
	}
	return logs, nil
}

// recordChange writes the entry inside the caller's transaction so a change and
// its log commit together.
func (s *Service) recordChange(ctx context.Context, tx *store.Store, opts audit.LogOptions) error {
	entry, err := audit.NewLog(opts)
	if err != nil {
		return apperror.Internal("server error", err)
	}
	if err := tx.AddAuditLog(ctx, entry); err != nil {
		return apperror.Internal("server error", err)
	}
	return nil
}

// Ping checks the database for the health probe.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("settings cache invalidation failed", zap.Error(err))
	}
}

// asAppError keeps typed errors and wraps commit failures.
func asAppError(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal("server error", err)
}
