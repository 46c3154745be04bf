// Package resolver maps a caller onto the one record a settings or contacts
// request reads or writes: the global singleton for admins, the linked
// branch for filial users, and the selected branch for everybody else
// (contacts reads only).
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/azattello/cargo3589-server/internal/apperror"
	"github.com/azattello/cargo3589-server/internal/metrics"
	"github.com/azattello/cargo3589-server/internal/models"
	"github.com/azattello/cargo3589-server/internal/store"
)

type Group string

const (
	GroupSettings Group = "settings"
	GroupContacts Group = "contacts"
)

type Operation string

const (
	Read  Operation = "read"
	Write Operation = "write"
)

// ErrUnhandledRole means a role was added to models.Roles without a
// matching case below.
var ErrUnhandledRole = errors.New("role not handled by resolver")

// Records is the lookup surface the resolver needs; *store.Store
// implements it.
type Records interface {
	User(ctx context.Context, id uint) (*models.User, error)
	BranchByPhone(ctx context.Context, phone string) (*models.Branch, error)
	BranchByLabel(ctx context.Context, label string) (*models.Branch, error)
	GlobalSettings(ctx context.Context, create bool) (*models.GlobalSettings, error)
	Contacts(ctx context.Context, create bool) (*models.Contacts, error)
}

// Target is the resolved record. Exactly one of Settings, Contacts or
// Branch is set, except for admin reads of a singleton that does not
// exist yet, where all three are nil.
type Target struct {
	Group    Group
	Settings *models.GlobalSettings
	Contacts *models.Contacts
	Branch   *models.Branch

	// Selected marks a branch reached through the user's selectedFilial
	// rather than through ownership.
	Selected bool
}

// Kind names the record kind for logs and metrics.
func (t *Target) Kind() string {
	switch {
	case t.Branch != nil:
		return "branch"
	case t.Group == GroupContacts:
		return "contacts"
	default:
		return "global_settings"
	}
}

// RecordID is the primary key of the resolved record, or 0.
func (t *Target) RecordID() uint {
	switch {
	case t.Branch != nil:
		return t.Branch.ID
	case t.Settings != nil:
		return t.Settings.ID
	case t.Contacts != nil:
		return t.Contacts.ID
	}
	return 0
}

// Record returns the resolved record as stored, or nil.
func (t *Target) Record() any {
	switch {
	case t.Branch != nil:
		return t.Branch
	case t.Settings != nil:
		return t.Settings
	case t.Contacts != nil:
		return t.Contacts
	default:
		return nil
	}
}

// Resolve loads the user and picks the record op acts on.
func Resolve(ctx context.Context, recs Records, op Operation, group Group, userID uint) (*Target, error) {
	t, err := resolve(ctx, recs, op, group, userID)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if e, ok := apperror.As(err); ok {
			outcome = string(e.Kind)
		}
	}
	metrics.Resolutions.WithLabelValues(string(group), string(op), outcome).Inc()
	return t, err
}

func resolve(ctx context.Context, recs Records, op Operation, group Group, userID uint) (*Target, error) {
	user, err := recs.User(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal("server error", err)
	}

	t := &Target{Group: group}

	switch role := user.Role.Normalize(); role {
	case models.RoleAdmin:
		if err := loadSingleton(ctx, recs, t, op == Write); err != nil {
			return nil, apperror.Internal("server error", err)
		}
		return t, nil

	case models.RoleFilial:
		b, err := recs.BranchByPhone(ctx, user.Phone)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("branch not found")
		}
		if err != nil {
			return nil, apperror.Internal("server error", err)
		}
		t.Branch = b
		return t, nil

	case models.RoleClient:
		if op == Write || group != GroupContacts {
			return nil, apperror.Forbidden("access denied")
		}
		if user.SelectedFilial == "" {
			return nil, apperror.NotFound("branch not selected")
		}
		b, err := recs.BranchByLabel(ctx, user.SelectedFilial)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("branch not found")
		}
		if err != nil {
			return nil, apperror.Internal("server error", err)
		}
		t.Branch = b
		t.Selected = true
		return t, nil

	default:
		return nil, apperror.Internal("server error", fmt.Errorf("%w: %q", ErrUnhandledRole, role))
	}
}

func loadSingleton(ctx context.Context, recs Records, t *Target, create bool) error {
	switch t.Group {
	case GroupSettings:
		gs, err := recs.GlobalSettings(ctx, create)
		if err != nil {
			return err
		}
		t.Settings = gs
	case GroupContacts:
		c, err := recs.Contacts(ctx, create)
		if err != nil {
			return err
		}
		t.Contacts = c
	default:
		return fmt.Errorf("unknown record group %q", t.Group)
	}
	return nil
}
