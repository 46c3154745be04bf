package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/azattello/cargo3589-server/internal/apperror"
	"github.com/azattello/cargo3589-server/internal/models"
	"github.com/azattello/cargo3589-server/internal/resolver"
	"github.com/azattello/cargo3589-server/internal/store"
	"github.com/azattello/cargo3589-server/internal/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *store.Store) {
	t.Helper()
	db := storetest.Open(t)
	storetest.Seed(t, db,
		storetest.Admin(1),
		storetest.Filial(2, "+1000"),
		storetest.Filial(3, "+3000"), // no branch linked
		storetest.Client(4, "Downtown"),
		storetest.Client(5, ""),
		storetest.Client(6, "Harbour"), // selected branch does not exist
		&models.User{ID: 7, Phone: "+7000", Role: "manager"},
		storetest.Branch(10, "+1000", "Downtown"),
		storetest.Branch(11, "+2000", "Airport"),
	)
	return db, store.New(db)
}

func requireKind(t *testing.T, err error, kind apperror.Kind, msg string) {
	t.Helper()
	e, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	assert.Equal(t, kind, e.Kind)
	if msg != "" {
		assert.Equal(t, msg, e.Message)
	}
}

func TestResolve_AdminReadMissingSingleton(t *testing.T) {
	db, s := setup(t)

	for _, g := range []resolver.Group{resolver.GroupSettings, resolver.GroupContacts} {
		target, err := resolver.Resolve(context.Background(), s, resolver.Read, g, 1)
		require.NoError(t, err)
		assert.Nil(t, target.Record())
	}
	assert.Zero(t, storetest.Count(t, db, &models.GlobalSettings{}))
	assert.Zero(t, storetest.Count(t, db, &models.Contacts{}))
}

func TestResolve_AdminWriteCreatesSingleton(t *testing.T) {
	db, s := setup(t)
	ctx := context.Background()

	target, err := resolver.Resolve(ctx, s, resolver.Write, resolver.GroupSettings, 1)
	require.NoError(t, err)
	require.NotNil(t, target.Settings)
	assert.Nil(t, target.Branch)
	assert.Equal(t, "global_settings", target.Kind())

	target, err = resolver.Resolve(ctx, s, resolver.Write, resolver.GroupContacts, 1)
	require.NoError(t, err)
	require.NotNil(t, target.Contacts)
	assert.Equal(t, "contacts", target.Kind())

	// second create-on-missing must not duplicate
	_, err = resolver.Resolve(ctx, s, resolver.Write, resolver.GroupSettings, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), storetest.Count(t, db, &models.GlobalSettings{}))
	assert.Equal(t, int64(1), storetest.Count(t, db, &models.Contacts{}))
}

func TestResolve_FilialGetsLinkedBranch(t *testing.T) {
	_, s := setup(t)

	for _, op := range []resolver.Operation{resolver.Read, resolver.Write} {
		for _, g := range []resolver.Group{resolver.GroupSettings, resolver.GroupContacts} {
			target, err := resolver.Resolve(context.Background(), s, op, g, 2)
			require.NoError(t, err)
			require.NotNil(t, target.Branch)
			assert.Equal(t, uint(10), target.Branch.ID)
			assert.False(t, target.Selected)
			assert.Nil(t, target.Settings)
			assert.Nil(t, target.Contacts)
			assert.Equal(t, "branch", target.Kind())
		}
	}
}

func TestResolve_FilialWithoutBranch(t *testing.T) {
	db, s := setup(t)

	_, err := resolver.Resolve(context.Background(), s, resolver.Write, resolver.GroupSettings, 3)
	requireKind(t, err, apperror.KindNotFound, "branch not found")
	assert.Zero(t, storetest.Count(t, db, &models.GlobalSettings{}))
}

func TestResolve_ClientWritesForbidden(t *testing.T) {
	_, s := setup(t)

	for _, g := range []resolver.Group{resolver.GroupSettings, resolver.GroupContacts} {
		_, err := resolver.Resolve(context.Background(), s, resolver.Write, g, 4)
		requireKind(t, err, apperror.KindForbidden, "access denied")
	}
}

func TestResolve_ClientSettingsReadForbidden(t *testing.T) {
	_, s := setup(t)

	_, err := resolver.Resolve(context.Background(), s, resolver.Read, resolver.GroupSettings, 4)
	requireKind(t, err, apperror.KindForbidden, "")
}

func TestResolve_ClientContactsRead(t *testing.T) {
	_, s := setup(t)
	ctx := context.Background()

	target, err := resolver.Resolve(ctx, s, resolver.Read, resolver.GroupContacts, 4)
	require.NoError(t, err)
	require.NotNil(t, target.Branch)
	assert.Equal(t, "Downtown", target.Branch.FilialText)
	assert.True(t, target.Selected)

	_, err = resolver.Resolve(ctx, s, resolver.Read, resolver.GroupContacts, 5)
	requireKind(t, err, apperror.KindNotFound, "branch not selected")

	_, err = resolver.Resolve(ctx, s, resolver.Read, resolver.GroupContacts, 6)
	requireKind(t, err, apperror.KindNotFound, "branch not found")
}

func TestResolve_UnknownStoredRoleActsAsClient(t *testing.T) {
	_, s := setup(t)

	_, err := resolver.Resolve(context.Background(), s, resolver.Write, resolver.GroupContacts, 7)
	requireKind(t, err, apperror.KindForbidden, "")

	_, err = resolver.Resolve(context.Background(), s, resolver.Read, resolver.GroupContacts, 7)
	requireKind(t, err, apperror.KindNotFound, "branch not selected")
}

func TestResolve_UnknownUser(t *testing.T) {
	db, s := setup(t)

	for _, op := range []resolver.Operation{resolver.Read, resolver.Write} {
		_, err := resolver.Resolve(context.Background(), s, op, resolver.GroupSettings, 404)
		requireKind(t, err, apperror.KindNotFound, "user not found")
	}
	assert.Zero(t, storetest.Count(t, db, &models.GlobalSettings{}))
}

func TestResolve_EveryRoleIsHandled(t *testing.T) {
	for _, role := range models.Roles {
		recs := &fakeRecords{user: &models.User{ID: 1, Role: role, Phone: "+1", SelectedFilial: "x"}}
		for _, op := range []resolver.Operation{resolver.Read, resolver.Write} {
			for _, g := range []resolver.Group{resolver.GroupSettings, resolver.GroupContacts} {
				_, err := resolver.Resolve(context.Background(), recs, op, g, 1)
				assert.NotErrorIs(t, err, resolver.ErrUnhandledRole, "role %s", role)
			}
		}
	}
}

func TestResolve_StoreFailureIsInternal(t *testing.T) {
	dbErr := errors.New("connection reset")

	_, err := resolver.Resolve(context.Background(), &fakeRecords{err: dbErr}, resolver.Read, resolver.GroupSettings, 1)
	requireKind(t, err, apperror.KindInternal, "server error")
	assert.ErrorIs(t, err, dbErr)

	recs := &fakeRecords{user: &models.User{ID: 1, Role: models.RoleAdmin}, singletonErr: dbErr}
	_, err = resolver.Resolve(context.Background(), recs, resolver.Write, resolver.GroupContacts, 1)
	requireKind(t, err, apperror.KindInternal, "")
}

type fakeRecords struct {
	user         *models.User
	err          error
	singletonErr error
}

func (f *fakeRecords) User(context.Context, uint) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeRecords) BranchByPhone(context.Context, string) (*models.Branch, error) {
	return &models.Branch{ID: 1}, nil
}

func (f *fakeRecords) BranchByLabel(context.Context, string) (*models.Branch, error) {
	return &models.Branch{ID: 2}, nil
}

func (f *fakeRecords) GlobalSettings(context.Context, bool) (*models.GlobalSettings, error) {
	return &models.GlobalSettings{}, f.singletonErr
}

func (f *fakeRecords) Contacts(context.Context, bool) (*models.Contacts, error) {
	return &models.Contacts{}, f.singletonErr
}
