package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/store"
)

var testRoot = RootAccount{ID: "root", Password: "sjtu", Name: "root"}

// newTestDirectory returns a bootstrapped directory and a fresh session stack.
func newTestDirectory(t *testing.T) (*Directory, *Stack) {
	t.Helper()
	d := NewDirectory(store.NewMemory(), bcrypt.MinCost)
	anon, err := d.Bootstrap(context.Background(), testRoot)
	require.NoError(t, err)
	return d, NewStack(anon, &SequentialGenerator{})
}

func grantFor(t *testing.T, s *Stack, tier model.Privilege) Grant {
	t.Helper()
	g, err := s.Authorize(tier)
	require.NoError(t, err)
	return g
}

func TestBootstrap_MaterializesReservedUsers(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)

	anon, err := d.Lookup(ctx, model.AnonymousID)
	require.NoError(t, err)
	assert.Equal(t, model.Guest, anon.Privilege)

	root, err := d.Lookup(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, model.Root, root.Privilege)
	assert.NotEqual(t, "sjtu", root.PasswordHash, "password is stored hashed")
}

func TestBootstrap_Idempotent(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	d := NewDirectory(backend, bcrypt.MinCost)

	_, err := d.Bootstrap(ctx, testRoot)
	require.NoError(t, err)
	_, err = d.Bootstrap(ctx, testRoot)
	require.NoError(t, err)

	pairs, err := backend.QueryAll(ctx, store.Users)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	_, err := d.Authenticate(ctx, s, "root", "wrong")
	assert.ErrorIs(t, err, model.ErrAuthFailed)
	assert.Equal(t, 1, s.Depth())

	_, err = d.Authenticate(ctx, s, "ghost", "pw")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = d.Authenticate(ctx, s, model.AnonymousID, "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	f, err := d.Authenticate(ctx, s, "root", "sjtu")
	require.NoError(t, err)
	assert.Equal(t, "root", f.User.ID)
	assert.Equal(t, 2, s.Depth())
	assert.Equal(t, "session-2", f.SessionID)
}

func TestAuthenticate_WithoutPasswordPushes(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	_, err := d.Authenticate(ctx, s, "root", "")
	require.NoError(t, err)
	assert.Equal(t, "root", s.Top().User.ID)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	u, err := d.Register(ctx, "alice", "pw1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, model.Customer, u.Privilege)

	_, err = d.Register(ctx, "alice", "pw2", "Other")
	assert.ErrorIs(t, err, model.ErrDuplicateKey)

	_, err = d.Register(ctx, "bad id", "pw", "x")
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	_, err = d.Register(ctx, "bob", "bad-pw", "x")
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	_, err = d.Register(ctx, "bob", "pw", "")
	assert.ErrorIs(t, err, model.ErrValidationFailed)

	_, err = d.Authenticate(ctx, s, "alice", "pw1")
	assert.NoError(t, err)
}

func TestCreateAccount_AsymmetricTierCheck(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)
	_, err := d.Authenticate(ctx, s, "root", "sjtu")
	require.NoError(t, err)

	_, err = d.CreateAccount(ctx, grantFor(t, s, model.Worker), "w1", "pw", model.Worker, "W")
	require.NoError(t, err)

	_, err = d.Authenticate(ctx, s, "w1", "pw")
	require.NoError(t, err)
	workerGrant := grantFor(t, s, model.Worker)

	_, err = d.CreateAccount(ctx, workerGrant, "c1", "pw", model.Customer, "C")
	assert.NoError(t, err, "worker may create customers")

	_, err = d.CreateAccount(ctx, workerGrant, "w2", "pw", model.Worker, "W")
	assert.ErrorIs(t, err, model.ErrInsufficientPrivilege, "worker may not create workers")

	_, err = d.CreateAccount(ctx, workerGrant, "r2", "pw", model.Root, "R")
	assert.ErrorIs(t, err, model.ErrValidationFailed)

	_, err = d.CreateAccount(ctx, Grant{}, "c2", "pw", model.Customer, "C")
	assert.ErrorIs(t, err, model.ErrInsufficientPrivilege)

	_, err = d.CreateAccount(ctx, workerGrant, "c1", "pw", model.Customer, "C")
	assert.ErrorIs(t, err, model.ErrDuplicateKey)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)
	_, err := d.Register(ctx, "alice", "old", "Alice")
	require.NoError(t, err)

	assert.ErrorIs(t, d.ChangePassword(ctx, "alice", "nope", "new"), model.ErrAuthFailed)
	assert.ErrorIs(t, d.ChangePassword(ctx, "ghost", "old", "new"), model.ErrNotFound)
	assert.ErrorIs(t, d.ChangePassword(ctx, model.AnonymousID, "", "new"), model.ErrNotFound)
	assert.ErrorIs(t, d.ChangePassword(ctx, "alice", "old", "bad pw"), model.ErrValidationFailed)

	require.NoError(t, d.ChangePassword(ctx, "alice", "old", "new"))

	_, err = d.Authenticate(ctx, s, "alice", "old")
	assert.ErrorIs(t, err, model.ErrAuthFailed)
	_, err = d.Authenticate(ctx, s, "alice", "new")
	assert.NoError(t, err)
}

func TestChangePassword_KeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	d := NewDirectory(backend, bcrypt.MinCost)
	_, err := d.Bootstrap(ctx, testRoot)
	require.NoError(t, err)

	require.NoError(t, d.ChangePassword(ctx, "root", "sjtu", "next"))

	values, err := backend.QueryExact(ctx, store.Users, "root")
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

func TestResetPassword_RequiresRootGrant(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)
	_, err := d.Register(ctx, "alice", "old", "Alice")
	require.NoError(t, err)

	_, err = d.Authenticate(ctx, s, "alice", "old")
	require.NoError(t, err)
	assert.ErrorIs(t, d.ResetPassword(ctx, grantFor(t, s, model.Customer), "alice", "new"), model.ErrInsufficientPrivilege)

	_, err = d.Authenticate(ctx, s, "root", "sjtu")
	require.NoError(t, err)
	require.NoError(t, d.ResetPassword(ctx, grantFor(t, s, model.Root), "alice", "new"))

	_, err = d.Authenticate(ctx, s, "alice", "new")
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)
	_, err := d.Register(ctx, "alice", "pw", "Alice")
	require.NoError(t, err)
	_, err = d.Authenticate(ctx, s, "root", "sjtu")
	require.NoError(t, err)
	g := grantFor(t, s, model.Root)

	assert.ErrorIs(t, d.Remove(ctx, g, model.AnonymousID), model.ErrNotFound)
	assert.ErrorIs(t, d.Remove(ctx, g, "ghost"), model.ErrNotFound)
	assert.ErrorIs(t, d.Remove(ctx, g, "root"), model.ErrValidationFailed, "logged-in account")

	require.NoError(t, d.Remove(ctx, g, "alice"))
	_, err = d.Lookup(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRemove_RefusesAccountLoggedInLowerInStack(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)
	_, err := d.Register(ctx, "alice", "pw", "Alice")
	require.NoError(t, err)

	_, err = d.Authenticate(ctx, s, "alice", "pw")
	require.NoError(t, err)
	_, err = d.Authenticate(ctx, s, "root", "sjtu")
	require.NoError(t, err)

	err = d.Remove(ctx, grantFor(t, s, model.Root), "alice")
	assert.ErrorIs(t, err, model.ErrValidationFailed)
}

func TestRemove_RequiresRootGrant(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)
	_, err := d.Register(ctx, "alice", "pw", "Alice")
	require.NoError(t, err)
	_, err = d.Register(ctx, "bob", "pw", "Bob")
	require.NoError(t, err)
	_, err = d.Authenticate(ctx, s, "alice", "pw")
	require.NoError(t, err)

	assert.ErrorIs(t, d.Remove(ctx, grantFor(t, s, model.Customer), "bob"), model.ErrInsufficientPrivilege)
}
