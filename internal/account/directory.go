package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/store"
)

// RootAccount describes the superuser materialized on first startup.
type RootAccount struct {
	ID       string
	Password string
	Name     string
}

// Directory is the persistent user table.
type Directory struct {
	backend store.Backend
	cost    int
}

// NewDirectory creates a directory over backend. cost is the bcrypt cost;
// 0 selects bcrypt.DefaultCost.
func NewDirectory(backend store.Backend, cost int) *Directory {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Directory{backend: backend, cost: cost}
}

// Bootstrap materializes the anonymous user and the root account if they are
// absent and returns the anonymous user. Safe to call on every startup.
func (d *Directory) Bootstrap(ctx context.Context, root RootAccount) (model.User, error) {
	anon, _, err := d.load(ctx, model.AnonymousID)
	if errors.Is(err, model.ErrNotFound) {
		anon = model.User{ID: model.AnonymousID, Name: model.AnonymousID, Privilege: model.Guest}
		if err := d.insert(ctx, anon); err != nil {
			return model.User{}, fmt.Errorf("bootstrap anonymous: %w", err)
		}
		slog.Info("directory initialized", "anonymous", model.AnonymousID)
	} else if err != nil {
		return model.User{}, fmt.Errorf("bootstrap anonymous: %w", err)
	}

	if _, _, err := d.load(ctx, root.ID); errors.Is(err, model.ErrNotFound) {
		if err := model.ValidateUserID(root.ID); err != nil {
			return model.User{}, fmt.Errorf("bootstrap root: %w", err)
		}
		if err := model.ValidatePassword(root.Password); err != nil {
			return model.User{}, fmt.Errorf("bootstrap root: %w", err)
		}
		hash, err := d.hash(root.Password)
		if err != nil {
			return model.User{}, fmt.Errorf("bootstrap root: %w", err)
		}
		u := model.User{ID: root.ID, Name: root.Name, PasswordHash: hash, Privilege: model.Root}
		if err := d.insert(ctx, u); err != nil {
			return model.User{}, fmt.Errorf("bootstrap root: %w", err)
		}
		slog.Info("root account created", "id", root.ID)
	} else if err != nil {
		return model.User{}, fmt.Errorf("bootstrap root: %w", err)
	}

	return anon, nil
}

// Lookup returns the user with the given id.
func (d *Directory) Lookup(ctx context.Context, id string) (model.User, error) {
	u, _, err := d.load(ctx, id)
	return u, err
}

// Authenticate pushes a new frame for id onto s. An empty password means
// none was supplied; a supplied password must match exactly. The anonymous
// user cannot be authenticated explicitly.
func (d *Directory) Authenticate(ctx context.Context, s *Stack, id, password string) (Frame, error) {
	if id == model.AnonymousID {
		return Frame{}, model.Errorf(model.CodeNotFound, "anonymous cannot log in")
	}
	u, _, err := d.load(ctx, id)
	if err != nil {
		return Frame{}, err
	}
	if password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return Frame{}, model.Errorf(model.CodeAuthFailed, "wrong password for %s", id)
		}
	}
	f := s.Push(u)
	slog.Debug("session opened", "session", f.SessionID, "user", id, "depth", s.Depth())
	return f, nil
}

// Register creates a Customer account. Anyone may register.
func (d *Directory) Register(ctx context.Context, id, password, name string) (model.User, error) {
	return d.create(ctx, id, password, name, model.Customer)
}

// CreateAccount creates an account of the given tier. The grant must cover
// RequiredToCreate(tier).
func (d *Directory) CreateAccount(ctx context.Context, g Grant, id, password string, tier model.Privilege, name string) (model.User, error) {
	required, err := RequiredToCreate(tier)
	if err != nil {
		return model.User{}, err
	}
	if err := g.Require(required); err != nil {
		return model.User{}, err
	}
	return d.create(ctx, id, password, name, tier)
}

// ChangePassword is the self-service form: current must match the stored password.
func (d *Directory) ChangePassword(ctx context.Context, id, current, next string) error {
	u, raw, err := d.loadNamed(ctx, id)
	if err != nil {
		return err
	}
	if err := model.ValidatePassword(next); err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return model.Errorf(model.CodeAuthFailed, "wrong password for %s", id)
	}
	return d.setPassword(ctx, u, raw, next)
}

// ResetPassword is the Root override form: no current password, Root grant required.
func (d *Directory) ResetPassword(ctx context.Context, g Grant, id, next string) error {
	if err := g.Require(model.Root); err != nil {
		return err
	}
	u, raw, err := d.loadNamed(ctx, id)
	if err != nil {
		return err
	}
	if err := model.ValidatePassword(next); err != nil {
		return err
	}
	return d.setPassword(ctx, u, raw, next)
}

// Remove deletes an account. The anonymous user, absent ids and any id that
// is logged in anywhere on the grant's session stack cannot be removed.
func (d *Directory) Remove(ctx context.Context, g Grant, id string) error {
	if err := g.Require(model.Root); err != nil {
		return err
	}
	_, raw, err := d.loadNamed(ctx, id)
	if err != nil {
		return err
	}
	if g.stack.Contains(id) {
		return model.Errorf(model.CodeValidationFailed, "%s is logged in", id)
	}
	if err := d.backend.Apply(ctx, store.Remove(store.Users, id, raw)); err != nil {
		return fmt.Errorf("remove user %s: %w", id, err)
	}
	slog.Info("account removed", "id", id, "by", g.UserID())
	return nil
}

func (d *Directory) create(ctx context.Context, id, password, name string, tier model.Privilege) (model.User, error) {
	if err := model.ValidateUserID(id); err != nil {
		return model.User{}, err
	}
	if err := model.ValidatePassword(password); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateUserName(name); err != nil {
		return model.User{}, err
	}
	if _, _, err := d.load(ctx, id); err == nil {
		return model.User{}, model.Errorf(model.CodeDuplicateKey, "user %s exists", id)
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := d.hash(password)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: id, Name: name, PasswordHash: hash, Privilege: tier}
	if err := d.insert(ctx, u); err != nil {
		return model.User{}, err
	}
	slog.Info("account created", "id", id, "privilege", tier.String())
	return u, nil
}

func (d *Directory) setPassword(ctx context.Context, u model.User, raw []byte, next string) error {
	hash, err := d.hash(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	value, err := store.MarshalValue(u)
	if err != nil {
		return err
	}
	if err := d.backend.Apply(ctx,
		store.Remove(store.Users, u.ID, raw),
		store.Insert(store.Users, u.ID, value),
	); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

func (d *Directory) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (d *Directory) insert(ctx context.Context, u model.User) error {
	value, err := store.MarshalValue(u)
	if err != nil {
		return err
	}
	if err := d.backend.Apply(ctx, store.Insert(store.Users, u.ID, value)); err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// loadNamed is load for operations that may not target the anonymous user.
func (d *Directory) loadNamed(ctx context.Context, id string) (model.User, []byte, error) {
	if id == model.AnonymousID {
		return model.User{}, nil, model.Errorf(model.CodeNotFound, "anonymous is reserved")
	}
	return d.load(ctx, id)
}

// load returns the user and the exact stored bytes, which Remove needs.
func (d *Directory) load(ctx context.Context, id string) (model.User, []byte, error) {
	values, err := d.backend.QueryExact(ctx, store.Users, id)
	if err != nil {
		return model.User{}, nil, fmt.Errorf("lookup user %s: %w", id, err)
	}
	if len(values) == 0 {
		return model.User{}, nil, model.Errorf(model.CodeNotFound, "no user %s", id)
	}
	var u model.User
	if err := store.UnmarshalValue(values[0], &u); err != nil {
		return model.User{}, nil, err
	}
	return u, values[0], nil
}
