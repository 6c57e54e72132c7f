// Package app wires the bookstore components for one data directory.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/catalog"
	"github.com/roach88/bookstore/internal/config"
	"github.com/roach88/bookstore/internal/ledger"
	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/shell"
	"github.com/roach88/bookstore/internal/store"
)

// App owns the open store and ledger for one process.
type App struct {
	Store     *store.Store
	Ledger    *ledger.Ledger
	Catalog   *catalog.Catalog
	Directory *account.Directory
	Config    config.Config
	ids       account.SessionIDGenerator
	anonymous model.User
}

// Option configures Open.
type Option func(*App)

// WithSessionIDs replaces the UUIDv7 session ID generator.
func WithSessionIDs(g account.SessionIDGenerator) Option {
	return func(a *App) { a.ids = g }
}

// Open creates the data directory if needed, opens the SQLite store and the
// ledger files, and bootstraps the reserved accounts.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg, ids: account.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(a)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	var storeOpts []store.Option
	if cfg.SyncWrites {
		storeOpts = append(storeOpts, store.Durable())
	}
	st, err := store.Open(cfg.DatabasePath(), storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	l, err := ledger.Open(cfg.LedgerPath(), ledger.SyncWrites(cfg.SyncWrites))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	a.Store = st
	a.Ledger = l
	a.Catalog = catalog.New(st)
	a.Directory = account.NewDirectory(st, cfg.BcryptCost)

	anon, err := a.Directory.Bootstrap(ctx, account.RootAccount{
		ID:       cfg.Root.ID,
		Password: cfg.Root.Password,
		Name:     cfg.Root.Name,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("bootstrap accounts: %w", err)
	}
	a.anonymous = anon

	slog.Debug("opened data directory",
		"dir", cfg.DataDir,
		"database", cfg.DatabasePath(),
		"ledger", cfg.LedgerPath(),
		"trades", l.TradeCount(),
		"commands", l.CommandCount())
	return a, nil
}

// Shell returns a shell with a fresh session stack writing to out.
func (a *App) Shell(out io.Writer) *shell.Shell {
	return shell.New(shell.Deps{
		Catalog:   a.Catalog,
		Directory: a.Directory,
		Stack:     account.NewStack(a.anonymous, a.ids),
		Ledger:    a.Ledger,
		Out:       out,
	})
}

// Close releases the ledger files and the database.
func (a *App) Close() error {
	var errs []error
	if a.Ledger != nil {
		errs = append(errs, a.Ledger.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
