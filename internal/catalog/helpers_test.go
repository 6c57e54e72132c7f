package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/store"
)

func newTestCatalog(t *testing.T) (*Catalog, store.Backend) {
	t.Helper()
	backend := store.NewMemory()
	return New(backend), backend
}

func newSQLiteCatalog(t *testing.T) (*Catalog, store.Backend) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

// grantAt returns a grant issued to a session whose top frame has tier.
func grantAt(t *testing.T, tier model.Privilege) account.Grant {
	t.Helper()
	s := account.NewStack(model.User{ID: model.AnonymousID}, &account.SequentialGenerator{})
	s.Push(model.User{ID: "tester", Privilege: tier})
	g, err := s.Authorize(tier)
	require.NoError(t, err)
	return g
}

// entries renders every pair of table as "key->value".
func entries(t *testing.T, backend store.Backend, table store.Table) []string {
	t.Helper()
	pairs, err := backend.QueryAll(context.Background(), table)
	require.NoError(t, err)
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.Key+"->"+string(p.Value))
	}
	return out
}

func mustClauses(t *testing.T, build ...func() (model.FieldClause, error)) []model.FieldClause {
	t.Helper()
	out := make([]model.FieldClause, 0, len(build))
	for _, b := range build {
		cl, err := b()
		require.NoError(t, err)
		out = append(out, cl)
	}
	return out
}

func isbnClause(v string) func() (model.FieldClause, error) {
	return func() (model.FieldClause, error) { return model.NewISBNClause(v) }
}

func nameClause(v string) func() (model.FieldClause, error) {
	return func() (model.FieldClause, error) { return model.NewNameClause(v) }
}

func authorClause(v string) func() (model.FieldClause, error) {
	return func() (model.FieldClause, error) { return model.NewAuthorClause(v) }
}

func keywordClause(v string) func() (model.FieldClause, error) {
	return func() (model.FieldClause, error) { return model.NewKeywordClause(v) }
}

func priceClause(v int64) func() (model.FieldClause, error) {
	return func() (model.FieldClause, error) { return model.NewPriceClause(v) }
}

// seedBook creates isbn and fills it in through the public operations.
func seedBook(t *testing.T, c *Catalog, isbn, name, author, keyword string, price, qty int64) model.Book {
	t.Helper()
	ctx := context.Background()
	worker := grantAt(t, model.Worker)
	_, err := c.CreateStub(ctx, worker, isbn)
	require.NoError(t, err)
	_, err = c.EditFields(ctx, worker, isbn, mustClauses(t,
		nameClause(name), authorClause(author), keywordClause(keyword), priceClause(price)))
	require.NoError(t, err)
	b, err := c.ImportStock(ctx, worker, isbn, qty)
	require.NoError(t, err)
	return b
}
