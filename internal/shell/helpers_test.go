package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/catalog"
	"github.com/roach88/bookstore/internal/ledger"
	"github.com/roach88/bookstore/internal/store"
)

type testEnv struct {
	sh     *Shell
	out    *bytes.Buffer
	ledger *ledger.Ledger
	cat    *catalog.Catalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	backend := store.NewMemory()
	dir := account.NewDirectory(backend, bcrypt.MinCost)
	anon, err := dir.Bootstrap(ctx, account.RootAccount{ID: "root", Password: "sjtu", Name: "root"})
	require.NoError(t, err)

	l, err := ledger.Open(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	out := &bytes.Buffer{}
	cat := catalog.New(backend)
	sh := New(Deps{
		Catalog:   cat,
		Directory: dir,
		Stack:     account.NewStack(anon, &account.SequentialGenerator{}),
		Ledger:    l,
		Out:       out,
	})
	return &testEnv{sh: sh, out: out, ledger: l, cat: cat}
}

// exec runs one line and returns what it printed.
func (e *testEnv) exec(t *testing.T, line string) (string, error) {
	t.Helper()
	e.out.Reset()
	err := e.sh.Execute(context.Background(), line)
	return e.out.String(), err
}

// must runs lines that are expected to succeed and returns the combined output.
func (e *testEnv) must(t *testing.T, lines ...string) string {
	t.Helper()
	var all bytes.Buffer
	for _, line := range lines {
		out, err := e.exec(t, line)
		require.NoError(t, err, "line %q", line)
		all.WriteString(out)
	}
	return all.String()
}

// withBook logs in as root and creates a stocked book.
func (e *testEnv) withBook(t *testing.T) {
	t.Helper()
	e.must(t,
		"su root sjtu",
		"select 978-1",
		`modify -name="Go" -author="Pike" -keyword="lang|sys" -price=12.50`,
		"import 10 50.00",
	)
}
