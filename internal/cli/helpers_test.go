package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testDirs is a data directory plus a config file that keeps bcrypt cheap.
type testDirs struct {
	data   string
	config string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bookstore.cue")
	require.NoError(t, os.WriteFile(cfg, []byte("bcrypt_cost: 4\n"), 0o644))
	return testDirs{data: filepath.Join(dir, "data"), config: cfg}
}

// run executes the root command with the test directories and returns stdout.
func (d testDirs) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(nil)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", d.config, "--data-dir", d.data}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// seed stocks one book and sells one copy.
func (d testDirs) seed(t *testing.T) {
	t.Helper()
	out, err := d.run(t, strings.Join([]string{
		"su root sjtu",
		"select 1",
		"import 2 3.00",
		"modify -price=2.00",
		"buy 1 1",
	}, "\n")+"\n", "shell")
	require.NoError(t, err)
	require.Equal(t, "2.00\n", out)
}
