package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/bookstore/internal/config"
)

// Root account credentials used by Config.
const (
	RootID       = "root"
	RootPassword = "sjtu"
)

// Config returns the schema defaults pointed at a fresh temporary data
// directory, with the cheapest bcrypt cost so logins stay fast in tests.
func Config(t testing.TB) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.DataDir = t.TempDir()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.Root = config.Root{ID: RootID, Password: RootPassword, Name: "root"}
	return cfg
}
