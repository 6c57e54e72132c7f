package account

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionIDGenerator produces identifiers for new session frames.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so log lines for
// nested logins sort in the order the sessions were opened.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialGenerator returns "<prefix>-1", "<prefix>-2", ... for deterministic tests.
type SequentialGenerator struct {
	Prefix string
	n      int
}

// Generate returns the next identifier in sequence.
func (g *SequentialGenerator) Generate() string {
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "session"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}
