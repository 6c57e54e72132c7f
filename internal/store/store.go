package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - keyed multimap tables
const currentSchemaVersion = 1

// Store is the SQLite implementation of Backend.
type Store struct {
	db *sql.DB
}

// Option configures Open.
type Option func(*options)

type options struct {
	synchronous string
}

// Durable switches SQLite to synchronous=FULL so every commit is fsynced.
func Durable() Option {
	return func(o *options) { o.synchronous = "FULL" }
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{synchronous: "NORMAL"}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer; a second connection would only add SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, o); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert adds one (key, value) pair.
func (s *Store) Insert(ctx context.Context, table Table, key string, value []byte) error {
	return s.Apply(ctx, Insert(table, key, value))
}

// Remove deletes one (key, value) pair. Removing an absent pair is a no-op.
func (s *Store) Remove(ctx context.Context, table Table, key string, value []byte) error {
	return s.Apply(ctx, Remove(table, key, value))
}

// QueryExact returns every value stored under key, ordered by value.
// Returns an empty slice (not nil) if the key is absent.
func (s *Store) QueryExact(ctx context.Context, table Table, key string) ([][]byte, error) {
	if !table.valid() {
		return nil, fmt.Errorf("query exact: unknown table %q", table)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT v FROM %s WHERE k = ? ORDER BY v ASC, seq ASC", table), key)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	values := [][]byte{}
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return values, nil
}

// QueryAll returns every pair of table ordered by key, then value.
// Returns an empty slice (not nil) if the table is empty.
func (s *Store) QueryAll(ctx context.Context, table Table) ([]Pair, error) {
	if !table.valid() {
		return nil, fmt.Errorf("query all: unknown table %q", table)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT k, v FROM %s ORDER BY k ASC, v ASC, seq ASC", table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	pairs := []Pair{}
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return pairs, nil
}

// Apply executes ops in order inside one transaction. Either every op takes
// effect or none does.
func (s *Store) Apply(ctx context.Context, ops ...Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, op := range ops {
		var q string
		var args []any
		switch op.Kind {
		case OpInsert:
			q = fmt.Sprintf("INSERT INTO %s (k, v) VALUES (?, ?)", op.Table)
			args = []any{op.Key, op.Value}
		case OpRemove:
			q = fmt.Sprintf(
				"DELETE FROM %[1]s WHERE seq = (SELECT seq FROM %[1]s WHERE k = ? AND v = ? ORDER BY seq LIMIT 1)",
				op.Table)
			args = []any{op.Key, op.Value}
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("apply: op %d (%s %s %q): %w", i, op.Kind, op.Table, op.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply: commit: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, o options) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = " + o.synchronous,
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema version.
// A database written by a newer schema is refused rather than guessed at.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
