package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.Insert(ctx, Books, "isbn-1", []byte(`{"isbn":"isbn-1"}`)); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	values, err := s2.QueryExact(ctx, Books, "isbn-1")
	if err != nil {
		t.Fatalf("QueryExact() failed: %v", err)
	}
	if len(values) != 1 || string(values[0]) != `{"isbn":"isbn-1"}` {
		t.Errorf("QueryExact() = %q, want one stored record", values)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range Tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			string(table),
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	s.Close()

	if _, err := Open(path); err == nil {
		t.Error("expected error for newer schema version, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_SynchronousDurable(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), Durable())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// FULL = 2
	if err := s.verifyPragma("synchronous", "2"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if err := s.Insert(ctx, Books, "a", []byte("1")); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	// Make the second op fail after the first has run inside the transaction.
	if _, err := s.db.Exec("CREATE TRIGGER fail_name BEFORE INSERT ON name_index BEGIN SELECT RAISE(ABORT, 'boom'); END"); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := s.Apply(ctx,
		Remove(Books, "a", []byte("1")),
		Insert(NameIndex, "n", []byte("a")),
	)
	if err == nil {
		t.Fatal("expected Apply() to fail")
	}

	values, err := s.QueryExact(ctx, Books, "a")
	if err != nil {
		t.Fatalf("QueryExact() failed: %v", err)
	}
	if len(values) != 1 {
		t.Errorf("remove was not rolled back: got %d values", len(values))
	}
}
