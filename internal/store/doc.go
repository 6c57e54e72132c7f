// Package store provides SQLite-backed order-preserving keyed multimaps.
//
// Every table holds (key, value) pairs. Duplicate keys are permitted and the
// store enforces no uniqueness; primary-key uniqueness is the caller's
// invariant. The tables are fixed:
//   - books:         ISBN -> JSON book record
//   - name_index:    name -> ISBN
//   - author_index:  author -> ISBN
//   - keyword_index: keyword token -> ISBN
//   - users:         user id -> JSON user record
//
// # Critical Patterns
//
// Deterministic ordering
//   - QueryAll: ORDER BY k ASC, v ASC (binary collation)
//   - QueryExact: ORDER BY v ASC for the one key
//
// Exact-pair removal
//   - Remove deletes one row matching (key, value) and is a no-op when absent
//
// Staged commits
//   - Apply runs a list of inserts and removes in one SQLite transaction, so a
//     delete-then-insert replace never leaves a table without its entry after
//     a crash. Memory applies the same list in-process.
//
// # Database Configuration
//
//   - WAL mode: readers do not block the single writer
//   - synchronous=NORMAL (FULL with the Durable option)
//   - busy_timeout=5000
//   - one connection: the process is the only writer
package store
