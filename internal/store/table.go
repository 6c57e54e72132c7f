package store

import (
	"context"
	"fmt"
)

// Table names one keyed multimap.
type Table string

const (
	Books        Table = "books"
	NameIndex    Table = "name_index"
	AuthorIndex  Table = "author_index"
	KeywordIndex Table = "keyword_index"
	Users        Table = "users"
)

// Tables lists every table in schema order.
var Tables = []Table{Books, NameIndex, AuthorIndex, KeywordIndex, Users}

// valid guards table names before they are interpolated into SQL.
func (t Table) valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// Pair is one (key, value) entry.
type Pair struct {
	Key   string
	Value []byte
}

// OpKind is the kind of a staged mutation.
type OpKind int

const (
	OpInsert OpKind = iota
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// Op is one staged insert or remove of an exact pair.
type Op struct {
	Kind  OpKind
	Table Table
	Key   string
	Value []byte
}

// Insert stages an insert of (key, value) into table.
func Insert(table Table, key string, value []byte) Op {
	return Op{Kind: OpInsert, Table: table, Key: key, Value: value}
}

// Remove stages a removal of one (key, value) pair from table.
func Remove(table Table, key string, value []byte) Op {
	return Op{Kind: OpRemove, Table: table, Key: key, Value: value}
}

// Backend is the keyed store contract the catalog and directory are built on.
type Backend interface {
	// QueryExact returns every value stored under key, ordered by value.
	QueryExact(ctx context.Context, table Table, key string) ([][]byte, error)

	// QueryAll returns every pair of table, ordered by key then value.
	QueryAll(ctx context.Context, table Table) ([]Pair, error)

	// Apply executes ops in order as one unit.
	Apply(ctx context.Context, ops ...Op) error
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*Memory)(nil)
)

// validateOps rejects unknown tables and kinds before anything is written.
func validateOps(ops []Op) error {
	for i, op := range ops {
		if !op.Table.valid() {
			return fmt.Errorf("apply: op %d: unknown table %q", i, op.Table)
		}
		if op.Kind != OpInsert && op.Kind != OpRemove {
			return fmt.Errorf("apply: op %d: unknown kind %d", i, op.Kind)
		}
		if op.Value == nil {
			return fmt.Errorf("apply: op %d: nil value", i)
		}
	}
	return nil
}
