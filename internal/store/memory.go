package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
)

// Memory is an in-process Backend. Pairs are kept sorted by (key, value), the
// same order the SQLite store yields.
type Memory struct {
	tables map[Table][]Pair
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[Table][]Pair)}
}

func comparePair(a Pair, key string, value []byte) int {
	if c := strings.Compare(a.Key, key); c != 0 {
		return c
	}
	return bytes.Compare(a.Value, value)
}

// QueryExact implements Backend.
func (m *Memory) QueryExact(_ context.Context, table Table, key string) ([][]byte, error) {
	if !table.valid() {
		return nil, fmt.Errorf("query exact: unknown table %q", table)
	}
	pairs := m.tables[table]
	i := sort.Search(len(pairs), func(i int) bool { return pairs[i].Key >= key })
	values := [][]byte{}
	for ; i < len(pairs) && pairs[i].Key == key; i++ {
		values = append(values, bytes.Clone(pairs[i].Value))
	}
	return values, nil
}

// QueryAll implements Backend.
func (m *Memory) QueryAll(_ context.Context, table Table) ([]Pair, error) {
	if !table.valid() {
		return nil, fmt.Errorf("query all: unknown table %q", table)
	}
	pairs := make([]Pair, 0, len(m.tables[table]))
	for _, p := range m.tables[table] {
		pairs = append(pairs, Pair{Key: p.Key, Value: bytes.Clone(p.Value)})
	}
	return pairs, nil
}

// Apply implements Backend. Ops are validated up front, after which none can fail.
func (m *Memory) Apply(_ context.Context, ops ...Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	for _, op := range ops {
		pairs := m.tables[op.Table]
		i := sort.Search(len(pairs), func(i int) bool { return comparePair(pairs[i], op.Key, op.Value) >= 0 })
		switch op.Kind {
		case OpInsert:
			pairs = append(pairs, Pair{})
			copy(pairs[i+1:], pairs[i:])
			pairs[i] = Pair{Key: op.Key, Value: bytes.Clone(op.Value)}
		case OpRemove:
			if i < len(pairs) && comparePair(pairs[i], op.Key, op.Value) == 0 {
				pairs = append(pairs[:i], pairs[i+1:]...)
			}
		}
		m.tables[op.Table] = pairs
	}
	return nil
}
