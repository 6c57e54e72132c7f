package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/store"
)

// Commit is one staged catalog mutation. A zero Old (empty ISBN) means New
// is a fresh record.
type Commit struct {
	Old model.Book
	New model.Book
}

func (cm Commit) creates() bool { return cm.Old.ISBN == "" }

// Ops returns the store operations that move the tables from Old to New.
//
// Secondary entries come first. When the ISBN changes every secondary entry
// moves, because index values are the owning ISBN. Otherwise only fields whose
// value changed are touched, and keywords are diffed token by token. The
// primary remove and insert come last.
func (cm Commit) Ops() ([]store.Op, error) {
	if cm.Old == cm.New {
		return nil, nil
	}
	var ops []store.Op
	oldISBN, newISBN := []byte(cm.Old.ISBN), []byte(cm.New.ISBN)
	moved := cm.creates() || cm.Old.ISBN != cm.New.ISBN

	if moved || cm.Old.Name != cm.New.Name {
		if !cm.creates() {
			ops = append(ops, store.Remove(store.NameIndex, cm.Old.Name, oldISBN))
		}
		ops = append(ops, store.Insert(store.NameIndex, cm.New.Name, newISBN))
	}
	if moved || cm.Old.Author != cm.New.Author {
		if !cm.creates() {
			ops = append(ops, store.Remove(store.AuthorIndex, cm.Old.Author, oldISBN))
		}
		ops = append(ops, store.Insert(store.AuthorIndex, cm.New.Author, newISBN))
	}

	removed, added := cm.Old.Keywords(), cm.New.Keywords()
	if !moved {
		removed, added = difference(removed, added), difference(added, removed)
	}
	for _, tok := range removed {
		ops = append(ops, store.Remove(store.KeywordIndex, tok, oldISBN))
	}
	for _, tok := range added {
		ops = append(ops, store.Insert(store.KeywordIndex, tok, newISBN))
	}

	if !cm.creates() {
		old, err := store.MarshalValue(cm.Old)
		if err != nil {
			return nil, err
		}
		ops = append(ops, store.Remove(store.Books, cm.Old.ISBN, old))
	}
	next, err := store.MarshalValue(cm.New)
	if err != nil {
		return nil, err
	}
	ops = append(ops, store.Insert(store.Books, cm.New.ISBN, next))
	return ops, nil
}

// difference returns the tokens of a that are not in b, in a's order.
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, tok := range b {
		in[tok] = struct{}{}
	}
	var out []string
	for _, tok := range a {
		if _, ok := in[tok]; !ok {
			out = append(out, tok)
		}
	}
	return out
}

// commit applies cm as one store call.
func (c *Catalog) commit(ctx context.Context, cm Commit) error {
	ops, err := cm.Ops()
	if err != nil {
		return fmt.Errorf("stage %s: %w", cm.New.ISBN, err)
	}
	if len(ops) == 0 {
		return nil
	}
	if err := c.backend.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("commit %s: %w", cm.New.ISBN, err)
	}
	slog.Debug("catalog commit", "old", cm.Old.ISBN, "new", cm.New.ISBN, "ops", len(ops))
	return nil
}
