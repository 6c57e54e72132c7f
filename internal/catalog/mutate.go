package catalog

import (
	"context"
	"math"

	"github.com/roach88/bookstore/internal/account"
	"github.com/roach88/bookstore/internal/model"
)

// CreateStub returns the book with isbn, creating an empty one if absent.
// A stub is indexed under the empty name and empty author; its empty keyword
// field has no tokens and so no keyword entry. Requires a Worker grant.
func (c *Catalog) CreateStub(ctx context.Context, g account.Grant, isbn string) (model.Book, error) {
	if err := g.Require(model.Worker); err != nil {
		return model.Book{}, err
	}
	if err := model.ValidateISBN(isbn); err != nil {
		return model.Book{}, err
	}
	ok, err := c.exists(ctx, isbn)
	if err != nil {
		return model.Book{}, err
	}
	if ok {
		return c.load(ctx, isbn)
	}
	stub := model.Book{ISBN: isbn}
	if err := c.commit(ctx, Commit{New: stub}); err != nil {
		return model.Book{}, err
	}
	return stub, nil
}

// AmountCheck vets the money an adjustment would move before it is committed.
type AmountCheck func(amount int64) error

// AdjustQuantity adds delta to a book's quantity: negative for a sale,
// positive for a restock. It returns the money moved, -delta*price, so a
// sale yields positive income. Every check must pass before anything is
// written. Requires a Customer grant.
func (c *Catalog) AdjustQuantity(ctx context.Context, g account.Grant, isbn string, delta int64, checks ...AmountCheck) (int64, error) {
	if err := g.Require(model.Customer); err != nil {
		return 0, err
	}
	if delta < -model.MaxQuantity || delta > model.MaxQuantity {
		return 0, model.Errorf(model.CodeInvalidQuantity, "delta %d out of range", delta)
	}
	old, err := c.LookupByISBN(ctx, isbn)
	if err != nil {
		return 0, err
	}
	next, err := withQuantity(old, delta)
	if err != nil {
		return 0, err
	}
	if old.Price != 0 && abs(delta) > math.MaxInt64/old.Price {
		return 0, model.Errorf(model.CodeInvalidQuantity, "%d x %d overflows", delta, old.Price)
	}
	amount := -delta * old.Price
	for _, check := range checks {
		if err := check(amount); err != nil {
			return 0, err
		}
	}
	if err := c.commit(ctx, Commit{Old: old, New: next}); err != nil {
		return 0, err
	}
	return amount, nil
}

// ImportStock raises a book's quantity by qty and returns the updated book.
// The cost of the stock is priced by the caller. Requires a Worker grant.
func (c *Catalog) ImportStock(ctx context.Context, g account.Grant, isbn string, qty int64) (model.Book, error) {
	if err := g.Require(model.Worker); err != nil {
		return model.Book{}, err
	}
	if qty < 0 || qty > model.MaxQuantity {
		return model.Book{}, model.Errorf(model.CodeInvalidQuantity, "import quantity %d out of range", qty)
	}
	old, err := c.LookupByISBN(ctx, isbn)
	if err != nil {
		return model.Book{}, err
	}
	next, err := withQuantity(old, qty)
	if err != nil {
		return model.Book{}, err
	}
	if err := c.commit(ctx, Commit{Old: old, New: next}); err != nil {
		return model.Book{}, err
	}
	return next, nil
}

// EditFields applies a batch of field clauses to one book and returns the
// committed record. Every clause is staged onto a copy before anything is
// written. Requires a Worker grant.
func (c *Catalog) EditFields(ctx context.Context, g account.Grant, isbn string, clauses []model.FieldClause) (model.Book, error) {
	if err := g.Require(model.Worker); err != nil {
		return model.Book{}, err
	}
	if len(clauses) == 0 {
		return model.Book{}, model.Errorf(model.CodeEmptyUpdateList, "no fields to update")
	}
	seen := make(map[model.Field]bool, len(clauses))
	for _, cl := range clauses {
		if cl == nil {
			return model.Book{}, model.Errorf(model.CodeValidationFailed, "nil clause")
		}
		if seen[cl.Field()] {
			return model.Book{}, model.Errorf(model.CodeDuplicateFieldInBatch, "%s given twice", cl.Field())
		}
		seen[cl.Field()] = true
	}

	old, err := c.LookupByISBN(ctx, isbn)
	if err != nil {
		return model.Book{}, err
	}
	staged := old
	for _, cl := range clauses {
		if rename, ok := cl.(model.ISBNClause); ok && rename.ISBN() != old.ISBN {
			taken, err := c.exists(ctx, rename.ISBN())
			if err != nil {
				return model.Book{}, err
			}
			if taken {
				return model.Book{}, model.Errorf(model.CodeDuplicateKey, "isbn %s already exists", rename.ISBN())
			}
		}
		cl.Apply(&staged)
	}

	if err := c.commit(ctx, Commit{Old: old, New: staged}); err != nil {
		return model.Book{}, err
	}
	return staged, nil
}

func withQuantity(b model.Book, delta int64) (model.Book, error) {
	q := b.Quantity + delta
	if q < 0 {
		return model.Book{}, model.Errorf(model.CodeInvalidQuantity, "%s has %d, cannot remove %d", b.ISBN, b.Quantity, -delta)
	}
	if q > model.MaxQuantity {
		return model.Book{}, model.Errorf(model.CodeInvalidQuantity, "%s quantity would exceed %d", b.ISBN, model.MaxQuantity)
	}
	b.Quantity = q
	return b, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
