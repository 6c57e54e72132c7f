package catalog

import (
	"context"
	"fmt"

	"github.com/roach88/bookstore/internal/model"
	"github.com/roach88/bookstore/internal/store"
)

// Catalog is the book table plus its secondary indices.
type Catalog struct {
	backend store.Backend
}

// New creates a catalog over backend.
func New(backend store.Backend) *Catalog {
	return &Catalog{backend: backend}
}

// LookupByISBN returns the book with the given ISBN or ErrNotFound.
func (c *Catalog) LookupByISBN(ctx context.Context, isbn string) (model.Book, error) {
	if err := model.ValidateISBN(isbn); err != nil {
		return model.Book{}, err
	}
	return c.load(ctx, isbn)
}

// LookupBySecondaryField returns every book whose field equals value, in ISBN order.
// field must be FieldName, FieldAuthor or FieldKeyword. No match is an empty slice.
func (c *Catalog) LookupBySecondaryField(ctx context.Context, field model.Field, value string) ([]model.Book, error) {
	table, err := indexFor(field, value)
	if err != nil {
		return nil, err
	}
	isbns, err := c.backend.QueryExact(ctx, table, value)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %q: %w", field, value, err)
	}
	books := make([]model.Book, 0, len(isbns))
	for _, isbn := range isbns {
		b, err := c.load(ctx, string(isbn))
		if err != nil {
			return nil, fmt.Errorf("%s index entry %q: %w", field, isbn, err)
		}
		books = append(books, b)
	}
	return books, nil
}

// ListAll returns every book in ISBN order.
func (c *Catalog) ListAll(ctx context.Context) ([]model.Book, error) {
	pairs, err := c.backend.QueryAll(ctx, store.Books)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books := make([]model.Book, 0, len(pairs))
	for _, p := range pairs {
		var b model.Book
		if err := store.UnmarshalValue(p.Value, &b); err != nil {
			return nil, fmt.Errorf("book %s: %w", p.Key, err)
		}
		books = append(books, b)
	}
	return books, nil
}

func indexFor(field model.Field, value string) (store.Table, error) {
	switch field {
	case model.FieldName:
		return store.NameIndex, model.ValidateName(value)
	case model.FieldAuthor:
		return store.AuthorIndex, model.ValidateAuthor(value)
	case model.FieldKeyword:
		return store.KeywordIndex, model.ValidateKeywordQuery(value)
	}
	return "", model.Errorf(model.CodeValidationFailed, "%s is not a secondary field", field)
}

// exists reports whether a book with isbn is stored.
func (c *Catalog) exists(ctx context.Context, isbn string) (bool, error) {
	values, err := c.backend.QueryExact(ctx, store.Books, isbn)
	if err != nil {
		return false, fmt.Errorf("lookup book %s: %w", isbn, err)
	}
	return len(values) > 0, nil
}

func (c *Catalog) load(ctx context.Context, isbn string) (model.Book, error) {
	values, err := c.backend.QueryExact(ctx, store.Books, isbn)
	if err != nil {
		return model.Book{}, fmt.Errorf("lookup book %s: %w", isbn, err)
	}
	if len(values) == 0 {
		return model.Book{}, model.Errorf(model.CodeNotFound, "no book %s", isbn)
	}
	var b model.Book
	if err := store.UnmarshalValue(values[0], &b); err != nil {
		return model.Book{}, fmt.Errorf("book %s: %w", isbn, err)
	}
	return b, nil
}
