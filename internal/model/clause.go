package model

// Field names a catalog record field that a clause or lookup targets.
type Field int

const (
	FieldISBN Field = iota
	FieldName
	FieldAuthor
	FieldKeyword
	FieldPrice
)

// String returns the field's command-line tag.
func (f Field) String() string {
	switch f {
	case FieldISBN:
		return "ISBN"
	case FieldName:
		return "name"
	case FieldAuthor:
		return "author"
	case FieldKeyword:
		return "keyword"
	case FieldPrice:
		return "price"
	}
	return "unknown"
}

// FieldClause is one validated field update. The concrete types are
// ISBNClause, NameClause, AuthorClause, KeywordClause and PriceClause;
// values can only be built through their constructors.
type FieldClause interface {
	Field() Field
	// Apply writes the clause payload onto b.
	Apply(b *Book)
	clauseMarker()
}

// ISBNClause renames a record's primary key.
type ISBNClause struct{ isbn string }

// NewISBNClause validates isbn and wraps it in a clause.
func NewISBNClause(isbn string) (ISBNClause, error) {
	if err := ValidateISBN(isbn); err != nil {
		return ISBNClause{}, err
	}
	return ISBNClause{isbn: isbn}, nil
}

func (c ISBNClause) ISBN() string  { return c.isbn }
func (c ISBNClause) Field() Field  { return FieldISBN }
func (c ISBNClause) Apply(b *Book) { b.ISBN = c.isbn }
func (ISBNClause) clauseMarker()   {}

// NameClause sets a record's name.
type NameClause struct{ name string }

// NewNameClause validates name and wraps it in a clause.
func NewNameClause(name string) (NameClause, error) {
	if err := ValidateName(name); err != nil {
		return NameClause{}, err
	}
	return NameClause{name: name}, nil
}

func (c NameClause) Name() string  { return c.name }
func (c NameClause) Field() Field  { return FieldName }
func (c NameClause) Apply(b *Book) { b.Name = c.name }
func (NameClause) clauseMarker()   {}

// AuthorClause sets a record's author.
type AuthorClause struct{ author string }

// NewAuthorClause validates author and wraps it in a clause.
func NewAuthorClause(author string) (AuthorClause, error) {
	if err := ValidateAuthor(author); err != nil {
		return AuthorClause{}, err
	}
	return AuthorClause{author: author}, nil
}

func (c AuthorClause) Author() string { return c.author }
func (c AuthorClause) Field() Field   { return FieldAuthor }
func (c AuthorClause) Apply(b *Book)  { b.Author = c.author }
func (AuthorClause) clauseMarker()    {}

// KeywordClause replaces a record's keyword token set.
type KeywordClause struct{ field string }

// NewKeywordClause validates a pipe-delimited keyword field and wraps it in a clause.
func NewKeywordClause(field string) (KeywordClause, error) {
	if err := ValidateKeywordField(field); err != nil {
		return KeywordClause{}, err
	}
	return KeywordClause{field: field}, nil
}

func (c KeywordClause) Keyword() string  { return c.field }
func (c KeywordClause) Tokens() []string { return SplitKeywords(c.field) }
func (c KeywordClause) Field() Field     { return FieldKeyword }
func (c KeywordClause) Apply(b *Book)    { b.Keyword = c.field }
func (KeywordClause) clauseMarker()      {}

// PriceClause sets a record's unit price in minor units.
type PriceClause struct{ price int64 }

// NewPriceClause validates a minor-unit price and wraps it in a clause.
func NewPriceClause(price int64) (PriceClause, error) {
	if err := ValidatePrice(price); err != nil {
		return PriceClause{}, err
	}
	return PriceClause{price: price}, nil
}

func (c PriceClause) Price() int64  { return c.price }
func (c PriceClause) Field() Field  { return FieldPrice }
func (c PriceClause) Apply(b *Book) { b.Price = c.price }
func (PriceClause) clauseMarker()   {}
