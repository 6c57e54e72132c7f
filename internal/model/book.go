package model

import (
	"math"
	"strings"
)

// Field bounds.
const (
	MaxISBNLen    = 20
	MaxTextLen    = 60 // name, author and the whole keyword field
	MaxQuantity   = math.MaxInt32
	MaxPrice      = 100_000_000_000_000 - 1 // minor units
	KeywordSep    = "|"
	forbiddenText = `"`
)

// Book is one catalog record. ISBN is the primary key.
type Book struct {
	ISBN     string `json:"isbn"`
	Name     string `json:"name"`
	Author   string `json:"author"`
	Keyword  string `json:"keyword"` // pipe-delimited token set, "" means no tokens
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"` // minor currency units
}

// Keywords returns the book's keyword tokens in field order.
// An empty keyword field has no tokens.
func (b Book) Keywords() []string {
	return SplitKeywords(b.Keyword)
}

// SplitKeywords splits a keyword field into tokens. "" yields nil.
func SplitKeywords(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, KeywordSep)
}

// isPrintable reports whether every byte of s is in 0x21..0x7E (no space).
func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

func validateText(what, s string, maxLen int) error {
	if s == "" {
		return Errorf(CodeValidationFailed, "%s is empty", what)
	}
	if len(s) > maxLen {
		return Errorf(CodeValidationFailed, "%s longer than %d characters", what, maxLen)
	}
	if !isPrintable(s) {
		return Errorf(CodeValidationFailed, "%s contains non-printable characters", what)
	}
	return nil
}

// ValidateISBN checks 1-20 printable ASCII characters.
func ValidateISBN(isbn string) error {
	return validateText("isbn", isbn, MaxISBNLen)
}

// ValidateName checks 1-60 printable ASCII characters without a quote.
func ValidateName(name string) error {
	if err := validateText("name", name, MaxTextLen); err != nil {
		return err
	}
	if strings.Contains(name, forbiddenText) {
		return Errorf(CodeValidationFailed, "name contains a quote")
	}
	return nil
}

// ValidateAuthor checks 1-60 printable ASCII characters without a quote.
func ValidateAuthor(author string) error {
	if err := validateText("author", author, MaxTextLen); err != nil {
		return err
	}
	if strings.Contains(author, forbiddenText) {
		return Errorf(CodeValidationFailed, "author contains a quote")
	}
	return nil
}

// ValidateKeywordField checks a whole keyword field: 1-60 printable ASCII
// characters without a quote, non-empty tokens, no repeated token.
func ValidateKeywordField(field string) error {
	if err := validateText("keyword", field, MaxTextLen); err != nil {
		return err
	}
	if strings.Contains(field, forbiddenText) {
		return Errorf(CodeValidationFailed, "keyword contains a quote")
	}
	seen := make(map[string]struct{})
	for _, tok := range SplitKeywords(field) {
		if tok == "" {
			return Errorf(CodeValidationFailed, "empty keyword token in %q", field)
		}
		if _, dup := seen[tok]; dup {
			return Errorf(CodeValidationFailed, "repeated keyword token %q", tok)
		}
		seen[tok] = struct{}{}
	}
	return nil
}

// ValidateKeywordQuery checks a single-token keyword lookup value.
func ValidateKeywordQuery(token string) error {
	if strings.Contains(token, KeywordSep) {
		return Errorf(CodeValidationFailed, "multi-keyword queries are not supported")
	}
	return ValidateKeywordField(token)
}

// ValidatePrice checks 0 <= price <= MaxPrice.
func ValidatePrice(price int64) error {
	if price < 0 || price > MaxPrice {
		return Errorf(CodeValidationFailed, "price %d out of range", price)
	}
	return nil
}
