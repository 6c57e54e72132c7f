package shell

import (
	"strings"

	"github.com/roach88/bookstore/internal/model"
)

// MaxLineLen bounds one command line.
const MaxLineLen = 1024

// splitLine checks the line's length and charset and splits it on runs of spaces.
func splitLine(line string) ([]string, error) {
	if len(line) > MaxLineLen {
		return nil, model.Errorf(model.CodeValidationFailed, "line longer than %d characters", MaxLineLen)
	}
	for i := 0; i < len(line); i++ {
		if line[i] < 0x20 || line[i] > 0x7E {
			return nil, model.Errorf(model.CodeValidationFailed, "non-printable character at %d", i)
		}
	}
	return strings.FieldsFunc(line, func(r rune) bool { return r == ' ' }), nil
}

// parseClause parses one field flag: -ISBN=x, -name="x", -author="x",
// -keyword="x" or -price=x.
func parseClause(arg string) (model.FieldClause, error) {
	if v, ok := strings.CutPrefix(arg, "-ISBN="); ok {
		return clause(model.NewISBNClause(v))
	}
	if v, ok := strings.CutPrefix(arg, "-price="); ok {
		price, err := model.ParsePrice(v)
		if err != nil {
			return nil, err
		}
		return clause(model.NewPriceClause(price))
	}
	for _, f := range []model.Field{model.FieldName, model.FieldAuthor, model.FieldKeyword} {
		v, ok := quoted(arg, "-"+f.String()+"=")
		if !ok {
			continue
		}
		switch f {
		case model.FieldName:
			return clause(model.NewNameClause(v))
		case model.FieldAuthor:
			return clause(model.NewAuthorClause(v))
		default:
			return clause(model.NewKeywordClause(v))
		}
	}
	return nil, model.Errorf(model.CodeValidationFailed, "malformed field %q", arg)
}

// clause converts a constructor result so a failed clause is a nil interface.
func clause[T model.FieldClause](c T, err error) (model.FieldClause, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// quoted extracts x from prefix + `"x"`. x must be non-empty.
func quoted(arg, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(arg, prefix)
	if !ok || len(rest) < 3 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}
