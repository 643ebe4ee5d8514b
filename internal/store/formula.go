package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrUnsafeFilterValue = errors.New("filter value contains control characters")

// Formula is a filterByFormula expression. Build it with Eq so that
// user-supplied values are always string literals.
type Formula string

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Eq renders {field} = 'value'. Backslashes and single quotes in value are
// escaped; control characters are rejected because the store has no escape
// for them.
func Eq(field, value string) (Formula, error) {
	if field == "" || strings.ContainsAny(field, "{}") {
		return "", fmt.Errorf("invalid field name %q", field)
	}
	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return "", ErrUnsafeFilterValue
	}
	return Formula(fmt.Sprintf("{%s} = '%s'", field, literalEscaper.Replace(value))), nil
}
