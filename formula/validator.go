package formula

import (
	"github.com/rulego/indicators/dataset"
)

// Validate reports whether src is a well-formed formula and, when schema is not
// nil, whether every field it references exists with a suitable kind.
// The returned error is always a *Error.
func Validate(src string, schema *dataset.Schema) error {
	e, err := Compile(src)
	if err != nil {
		return err
	}
	return e.Check(schema)
}

// IsValidFormula is a convenience wrapper around Validate.
func IsValidFormula(src string, schema *dataset.Schema) bool {
	return Validate(src, schema) == nil
}
