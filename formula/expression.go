package formula

import (
	"context"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
)

// Expression is a parsed formula. It holds no schema state and may be shared
// between goroutines.
type Expression struct {
	source string
	root   *Node
}

// Compile tokenizes and parses src.
func Compile(src string) (*Expression, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	root, err := parse(tokens, len(src))
	if err != nil {
		return nil, err
	}
	return &Expression{source: src, root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level formulas.
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Source returns the formula text as given to Compile.
func (e *Expression) Source() string {
	return e.source
}

// Root returns the expression tree.
func (e *Expression) Root() *Node {
	return e.root
}

// Fields returns the distinct field references in source order.
func (e *Expression) Fields() []string {
	return e.root.Fields()
}

func (e *Expression) String() string {
	return e.root.String()
}

// Check validates the expression against schema. A nil schema runs the
// structural checks only.
func (e *Expression) Check(schema *dataset.Schema) error {
	return Check(e.root, schema)
}

// Evaluate computes the expression over ds.
func (e *Expression) Evaluate(ctx context.Context, ds *dataset.Dataset, filter condition.Criteria, opts ...EvalOption) (*Result, error) {
	return Evaluate(ctx, e.root, ds, filter, opts...)
}
