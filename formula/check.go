package formula

import (
	"errors"

	"github.com/rulego/indicators/aggregator"
	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
)

// Check validates the structure of a tree and, when schema is not nil, binds
// every field reference and checks field kinds against the functions using them.
func Check(tree *Node, schema *dataset.Schema) error {
	_, err := bind(tree, schema)
	return err
}

// binding maps field references, as written, to schema fields.
type binding map[string]dataset.Field

func bind(tree *Node, schema *dataset.Schema) (binding, error) {
	if tree == nil {
		return nil, newError(StageParse, KindEmptyFormula, 0, "formula is empty")
	}
	c := &checker{schema: schema, fields: make(binding)}
	if err := c.walk(tree, nil); err != nil {
		return nil, err
	}
	return c.fields, nil
}

type checker struct {
	schema *dataset.Schema
	fields binding
}

func (c *checker) walk(n *Node, agg *Node) error {
	switch n.Type {
	case NodeNumber:
		return nil

	case NodeField:
		if agg == nil {
			err := newError(StageResolve, KindStructure, n.Pos, "field '%s' must be used inside an aggregation function", n.Name)
			err.Field = n.Name
			return err
		}
		if c.schema == nil {
			return nil
		}
		field, err := c.schema.Resolve(n.Name)
		if err != nil {
			return resolveError(n.Pos, err)
		}
		desc, _ := aggregator.Lookup(agg.Name)
		rowExpr := agg.Args[0] != n
		if (desc.Numeric || rowExpr) && !field.IsNumeric() {
			e := newError(StageResolve, KindNotNumeric, n.Pos, "field '%s' is not numeric and cannot be used in %s", field.Name, agg.Name)
			e.Field = n.Name
			e.Reason = ReasonNotNumeric
			return e
		}
		c.fields[n.Name] = *field
		return nil

	case NodeAggregate:
		if agg != nil {
			return newError(StageResolve, KindStructure, n.Pos, "aggregation %s cannot be nested inside %s", n.Name, agg.Name)
		}
		if _, ok := aggregator.Lookup(n.Name); !ok {
			return newError(StageResolve, KindUnknownFunction, n.Pos, "unknown function %s", n.Name)
		}
		if len(n.Args) != 1 {
			return newError(StageResolve, KindArity, n.Pos, "%s expects exactly one argument", n.Name)
		}
		if !n.Args[0].hasField() {
			return newError(StageResolve, KindStructure, n.Pos, "%s requires a field reference in its argument", n.Name)
		}
		return c.walk(n.Args[0], n)

	case NodeBinary:
		if err := c.walk(n.Left, agg); err != nil {
			return err
		}
		return c.walk(n.Right, agg)
	}
	return newError(StageResolve, KindStructure, n.Pos, "unsupported expression node")
}

// resolveError converts a schema lookup failure into a Resolve diagnostic.
func resolveError(pos int, err error) *Error {
	var re *dataset.ResolveError
	if !errors.As(err, &re) {
		return newError(StageResolve, KindUnknownField, pos, "%v", err)
	}
	kind := KindUnknownField
	if errors.Is(re.Err, dataset.ErrAmbiguousField) {
		kind = KindAmbiguousField
	}
	e := newError(StageResolve, kind, pos, "%s", re.Error())
	e.Field = re.Field
	e.Suggestions = re.Suggestions
	return e
}

// filterError converts a filter compilation failure into a Resolve diagnostic.
func filterError(err error) *Error {
	var ce *condition.CriterionError
	if errors.As(err, &ce) {
		var re *dataset.ResolveError
		if errors.As(ce.Err, &re) {
			e := resolveError(NoPosition, re)
			e.Message = "filter " + e.Message
			return e
		}
		e := newError(StageResolve, KindInvalidFilter, NoPosition, "%s", ce.Error())
		e.Field = ce.Field
		return e
	}
	return newError(StageResolve, KindInvalidFilter, NoPosition, "invalid filter: %v", err)
}
