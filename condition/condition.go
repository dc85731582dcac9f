package condition

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/indicators/dataset"
	"github.com/rulego/indicators/utils/cast"
)

// Criteria maps field names to constraints.
type Criteria map[string]any

// Condition is a compiled row predicate.
type Condition interface {
	Evaluate(row dataset.Row) bool
	String() string
}

// ErrInvalidCriterion is wrapped by errors about malformed constraint values.
var ErrInvalidCriterion = errors.New("invalid filter criterion")

// CriterionError reports the field whose constraint could not be compiled.
// Err is either a *dataset.ResolveError or wraps ErrInvalidCriterion.
type CriterionError struct {
	Field string
	Err   error
}

func (e *CriterionError) Error() string {
	return fmt.Sprintf("filter on '%s': %v", e.Field, e.Err)
}

func (e *CriterionError) Unwrap() error {
	return e.Err
}

// operators maps criterion object keys to expr operators.
var operators = map[string]string{
	"eq":  "==",
	"ne":  "!=",
	"gt":  ">",
	"gte": ">=",
	"min": ">=",
	"lt":  "<",
	"lte": "<=",
	"max": "<=",
}

type acceptAll struct{}

func (acceptAll) Evaluate(dataset.Row) bool { return true }
func (acceptAll) String() string            { return "true" }

// ExprCondition evaluates a compiled expr-lang program against a row.
type ExprCondition struct {
	program *vm.Program
	source  string
	args    []any
}

// Compile resolves criteria against schema and builds the row predicate.
// An empty criteria map accepts every row.
func Compile(criteria Criteria, schema *dataset.Schema) (Condition, error) {
	if len(criteria) == 0 {
		return acceptAll{}, nil
	}
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := &builder{}
	for _, key := range keys {
		field, err := schema.Resolve(key)
		if err != nil {
			return nil, &CriterionError{Field: key, Err: err}
		}
		if err := b.criterion(*field, criteria[key]); err != nil {
			return nil, &CriterionError{Field: key, Err: err}
		}
	}
	return newExprCondition(strings.Join(b.clauses, " && "), b.args)
}

func newExprCondition(source string, args []any) (*ExprCondition, error) {
	program, err := expr.Compile(source,
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match function requires 2 parameters")
			}
			if params[0] == nil {
				return false, nil
			}
			pattern, ok := params[1].(string)
			if !ok {
				return false, fmt.Errorf("like_match pattern must be a string")
			}
			return matchesLikePattern(cast.ToString(params[0]), pattern), nil
		}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}
	return &ExprCondition{program: program, source: source, args: args}, nil
}

// Evaluate reports whether row satisfies the criteria.
// Runtime type mismatches, such as text left in a numeric column, evaluate to false.
func (ec *ExprCondition) Evaluate(row dataset.Row) bool {
	result, err := expr.Run(ec.program, map[string]any{
		"Row":  map[string]any(row),
		"Args": ec.args,
	})
	if err != nil {
		return false
	}
	ok, _ := result.(bool)
	return ok
}

// String returns the expr source of the predicate.
func (ec *ExprCondition) String() string {
	return ec.source
}

type builder struct {
	clauses []string
	args    []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "Args[" + strconv.Itoa(len(b.args)-1) + "]"
}

func (b *builder) criterion(field dataset.Field, value any) error {
	ref := "Row[" + strconv.Quote(field.Name) + "]"
	if value == nil {
		b.clauses = append(b.clauses, ref+" == nil")
		return nil
	}
	if obj, ok := value.(map[string]any); ok {
		return b.object(field, ref, obj)
	}
	if isList(value) {
		return b.membership(field, ref, value)
	}
	v, err := coerce(field, value)
	if err != nil {
		return err
	}
	b.clauses = append(b.clauses, ref+" == "+b.arg(v))
	return nil
}

func (b *builder) object(field dataset.Field, ref string, obj map[string]any) error {
	if len(obj) == 0 {
		return fmt.Errorf("%w: empty constraint object", ErrInvalidCriterion)
	}
	ops := make([]string, 0, len(obj))
	for op := range obj {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		raw := obj[op]
		switch key := strings.ToLower(op); key {
		case "in":
			if err := b.membership(field, ref, raw); err != nil {
				return err
			}
		case "like":
			pattern, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: like expects a string pattern, got %v", ErrInvalidCriterion, raw)
			}
			b.clauses = append(b.clauses, "like_match("+ref+", "+b.arg(pattern)+")")
		default:
			symbol, ok := operators[key]
			if !ok {
				return fmt.Errorf("%w: unknown operator '%s'", ErrInvalidCriterion, op)
			}
			v, err := coerce(field, raw)
			if err != nil {
				return err
			}
			b.clauses = append(b.clauses, "("+ref+" != nil && "+ref+" "+symbol+" "+b.arg(v)+")")
		}
	}
	return nil
}

func (b *builder) membership(field dataset.Field, ref string, raw any) error {
	if !isList(raw) {
		return fmt.Errorf("%w: in expects a list, got %v", ErrInvalidCriterion, raw)
	}
	rv := reflect.ValueOf(raw)
	values := make([]any, rv.Len())
	for i := range values {
		v, err := coerce(field, rv.Index(i).Interface())
		if err != nil {
			return err
		}
		values[i] = v
	}
	b.clauses = append(b.clauses, "("+ref+" != nil && "+ref+" in "+b.arg(values)+")")
	return nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// coerce converts a constraint value to the representation rows use for field.
func coerce(field dataset.Field, v any) (any, error) {
	if field.IsNumeric() {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v is not a number", ErrInvalidCriterion, v)
		}
		return f, nil
	}
	if v == nil {
		return nil, fmt.Errorf("%w: null is not a valid constraint value", ErrInvalidCriterion)
	}
	return cast.ToString(v), nil
}

// matchesLikePattern implements SQL LIKE: % matches any run, _ exactly one character.
func matchesLikePattern(text, pattern string) bool {
	return likeMatch([]rune(text), []rune(pattern))
}

func likeMatch(text, pattern []rune) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '%':
			for len(pattern) > 0 && pattern[0] == '%' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(text); i++ {
				if likeMatch(text[i:], pattern) {
					return true
				}
			}
			return false
		case '_':
			if len(text) == 0 {
				return false
			}
		default:
			if len(text) == 0 || text[0] != pattern[0] {
				return false
			}
		}
		text, pattern = text[1:], pattern[1:]
	}
	return len(text) == 0
}
