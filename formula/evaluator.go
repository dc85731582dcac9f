package formula

import (
	"context"
	"errors"
	"math"

	"github.com/rulego/indicators/aggregator"
	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
)

// Result is the outcome of a successful evaluation.
type Result struct {
	Value         float64 `json:"value"`
	RowsProcessed int     `json:"rows_processed"`
	TotalRows     int     `json:"total_rows"`
}

// EvalOption configures a single evaluation.
type EvalOption func(*evalConfig)

type evalConfig struct {
	maxRows       int
	checkInterval int
}

// WithMaxRows rejects datasets with more than n rows. Zero means unlimited.
func WithMaxRows(n int) EvalOption {
	return func(c *evalConfig) {
		c.maxRows = n
	}
}

// WithCheckInterval sets how many rows are scanned between context checks.
func WithCheckInterval(n int) EvalOption {
	return func(c *evalConfig) {
		if n > 0 {
			c.checkInterval = n
		}
	}
}

const defaultCheckInterval = 1024

// Evaluate computes tree over the rows of ds selected by filter.
// The tree is resolved against ds's schema first; ds is never modified.
func Evaluate(ctx context.Context, tree *Node, ds *dataset.Dataset, filter condition.Criteria, opts ...EvalOption) (*Result, error) {
	cfg := evalConfig{checkInterval: defaultCheckInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	total := ds.Len()
	if cfg.maxRows > 0 && total > cfg.maxRows {
		e := newError(StageEvaluate, KindBudget, NoPosition, "dataset has %d rows, limit is %d", total, cfg.maxRows)
		e.Reason = ReasonBudget
		return nil, e
	}

	schema := ds.Schema()
	if schema == nil {
		schema = dataset.NewSchema()
	}
	fields, err := bind(tree, schema)
	if err != nil {
		return nil, err
	}
	cond, err := condition.Compile(filter, schema)
	if err != nil {
		return nil, filterError(err)
	}

	ev := &evaluator{ctx: ctx, cfg: cfg, fields: fields, total: total}
	rows, err := ev.filter(ds.Rows(), cond)
	if err != nil {
		return nil, err
	}
	ev.rows = rows

	value, err := ev.eval(tree)
	if err != nil {
		return nil, err
	}
	return &Result{Value: value, RowsProcessed: len(rows), TotalRows: total}, nil
}

type evaluator struct {
	ctx    context.Context
	cfg    evalConfig
	fields binding
	rows   []dataset.Row
	total  int
}

func (ev *evaluator) checkpoint(i int) error {
	if i%ev.cfg.checkInterval != 0 {
		return nil
	}
	if err := ev.ctx.Err(); err != nil {
		e := newError(StageEvaluate, KindCancelled, NoPosition, "evaluation stopped: %v", err)
		e.Reason = ReasonCancelled
		return e
	}
	return nil
}

func (ev *evaluator) filter(rows []dataset.Row, cond condition.Condition) ([]dataset.Row, error) {
	out := make([]dataset.Row, 0, len(rows))
	for i, r := range rows {
		if err := ev.checkpoint(i); err != nil {
			return nil, err
		}
		if cond.Evaluate(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (ev *evaluator) eval(n *Node) (float64, error) {
	switch n.Type {
	case NodeNumber:
		return n.Value, nil
	case NodeAggregate:
		return ev.aggregate(n)
	case NodeBinary:
		left, err := ev.eval(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return 0, err
		}
		v, err := apply(n.Op, left, right)
		if errors.Is(err, errDivisionByZero) {
			e := newError(StageEvaluate, KindDivisionByZero, n.Pos, "division by zero")
			e.Reason = ReasonDivisionByZero
			return 0, e
		}
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			e := newError(StageEvaluate, KindNonFinite, n.Pos, "result of '%s' is not a finite number", n.Op)
			e.Reason = ReasonNonFinite
			return 0, e
		}
		return v, nil
	}
	e := newError(StageEvaluate, KindStructure, n.Pos, "field '%s' must be used inside an aggregation function", n.Name)
	e.Field = n.Name
	return 0, e
}

func (ev *evaluator) aggregate(n *Node) (float64, error) {
	agg, err := aggregator.Create(n.Name)
	if err != nil {
		return 0, newError(StageEvaluate, KindUnknownFunction, n.Pos, "unknown function %s", n.Name)
	}
	arg := n.Args[0]
	for i, r := range ev.rows {
		if err := ev.checkpoint(i); err != nil {
			return 0, err
		}
		if arg.Type == NodeField {
			agg.Add(r[ev.fields[arg.Name].Name])
			continue
		}
		if v, ok := ev.rowValue(arg, r); ok {
			agg.Add(v)
		}
	}

	v, err := agg.Result(aggregator.Context{TotalRows: ev.total})
	if errors.Is(err, aggregator.ErrEmpty) {
		e := newError(StageEvaluate, KindEmptyAggregation, n.Pos, "%s has no values to aggregate", n.String())
		e.Reason = ReasonEmptyAggregation
		return 0, e
	}
	if err != nil {
		return 0, newError(StageEvaluate, KindStructure, n.Pos, "%s: %v", n.Name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e := newError(StageEvaluate, KindNonFinite, n.Pos, "%s is not a finite number", n.String())
		e.Reason = ReasonNonFinite
		return 0, e
	}
	return v, nil
}

// rowValue evaluates an argument expression for one row. A null or text
// operand, a zero divisor or a non-finite result excludes the row.
func (ev *evaluator) rowValue(n *Node, r dataset.Row) (float64, bool) {
	switch n.Type {
	case NodeNumber:
		return n.Value, true
	case NodeField:
		v, ok := r[ev.fields[n.Name].Name].(float64)
		return v, ok
	case NodeBinary:
		left, ok := ev.rowValue(n.Left, r)
		if !ok {
			return 0, false
		}
		right, ok := ev.rowValue(n.Right, r)
		if !ok {
			return 0, false
		}
		v, err := apply(n.Op, left, right)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

var errDivisionByZero = errors.New("division by zero")

func apply(op string, left, right float64) (float64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, errDivisionByZero
		}
		return left / right, nil
	}
	return 0, errors.New("unsupported operator " + op)
}
