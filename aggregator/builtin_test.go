package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, name AggregateType, values ...any) AggregatorFunction {
	t.Helper()
	agg, err := Create(string(name))
	require.NoError(t, err)
	for _, v := range values {
		agg.Add(v)
	}
	return agg
}

func TestBuiltinAggregators(t *testing.T) {
	tests := []struct {
		name     string
		fn       AggregateType
		values   []any
		total    int
		expected float64
	}{
		{"count skips nulls", Count, []any{1.0, nil, "x", "  ", 0.0}, 5, 3},
		{"sum", Sum, []any{1.0, 2.0, nil, "n/a", 3.5}, 5, 6.5},
		{"sum exact decimals", Sum, []any{0.1, 0.2}, 2, 0.3},
		{"sum empty is zero", Sum, nil, 0, 0},
		{"avg", Avg, []any{2.0, 4.0, nil}, 3, 3},
		{"min", Min, []any{5.0, -2.0, 3.0}, 3, -2},
		{"max", Max, []any{5.0, -2.0, 3.0}, 3, 5},
		{"max all negative", Max, []any{-5.0, -2.0}, 2, -2},
		{"percentage", Percentage, []any{"yes", nil, "no", ""}, 4, 50},
		{"count empty is zero", Count, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feed(t, tt.fn, tt.values...).Result(Context{TotalRows: tt.total})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEmptyAggregation(t *testing.T) {
	for _, fn := range []AggregateType{Avg, Min, Max} {
		t.Run(string(fn), func(t *testing.T) {
			_, err := feed(t, fn, nil, "text").Result(Context{TotalRows: 2})
			assert.ErrorIs(t, err, ErrEmpty)
		})
	}
	_, err := feed(t, Percentage).Result(Context{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewIsIndependent(t *testing.T) {
	a := feed(t, Sum, 1.0, 2.0)
	b := a.New()
	b.Add(10.0)
	av, _ := a.Result(Context{})
	bv, _ := b.Result(Context{})
	assert.Equal(t, 3.0, av)
	assert.Equal(t, 10.0, bv)
}
