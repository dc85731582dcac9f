package formula

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
)

func evaluate(t *testing.T, src string, ds *dataset.Dataset, filter condition.Criteria, opts ...EvalOption) (*Result, error) {
	t.Helper()
	e, err := Compile(src)
	require.NoError(t, err)
	return e.Evaluate(context.Background(), ds, filter, opts...)
}

func evalError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	fe, ok := AsError(err)
	require.True(t, ok, err.Error())
	return fe
}

func vaccinationDataset() *dataset.Dataset {
	records := make([]map[string]any, 100)
	for i := range records {
		var vaccinated any
		if i < 80 {
			vaccinated = "yes"
		}
		records[i] = map[string]any{"Vaccinated": vaccinated, "Total Population": 1}
	}
	return dataset.FromRecords(records, dataset.DefaultNumericThreshold)
}

func TestEvaluateVaccinationRate(t *testing.T) {
	res, err := evaluate(t, "(COUNT(Vaccinated) / COUNT(Total Population)) * 100", vaccinationDataset(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, res.Value, 1e-9)
	assert.Equal(t, 100, res.RowsProcessed)
	assert.Equal(t, 100, res.TotalRows)
}

func TestEvaluateFilterBeforeAggregation(t *testing.T) {
	ds := dataset.FromRecords([]map[string]any{
		{"a": 1, "b": "x"},
		{"a": 2, "b": "y"},
	}, dataset.DefaultNumericThreshold)

	res, err := evaluate(t, "SUM(a)", ds, condition.Criteria{"b": "x"})
	require.NoError(t, err)
	assert.Equal(t, &Result{Value: 1, RowsProcessed: 1, TotalRows: 2}, res)
}

func priceDataset() *dataset.Dataset {
	schema := dataset.NewSchema(
		dataset.Field{Name: "Price", Kind: dataset.KindNumeric},
		dataset.Field{Name: "Qty", Kind: dataset.KindNumeric},
		dataset.Field{Name: "Name", Kind: dataset.KindCategorical},
	)
	return dataset.New(schema, []map[string]any{
		{"Price": 2, "Qty": 3, "Name": "a"},
		{"Price": 4, "Qty": nil, "Name": "b"},
		{"Price": 5, "Qty": 2, "Name": ""},
		{"Price": 6, "Qty": 0, "Name": "d"},
	})
}

func TestEvaluateAggregations(t *testing.T) {
	tests := []struct {
		src      string
		expected float64
	}{
		{"COUNT(Qty)", 3},
		{"COUNT(Name)", 3},
		{"SUM(Price)", 17},
		{"AVG(Price)", 4.25},
		{"MIN(Qty)", 0},
		{"MAX(Price)", 6},
		{"PERCENTAGE(Name)", 75},
		{"SUM(Price * Qty)", 16},
		{"COUNT(Price * Qty)", 3},
		{"SUM(Price / Qty)", 2.0/3 + 2.5},
		{"SUM(price) / COUNT(price) - 1", 3.25},
		{"100", 100},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res, err := evaluate(t, tt.src, priceDataset(), nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, res.Value, 1e-9)
			assert.Equal(t, 4, res.RowsProcessed)
		})
	}
}

func TestEvaluatePercentageUsesFullDataset(t *testing.T) {
	filter := condition.Criteria{"Price": map[string]any{"gte": 4}}

	res, err := evaluate(t, "PERCENTAGE(Name)", priceDataset(), filter)
	require.NoError(t, err)
	// two non-blank names among the three filtered rows, over all four rows
	assert.InDelta(t, 50.0, res.Value, 1e-9)
	assert.Equal(t, 3, res.RowsProcessed)
	assert.Equal(t, 4, res.TotalRows)
	assert.Less(t, res.RowsProcessed, res.TotalRows)

	res, err = evaluate(t, "COUNT(Name) / COUNT(Price) * 100", priceDataset(), filter)
	require.NoError(t, err)
	assert.InDelta(t, 200.0/3, res.Value, 1e-9)

	res, err = evaluate(t, "PERCENTAGE(Name)", priceDataset(), condition.Criteria{"Name": "zzz"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Value)
	assert.Equal(t, 0, res.RowsProcessed)
	assert.Equal(t, 4, res.TotalRows)
}

func TestEvaluateCountIgnoresKind(t *testing.T) {
	ds := dataset.FromRecords([]map[string]any{
		{"n": 1, "c": "x"},
		{"n": nil, "c": nil},
		{"n": 3, "c": "z"},
	}, dataset.DefaultNumericThreshold)
	for _, src := range []string{"COUNT(n)", "COUNT(c)"} {
		res, err := evaluate(t, src, ds, nil)
		require.NoError(t, err)
		assert.Equal(t, 2.0, res.Value)
	}
}

func TestEvaluateExactSum(t *testing.T) {
	ds := dataset.FromRecords([]map[string]any{{"v": 0.1}, {"v": 0.2}}, dataset.DefaultNumericThreshold)
	res, err := evaluate(t, "SUM(v)", ds, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.3, res.Value)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		filter condition.Criteria
		stage  Stage
		kind   ErrorKind
		reason string
		pos    int
	}{
		{"division by zero", "SUM(Price) / (SUM(Price) - SUM(Price))", nil, StageEvaluate, KindDivisionByZero, ReasonDivisionByZero, 11},
		{"empty average", "AVG(Price)", condition.Criteria{"Name": "none"}, StageEvaluate, KindEmptyAggregation, ReasonEmptyAggregation, 0},
		{"empty min", "1 + MIN(Qty)", condition.Criteria{"Name": "b"}, StageEvaluate, KindEmptyAggregation, ReasonEmptyAggregation, 4},
		{"unknown field", "SUM(Cost)", nil, StageResolve, KindUnknownField, "", 4},
		{"categorical sum", "SUM(Name)", nil, StageResolve, KindNotNumeric, ReasonNotNumeric, 4},
		{"unknown filter field", "SUM(Price)", condition.Criteria{"Region": "x"}, StageResolve, KindUnknownField, "", NoPosition},
		{"bad filter value", "SUM(Price)", condition.Criteria{"Qty": "many"}, StageResolve, KindInvalidFilter, "", NoPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluate(t, tt.src, priceDataset(), tt.filter)
			fe := evalError(t, err)
			assert.Equal(t, tt.stage, fe.Stage)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.Equal(t, tt.pos, fe.Position)
		})
	}
}

func TestEvaluateSumOfEmptyIsZero(t *testing.T) {
	res, err := evaluate(t, "SUM(Price) + COUNT(Qty)", priceDataset(), condition.Criteria{"Name": "none"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Value)
	assert.Equal(t, 0, res.RowsProcessed)
	assert.Equal(t, 4, res.TotalRows)
}

func TestEvaluateNonFinite(t *testing.T) {
	ds := dataset.FromRecords([]map[string]any{{"v": 1e308}}, dataset.DefaultNumericThreshold)
	_, err := evaluate(t, "SUM(v) * SUM(v)", ds, nil)
	fe := evalError(t, err)
	assert.Equal(t, KindNonFinite, fe.Kind)
	assert.Equal(t, ReasonNonFinite, fe.Reason)
}

func TestEvaluateBudget(t *testing.T) {
	_, err := evaluate(t, "SUM(Price)", priceDataset(), nil, WithMaxRows(3))
	fe := evalError(t, err)
	assert.Equal(t, KindBudget, fe.Kind)
	assert.Equal(t, ReasonBudget, fe.Reason)

	_, err = evaluate(t, "SUM(Price)", priceDataset(), nil, WithMaxRows(4))
	assert.NoError(t, err)
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MustCompile("SUM(Price)").Evaluate(ctx, priceDataset(), nil, WithCheckInterval(1))
	fe := evalError(t, err)
	assert.Equal(t, KindCancelled, fe.Kind)
	assert.Equal(t, ReasonCancelled, fe.Reason)
}

func TestEvaluateDoesNotMutateDataset(t *testing.T) {
	ds := priceDataset()
	before := ds.Records()
	snapshot := make([]map[string]any, len(before))
	for i, r := range before {
		snapshot[i] = make(map[string]any, len(r))
		for k, v := range r {
			snapshot[i][k] = v
		}
	}
	_, err := evaluate(t, "SUM(Price * Qty) / COUNT(Name)", ds, condition.Criteria{"Price": map[string]any{"gt": 2}})
	require.NoError(t, err)
	assert.Equal(t, snapshot, ds.Records())
}
