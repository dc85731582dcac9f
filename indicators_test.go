package indicators

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
	"github.com/rulego/indicators/formula"
)

func surveyDataset() *dataset.Dataset {
	return dataset.FromRecords([]map[string]any{
		{"Amount": 10, "District": "North", "Vaccinated": "yes"},
		{"Amount": 20, "District": "North", "Vaccinated": nil},
		{"Amount": 30, "District": "East", "Vaccinated": "yes"},
		{"Amount": 40, "District": "East", "Vaccinated": "no"},
	}, dataset.DefaultNumericThreshold)
}

func newTestEngine(opts ...Option) *Engine {
	return New(append([]Option{WithDiscardLog()}, opts...)...)
}

func TestValidate(t *testing.T) {
	engine := newTestEngine()
	schema := surveyDataset().Schema()

	res := engine.Validate("SUM(amount) / COUNT(District)", schema)
	assert.True(t, res.Valid)
	assert.Equal(t, "Formula is valid: references 2 of 3 survey fields", res.Message)
	assert.Empty(t, res.Error)
	assert.Nil(t, res.Details)

	res = engine.Validate("SUM(amount) / SUM(Amount )", schema)
	assert.Equal(t, "Formula is valid: references 1 of 3 survey fields", res.Message)

	res = engine.Validate("SUM(Anything)", nil)
	assert.True(t, res.Valid)
	assert.Equal(t, "Formula is valid", res.Message)

	res = engine.Validate("SUM(District)", schema)
	assert.False(t, res.Valid)
	require.NotNil(t, res.Details)
	assert.Equal(t, formula.StageResolve, res.Details.Stage)
	assert.Equal(t, formula.ReasonNotNumeric, res.Details.Reason)
	assert.Equal(t, res.Details.Message, res.Error)

	res = engine.Validate("SUM(Amount", schema)
	assert.False(t, res.Valid)
	assert.Equal(t, formula.StageParse, res.Details.Stage)
	assert.Equal(t, 3, res.Details.Position)
	assert.Equal(t, "missing ')' to close '('", res.Error)
}

func TestPreview(t *testing.T) {
	engine := newTestEngine()
	ds := surveyDataset()

	res := engine.Preview(context.Background(), "SUM(Amount)", ds, condition.Criteria{"District": "North"})
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, 30.0, res.Value)
	assert.Equal(t, 2, res.RowsProcessed)
	assert.Equal(t, 4, res.TotalRows)

	res = engine.Preview(context.Background(), "PERCENTAGE(Vaccinated)", ds, nil)
	require.True(t, res.OK())
	assert.Equal(t, 75.0, res.Value)
}

func TestPreviewErrorsAreData(t *testing.T) {
	engine := newTestEngine()
	ds := surveyDataset()

	res := engine.Preview(context.Background(), "SUM(Amount) / (COUNT(Amount) - 4)", ds, nil)
	assert.Equal(t, "error", res.Status)
	assert.Nil(t, res.Result)
	assert.Equal(t, formula.StageEvaluate, res.Stage)
	assert.Equal(t, "division by zero", res.Error)
	require.NotNil(t, res.Position)
	assert.Equal(t, 12, *res.Position)

	res = engine.Preview(context.Background(), "AVG(Amount)", ds, condition.Criteria{"Cost": 1})
	assert.Equal(t, formula.StageResolve, res.Stage)
	assert.Nil(t, res.Position)
	assert.Contains(t, res.Error, "Cost")
}

func TestPreviewJSON(t *testing.T) {
	engine := newTestEngine()
	ds := surveyDataset()

	ok, err := json.Marshal(engine.Preview(context.Background(), "COUNT(Amount)", ds, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","value":4,"rows_processed":4,"total_rows":4}`, string(ok))

	bad, err := json.Marshal(engine.Preview(context.Background(), "COUNT(", ds, nil))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bad, &decoded))
	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, "Parse", decoded["stage"])
	assert.NotContains(t, decoded, "value")
}

func TestPreviewBudget(t *testing.T) {
	engine := newTestEngine(WithMaxRows(2))
	res := engine.Preview(context.Background(), "COUNT(Amount)", surveyDataset(), nil)
	assert.False(t, res.OK())
	assert.Equal(t, formula.ReasonBudget, res.Details.Reason)
}

func TestPreviewCancelled(t *testing.T) {
	engine := newTestEngine(WithTimeout(time.Minute))
	assert.Equal(t, time.Minute, engine.timeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := engine.Preview(ctx, "COUNT(Amount)", surveyDataset(), nil)
	assert.False(t, res.OK())
	assert.Equal(t, formula.ReasonCancelled, res.Details.Reason)
}

func TestCompute(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := newTestEngine(WithRegisterer(reg), WithConcurrency(2))
	ds := surveyDataset()

	specs := []IndicatorSpec{
		{ID: 1, Name: "total", Formula: "SUM(Amount)"},
		{ID: 2, Name: "broken", Formula: "SUM(District)"},
		{ID: 3, Name: "north", Formula: "COUNT(Amount)", Filter: condition.Criteria{"District": "North"}},
		{ID: 4, Name: "empty", Formula: "AVG(Amount)", Filter: condition.Criteria{"District": "South"}},
	}
	report := engine.Compute(context.Background(), ds, specs)

	_, err := uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Results, 4)

	assert.Equal(t, int64(1), report.Results[0].IndicatorID)
	assert.Equal(t, 100.0, report.Results[0].Value)
	assert.Equal(t, "error", report.Results[1].Status)
	assert.Equal(t, formula.StageResolve, report.Results[1].Stage)
	assert.Equal(t, 2.0, report.Results[2].Value)
	assert.Equal(t, 2, report.Results[2].RowsProcessed)
	assert.Equal(t, formula.ReasonEmptyAggregation, report.Results[3].Details.Reason)

	require.Contains(t, report.SummaryStatistics, "Amount")
	assert.Equal(t, 4, report.SummaryStatistics["Amount"].Count)
	assert.Equal(t, 25.0, *report.SummaryStatistics["Amount"].Mean)

	assert.Equal(t, 2.0, testutil.ToFloat64(engine.metrics.evaluations.WithLabelValues(operationCompute, statusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(engine.metrics.evaluations.WithLabelValues(operationCompute, statusError)))
	count, err := testutil.GatherAndCount(reg, "indicators_evaluations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestComputeEmptyBatch(t *testing.T) {
	report := newTestEngine().Compute(context.Background(), surveyDataset(), nil)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)
}

func TestFormulaCache(t *testing.T) {
	engine := newTestEngine(WithCacheSize(2))

	a, err := engine.Compile("SUM(a)")
	require.NoError(t, err)
	b, err := engine.Compile("SUM(a)")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = engine.Compile("SUM(")
	assert.Error(t, err)
	_, _ = engine.Compile("SUM(b)")
	_, _ = engine.Compile("SUM(c)")
	assert.Equal(t, 2, engine.cache.len())

	assert.Equal(t, 1.0, testutil.ToFloat64(engine.metrics.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(engine.metrics.cacheRequests.WithLabelValues("miss")))

	engine.PurgeCache()
	assert.Equal(t, 0, engine.cache.len())
}

func TestCacheDisabled(t *testing.T) {
	engine := newTestEngine(WithCacheSize(0))
	a, _ := engine.Compile("SUM(a)")
	b, _ := engine.Compile("SUM(a)")
	assert.NotSame(t, a, b)
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, 0.0, testutil.ToFloat64(engine.metrics.cacheRequests.WithLabelValues("miss")))
}
