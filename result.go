package indicators

import (
	"time"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/formula"
	"github.com/rulego/indicators/stats"
)

// ValidationResult is the outcome of Engine.Validate.
// Error carries the human-readable message and Details the positioned diagnostic.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Details *formula.Error `json:"details,omitempty"`
}

// PreviewResult is a single evaluation outcome. On success Status is "success"
// and the embedded Result is set; on failure Status is "error" and the error
// fields describe what went wrong.
type PreviewResult struct {
	Status string `json:"status"`
	*formula.Result
	Error    string         `json:"error,omitempty"`
	Stage    formula.Stage  `json:"stage,omitempty"`
	Position *int           `json:"position,omitempty"`
	Details  *formula.Error `json:"details,omitempty"`
}

// OK reports whether the evaluation succeeded.
func (r PreviewResult) OK() bool {
	return r.Status == statusSuccess
}

func successResult(res *formula.Result) PreviewResult {
	return PreviewResult{Status: statusSuccess, Result: res}
}

func errorResult(err error) PreviewResult {
	fe, ok := formula.AsError(err)
	if !ok {
		return PreviewResult{Status: statusError, Error: err.Error()}
	}
	r := PreviewResult{Status: statusError, Error: fe.Message, Stage: fe.Stage, Details: fe}
	if fe.Position >= 0 {
		pos := fe.Position
		r.Position = &pos
	}
	return r
}

// IndicatorSpec is one indicator to evaluate in a Compute batch.
type IndicatorSpec struct {
	ID      int64
	Name    string
	Formula string
	Filter  condition.Criteria
}

// IndicatorResult is the outcome for one indicator of a batch.
type IndicatorResult struct {
	IndicatorID   int64  `json:"indicator_id"`
	IndicatorName string `json:"indicator_name"`
	PreviewResult
}

// ComputeReport is the outcome of Engine.Compute.
type ComputeReport struct {
	RunID             string                         `json:"run_id"`
	ComputedAt        time.Time                      `json:"computed_at"`
	TotalRows         int                            `json:"total_rows"`
	Succeeded         int                            `json:"succeeded"`
	Failed            int                            `json:"failed"`
	Results           []IndicatorResult              `json:"results"`
	SummaryStatistics map[string]stats.ColumnSummary `json:"summary_statistics"`
}
