package dataset

import "github.com/rulego/indicators/utils/cast"

// DefaultNumericThreshold is the share of non-null values that must parse as
// numbers for a column to be numeric.
const DefaultNumericThreshold = 0.9

// InferKind classifies a column from its values.
// A column with no non-null values is categorical.
func InferKind(values []any, threshold float64) Kind {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultNumericThreshold
	}
	nonNull, numeric := 0, 0
	for _, v := range values {
		if IsNull(v) {
			continue
		}
		nonNull++
		if cast.IsNumber(v) {
			numeric++
		}
	}
	if nonNull == 0 {
		return KindCategorical
	}
	if float64(numeric)/float64(nonNull) >= threshold {
		return KindNumeric
	}
	return KindCategorical
}

// InferSchema builds a schema for columns by inspecting every record.
func InferSchema(columns []string, records []map[string]any, threshold float64) *Schema {
	fields := make([]Field, len(columns))
	values := make([]any, len(records))
	for i, col := range columns {
		for j, rec := range records {
			values[j] = rec[col]
		}
		fields[i] = Field{Name: col, Kind: InferKind(values, threshold)}
	}
	return NewSchema(fields...)
}
