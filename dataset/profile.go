package dataset

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/rulego/indicators/utils/cast"
)

const (
	sampleSize     = 5
	topValuesLimit = 10
)

// FieldProfile is the descriptive summary shown in the field browser.
type FieldProfile struct {
	Name         string         `json:"name"`
	Type         Kind           `json:"type"`
	NullCount    int            `json:"null_count"`
	NonNullCount int            `json:"non_null_count"`
	SampleValues []any          `json:"sample_values"`
	Min          *float64       `json:"min,omitempty"`
	Max          *float64       `json:"max,omitempty"`
	Mean         *float64       `json:"mean,omitempty"`
	Median       *float64       `json:"median,omitempty"`
	UniqueCount  *int           `json:"unique_count,omitempty"`
	ValueCounts  map[string]int `json:"value_counts,omitempty"`
}

// Profile describes every field of the dataset.
func Profile(d *Dataset) []FieldProfile {
	fields := d.Schema().Fields()
	out := make([]FieldProfile, len(fields))
	for i, f := range fields {
		out[i] = profileField(d, f)
	}
	return out
}

func profileField(d *Dataset, f Field) FieldProfile {
	p := FieldProfile{Name: f.Name, Type: f.Kind, SampleValues: []any{}}
	counts := make(map[string]int)
	var numbers []float64
	for _, r := range d.Rows() {
		v := r[f.Name]
		if IsNull(v) {
			p.NullCount++
			continue
		}
		p.NonNullCount++
		if len(p.SampleValues) < sampleSize {
			p.SampleValues = append(p.SampleValues, v)
		}
		if n, ok := v.(float64); ok {
			numbers = append(numbers, n)
		}
		counts[cast.ToString(v)]++
	}

	if f.IsNumeric() {
		if len(numbers) > 0 {
			p.Min = describe(stats.Min, numbers)
			p.Max = describe(stats.Max, numbers)
			p.Mean = describe(stats.Mean, numbers)
			p.Median = describe(stats.Median, numbers)
		}
		return p
	}

	unique := len(counts)
	p.UniqueCount = &unique
	p.ValueCounts = topValues(counts, topValuesLimit)
	return p
}

func describe(fn func(stats.Float64Data) (float64, error), data []float64) *float64 {
	v, err := fn(data)
	if err != nil {
		return nil
	}
	return &v
}

// topValues keeps the limit most frequent values, ties broken by value.
func topValues(counts map[string]int, limit int) map[string]int {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k] = counts[k]
	}
	return out
}
