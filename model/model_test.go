package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
)

func TestIndicatorValidate(t *testing.T) {
	valid := Indicator{Name: "Coverage", Formula: "COUNT(a)", Unit: "%", Type: TypeOutcome}
	assert.NoError(t, valid.Validate())

	empty := Indicator{}
	err := empty.Validate()
	assert.EqualError(t, err, "missing required fields: name, formula, unit, indicator_type")

	badType := valid
	badType.Type = "goal"
	assert.ErrorContains(t, badType.Validate(), "invalid indicator_type")
}

func TestIndicatorPatchApply(t *testing.T) {
	ind := Indicator{Name: "Old", Formula: "SUM(a)", Unit: "n", Type: TypeInput, IsActive: true}
	name := "New"
	active := false
	target := 90.0
	criteria := condition.Criteria{"b": "x"}
	IndicatorPatch{Name: &name, IsActive: &active, Target: &target, FilterCriteria: &criteria}.Apply(&ind)

	assert.Equal(t, "New", ind.Name)
	assert.False(t, ind.IsActive)
	assert.Equal(t, 90.0, *ind.Target)
	assert.Equal(t, criteria, ind.FilterCriteria)
	assert.Equal(t, "SUM(a)", ind.Formula)
	assert.Nil(t, ind.Baseline)
}

func TestSurveyDataset(t *testing.T) {
	s := Survey{
		Fields: []dataset.Field{{Name: "Age", Kind: dataset.KindNumeric}},
		Rows:   []map[string]any{{"age": "4"}, {"Age": 5}},
	}
	ds := s.Dataset()
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{4, 5}, ds.Numbers("Age"))
	assert.Equal(t, 1, s.Schema().Len())
}
