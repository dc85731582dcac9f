package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/indicators/dataset"
)

func testSchema() *dataset.Schema {
	return dataset.NewSchema(
		dataset.Field{Name: "Amount", Kind: dataset.KindNumeric},
		dataset.Field{Name: "Name", Kind: dataset.KindCategorical},
		dataset.Field{Name: "Price", Kind: dataset.KindNumeric},
		dataset.Field{Name: "Qty", Kind: dataset.KindNumeric},
		dataset.Field{Name: "Course Name", Kind: dataset.KindCategorical},
	)
}

func TestCheckValid(t *testing.T) {
	for _, src := range []string{
		"SUM(amount)",
		"SUM(Amount) / COUNT(Name)",
		"COUNT(Name)",
		"PERCENTAGE(course name)",
		"AVG(Price * Qty) + MIN(Price) - MAX(Qty)",
		"SUM(Price * (Qty + 1))",
		"100",
	} {
		t.Run(src, func(t *testing.T) {
			assert.NoError(t, MustCompile(src).Check(testSchema()))
		})
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  ErrorKind
		pos   int
		field string
	}{
		{"bare field", "Amount + 1", KindStructure, 0, "Amount"},
		{"bare field on right", "SUM(Amount) / Qty", KindStructure, 14, "Qty"},
		{"nested aggregation", "SUM(COUNT(Amount))", KindStructure, 4, ""},
		{"literal argument", "SUM(1)", KindStructure, 0, ""},
		{"categorical sum", "SUM(Name)", KindNotNumeric, 4, "Name"},
		{"categorical in row expression", "COUNT(Name * 2)", KindNotNumeric, 6, "Name"},
		{"unknown field", "SUM(amnt)", KindUnknownField, 4, "amnt"},
		{"unknown field with spaces", "COUNT(Course  Name)", KindUnknownField, 6, "Course  Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MustCompile(tt.src).Check(testSchema())
			require.Error(t, err)
			fe, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, StageResolve, fe.Stage)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.pos, fe.Position)
			assert.Equal(t, tt.field, fe.Field)
			if tt.field != "" {
				assert.Contains(t, fe.Error(), tt.field)
			}
		})
	}
}

func TestCheckNotNumericReason(t *testing.T) {
	err := MustCompile("AVG(Name)").Check(testSchema())
	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotNumeric, fe.Reason)
}

func TestCheckSuggestions(t *testing.T) {
	err := MustCompile("SUM(amnt)").Check(testSchema())
	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, fe.Suggestions, "Amount")
}

func TestCheckAmbiguous(t *testing.T) {
	schema := dataset.NewSchema(
		dataset.Field{Name: "Age", Kind: dataset.KindNumeric},
		dataset.Field{Name: "AGE", Kind: dataset.KindNumeric},
	)
	err := MustCompile("SUM(age)").Check(schema)
	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindAmbiguousField, fe.Kind)
}

func TestCheckWithoutSchema(t *testing.T) {
	assert.NoError(t, MustCompile("SUM(Anything At All)").Check(nil))
	assert.Error(t, MustCompile("Anything").Check(nil))
	assert.Error(t, MustCompile("COUNT(SUM(a))").Check(nil))
}
