package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"(COUNT(Vaccinated) / COUNT(Total Population)) * 100", "((COUNT(Vaccinated) / COUNT(Total Population)) * 100)"},
		{"SUM(a) + SUM(b) * 2", "(SUM(a) + (SUM(b) * 2))"},
		{"SUM(a) - SUM(b) - 1", "((SUM(a) - SUM(b)) - 1)"},
		{"AVG(Price * Qty)", "AVG((Price * Qty))"},
		{"((SUM(a)))", "SUM(a)"},
		{"sum(a) / -2.50", "(SUM(a) / -2.5)"},
		{"100", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.String())
		})
	}
}

func TestParseTree(t *testing.T) {
	e, err := Compile("SUM(Price * Qty) / COUNT(Price)")
	require.NoError(t, err)
	root := e.Root()
	require.Equal(t, NodeBinary, root.Type)
	assert.Equal(t, "/", root.Op)
	assert.Equal(t, 17, root.Pos)

	sum := root.Left
	require.Equal(t, NodeAggregate, sum.Type)
	assert.Equal(t, "SUM", sum.Name)
	require.Len(t, sum.Args, 1)
	assert.Equal(t, NodeBinary, sum.Args[0].Type)

	assert.Equal(t, []string{"Price", "Qty"}, e.Fields())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    ErrorKind
		pos     int
		message string
	}{
		{"empty", "", KindEmptyFormula, 0, "empty"},
		{"blank", "   ", KindEmptyFormula, 0, "empty"},
		{"missing close paren", "SUM(a", KindUnbalancedParen, 3, "missing ')'"},
		{"missing close group", "SUM(a) * (2", KindUnbalancedParen, 9, "missing ')'"},
		{"stray close paren", "SUM(a))", KindUnbalancedParen, 6, "unmatched ')'"},
		{"no argument", "SUM()", KindArity, 0, "SUM"},
		{"two arguments", "COUNT(a, b)", KindArity, 0, "COUNT"},
		{"trailing operator", "SUM(a) +", KindMissingToken, 8, "end of formula"},
		{"leading operator", "+ SUM(a)", KindUnexpectedToken, 0, "operator '+'"},
		{"double operator", "SUM(a) * / 2", KindUnexpectedToken, 9, "operator '/'"},
		{"two operands", "SUM(a) SUM(b)", KindUnexpectedToken, 7, "unexpected"},
		{"unknown function", "MEDIAN(x)", KindUnknownFunction, 0, "unknown function MEDIAN"},
		{"space before paren", "SUM (x)", KindUnexpectedToken, 0, "immediately"},
		{"empty group", "()", KindUnexpectedToken, 1, "empty parentheses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			require.Error(t, err)
			fe, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, StageParse, fe.Stage)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.pos, fe.Position)
			assert.Contains(t, fe.Message, tt.message)
		})
	}
}

func TestParseEndOfInputUsesLastToken(t *testing.T) {
	tokens, err := Tokenize("SUM(a) *   ")
	require.NoError(t, err)
	_, err = Parse(tokens)
	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 8, fe.Position)
}

func TestParseIsDeterministic(t *testing.T) {
	src := "(COUNT(Vaccinated) / COUNT(Total Population)) * 100"
	a := MustCompile(src)
	b := MustCompile(src)
	assert.Equal(t, a.Root(), b.Root())
}
