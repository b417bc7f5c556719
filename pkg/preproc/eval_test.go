package preproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	symbols := NewSymbols("DEBUG", "NET8")
	var testCases = []struct {
		description string
		expr        string
		expect      bool
	}{
		{description: "defined symbol", expr: "DEBUG", expect: true},
		{description: "undefined symbol", expr: "TRACE", expect: false},
		{description: "negation", expr: "!TRACE", expect: true},
		{description: "and", expr: "DEBUG && NET8", expect: true},
		{description: "or with undefined", expr: "TRACE || NET8", expect: true},
		{description: "precedence", expr: "TRACE || DEBUG && !NET8", expect: false},
		{description: "parentheses", expr: "(TRACE || DEBUG) && NET8", expect: true},
		{description: "equality", expr: "DEBUG == true", expect: true},
		{description: "inequality", expr: "TRACE != false", expect: false},
		{description: "literals", expr: " true && !false ", expect: true},
	}
	for _, testCase := range testCases {
		actual, err := Evaluate(testCase.expr, symbols)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	for _, expr := range []string{"", "(DEBUG", "DEBUG &&", "DEBUG )", "&& DEBUG"} {
		_, err := Evaluate(expr, NewSymbols("DEBUG"))
		assert.Error(t, err, expr)
	}
}

func TestSymbols_Clone(t *testing.T) {
	original := NewSymbols("A")
	clone := original.Clone()
	clone["B"] = true
	assert.False(t, original["B"])
	assert.True(t, clone["A"])
}
