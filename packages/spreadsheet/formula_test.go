package spreadsheet

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFormula(text string) bool {
	_, err := NewFormula(text)
	return err == nil
}

func TestFormulaValidSyntax(t *testing.T) {
	validFormulas := []string{
		"1",
		"x",
		"1+2",
		"(1)",
		"((x))",
		"a1 * (b2 - 3) / _c",
		"2.5e3 - .5",
		"(1+2)*(3+4)",
		"x1+y2*(z3/4)-5",
		"5.",
	}

	for _, formula := range validFormulas {
		t.Run(formula, func(t *testing.T) {
			if !parseFormula(formula) {
				t.Errorf("Failed to parse valid formula: %s", formula)
			}
		})
	}
}

func TestFormulaInvalidSyntax(t *testing.T) {
	invalidFormulas := []string{
		"",
		"   ",
		"+1",
		"-1",
		")",
		"*x",
		"1+",
		"(",
		"(1+2",
		"1+2)",
		"())",
		"()",
		"1 2",
		"x y",
		"1 (2)",
		"(1)(2)",
		"1 + * 2",
		"(+1)",
		"1 $ 2",
		")1+2(",
		"(1+2))+(3",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			_, err := NewFormula(formula)
			if err == nil {
				t.Errorf("Expected formula to fail but it succeeded: %s", formula)
				return
			}
			assert.ErrorIs(t, err, ErrFormulaFormat)
		})
	}
}

func TestFormulaNormalizerAndValidator(t *testing.T) {
	t.Run("normalizer is applied", func(t *testing.T) {
		f, err := NewFormulaWithContext("x + y*z", &FormulaContext{Normalize: UpperNormalizer})
		require.NoError(t, err)
		assert.Equal(t, "X+Y*Z", f.String())
		assert.Equal(t, []string{"X", "Y", "Z"}, f.Variables())
	})

	t.Run("validator sees normalized names", func(t *testing.T) {
		var seen []string
		_, err := NewFormulaWithContext("a1+b1", &FormulaContext{
			Normalize: UpperNormalizer,
			Validate: func(name string) bool {
				seen = append(seen, name)
				return true
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "B1"}, seen)
	})

	t.Run("rejected variable reports normalized name", func(t *testing.T) {
		_, err := NewFormulaWithContext("x+abc", &FormulaContext{
			Normalize: UpperNormalizer,
			Validate:  func(name string) bool { return len(name) == 1 },
		})
		var formatErr *FormulaFormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "ABC", formatErr.Token)
		assert.Contains(t, formatErr.Error(), "ABC")
	})

	t.Run("normalizer producing an illegal variable", func(t *testing.T) {
		_, err := NewFormulaWithContext("x", &FormulaContext{
			Normalize: func(string) string { return "1x" },
		})
		assert.ErrorIs(t, err, ErrFormulaFormat)
	})
}

func TestFormulaVariables(t *testing.T) {
	f, err := NewFormula("b + a * b - (c / a)")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"b", "a", "c"}, f.Variables()); diff != "" {
		t.Errorf("Variables() mismatch (-want +got):\n%s", diff)
	}

	f, err = NewFormula("1 + 2")
	require.NoError(t, err)
	assert.Empty(t, f.Variables())
}

func TestFormulaString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2", "1+2"},
		{" x *  ( y-2.50 ) ", "x*(y-2.50)"},
		{"1e3/q", "1e3/q"},
	}
	for _, tt := range tests {
		f, err := NewFormula(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.String())
	}
}

func TestFormulaRoundTrip(t *testing.T) {
	inputs := []string{"1+2", "x * (y - 3.0)", "a/b/c", "((2e2))", "_a + B_9"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			f, err := NewFormulaWithContext(input, &FormulaContext{Normalize: LowerNormalizer})
			require.NoError(t, err)
			again, err := NewFormulaWithContext(f.String(), &FormulaContext{Normalize: LowerNormalizer})
			require.NoError(t, err)
			assert.True(t, f.Equals(again))
			assert.Equal(t, f.Hash(), again.Hash())
		})
	}
}

func TestFormulaEquality(t *testing.T) {
	equal := [][2]string{
		{"2.0", "2.00"},
		{"x1+y2", "x1 + y2"},
		{"1e2", "100"},
		{"(a)", " ( a ) "},
	}
	for _, pair := range equal {
		a, err := NewFormula(pair[0])
		require.NoError(t, err)
		b, err := NewFormula(pair[1])
		require.NoError(t, err)
		assert.True(t, a.Equals(b), "%q == %q", pair[0], pair[1])
		assert.Equal(t, a.Hash(), b.Hash())
		assert.Equal(t, a.Key(), b.Key())
	}

	notEqual := [][2]string{
		{"x+y", "y+x"},
		{"x1", "X1"},
		{"2", "2.0001"},
		{"(a)", "a"},
	}
	for _, pair := range notEqual {
		a, err := NewFormula(pair[0])
		require.NoError(t, err)
		b, err := NewFormula(pair[1])
		require.NoError(t, err)
		assert.False(t, a.Equals(b), "%q != %q", pair[0], pair[1])
	}

	t.Run("equal under normalization", func(t *testing.T) {
		ctx := &FormulaContext{Normalize: UpperNormalizer}
		a, err := NewFormulaWithContext("x1+y2", ctx)
		require.NoError(t, err)
		b, err := NewFormula("X1+Y2")
		require.NoError(t, err)
		assert.True(t, a.Equals(b))
	})

	t.Run("nil formulas", func(t *testing.T) {
		a, err := NewFormula("1")
		require.NoError(t, err)
		var none *Formula
		assert.False(t, a.Equals(none))
		assert.True(t, none.Equals(nil))
	})
}

func TestFormulaKeyAsMapKey(t *testing.T) {
	seen := make(map[FormulaKey]int)
	for _, text := range []string{"2.0 + x", "2+x", "2.00+ x", "x+2"} {
		f, err := NewFormula(text)
		require.NoError(t, err)
		seen[f.Key()]++
	}
	assert.Len(t, seen, 2)
}

func TestFormulaTokensAreCopied(t *testing.T) {
	f, err := NewFormula("a+b")
	require.NoError(t, err)
	tokens := f.Tokens()
	tokens[0].Value = "zzz"
	assert.Equal(t, "a+b", f.String())
}

func TestFormulaDeepNesting(t *testing.T) {
	depth := 5000
	text := strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth)
	f, err := NewFormula(text)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.Evaluate(nil))
}
