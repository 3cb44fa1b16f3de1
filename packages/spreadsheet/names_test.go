package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "AB_1", UpperNormalizer("ab_1"))
	assert.Equal(t, "ab_1", LowerNormalizer("AB_1"))
	assert.Equal(t, "aB1", IdentityNormalizer("aB1"))
}

func TestNormalizerByName(t *testing.T) {
	for name, input := range map[string]string{"": "aB", "none": "aB", "upper": "AB", "lower": "ab"} {
		normalize, err := NormalizerByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, input, normalize("aB"), name)
	}

	_, err := NormalizerByName("title")
	assert.Error(t, err)
}

func TestPatternValidator(t *testing.T) {
	validate, err := PatternValidator(`[a-zA-Z][0-9]{1,2}`)
	require.NoError(t, err)
	assert.True(t, validate("A1"))
	assert.True(t, validate("z99"))
	assert.False(t, validate("A100"))
	assert.False(t, validate("AA1"))
	assert.False(t, validate("xA1"))

	_, err = PatternValidator(`[`)
	assert.Error(t, err)
}

func TestChainValidators(t *testing.T) {
	short := func(name string) bool { return len(name) <= 2 }
	upper := func(name string) bool { return name == UpperNormalizer(name) }
	validate := ChainValidators(short, nil, upper)

	assert.True(t, validate("A1"))
	assert.False(t, validate("a1"))
	assert.False(t, validate("A12"))
	assert.True(t, ChainValidators()("anything"))
}
