package jsondom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relex/jsondom"
)

func TestEqualBasicScalars(t *testing.T) {
	t.Parallel()

	a := jsondom.NewInt64(7)
	b := jsondom.NewInt64(7)
	defer a.Free()
	defer b.Free()
	assert.True(t, jsondom.Equal(a, b))

	c := jsondom.NewInt64(8)
	defer c.Free()
	assert.False(t, jsondom.Equal(a, c))
}

func TestEqualNumbersCompareAcrossRepresentations(t *testing.T) {
	t.Parallel()

	// A parsed integer carries i64, u64 and double views; a double-only value
	// shares just the double view with it, so they compare through that one.
	intOnly, err := jsondom.Parse([]byte("5"), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer intOnly.Free()

	floatSide := jsondom.NewFloat64(5.0)
	defer floatSide.Free()

	assert.True(t, jsondom.Equal(intOnly, floatSide))
}

func TestEqualObjectsIgnoreKeyOrder(t *testing.T) {
	t.Parallel()

	a, err := jsondom.Parse([]byte(`{"a":1,"b":2}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer a.Free()

	b, err := jsondom.Parse([]byte(`{"b":2,"a":1}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer b.Free()

	assert.True(t, jsondom.Equal(a, b))
}

func TestEqualCollectedDuplicateKeyDiffersFromSingleKey(t *testing.T) {
	t.Parallel()

	opt := jsondom.DefaultParseOptions()
	opt.DupKeys = jsondom.DupKeyCollect

	a, err := jsondom.Parse([]byte(`{"a":1,"a":1}`), opt)
	require.NoError(t, err)
	defer a.Free()

	b, err := jsondom.Parse([]byte(`{"a":1}`), opt)
	require.NoError(t, err)
	defer b.Free()

	assert.False(t, jsondom.Equal(a, b))
}

func TestEqualArraysAreOrderSensitive(t *testing.T) {
	t.Parallel()

	a, err := jsondom.Parse([]byte(`[1,2,3]`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer a.Free()

	b, err := jsondom.Parse([]byte(`[3,2,1]`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer b.Free()

	assert.False(t, jsondom.Equal(a, b))
}

func TestCloneProducesDeepEqualIndependentTree(t *testing.T) {
	t.Parallel()

	original, err := jsondom.Parse([]byte(`{"nested":[1,2,{"k":"v"}]}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer original.Free()

	clone := jsondom.Clone(original)
	defer clone.Free()

	assert.True(t, jsondom.Equal(original, clone))

	// Mutating the clone must not affect the original.
	_, err = clone.Put("nested", jsondom.NewNull())
	require.NoError(t, err)
	assert.False(t, jsondom.Equal(original, clone))
}
