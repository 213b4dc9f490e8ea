package jsondom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relex/jsondom"
)

func TestWriteCompactBasicShapes(t *testing.T) {
	t.Parallel()

	v, err := jsondom.Parse([]byte(`{"a":1,"b":[1,2,3]}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer v.Free()

	out, err := jsondom.WriteString(v, jsondom.DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1, "b": [1, 2, 3]}`, out)
}

func TestWriteEscapesControlAndQuote(t *testing.T) {
	t.Parallel()

	v := jsondom.NewString("a\"b\nc")
	defer v.Free()

	out, err := jsondom.WriteString(v, jsondom.DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\nc"`, out)
}

func TestWriteEscapeSolidusOption(t *testing.T) {
	t.Parallel()

	v := jsondom.NewString("a/b")
	defer v.Free()

	opt := jsondom.DefaultWriteOptions()
	opt.EscapeSolidus = true
	out, err := jsondom.WriteString(v, opt)
	require.NoError(t, err)
	assert.Equal(t, `"a\/b"`, out)
}

func TestWriteEscapeUnicodeDecodesByCodepoint(t *testing.T) {
	t.Parallel()

	v := jsondom.NewString("\U0001F600")
	defer v.Free()

	opt := jsondom.DefaultWriteOptions()
	opt.EscapeUnicode = true
	out, err := jsondom.WriteString(v, opt)
	require.NoError(t, err)
	assert.Equal(t, "\"\x5cud83d\x5cude00\"", out)
}

func TestWriteSortObjectKeys(t *testing.T) {
	t.Parallel()

	v, err := jsondom.Parse([]byte(`{"z":1,"a":2}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer v.Free()

	opt := jsondom.DefaultWriteOptions()
	opt.SortObjectKeys = true
	out, err := jsondom.WriteString(v, opt)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 2, "z": 1}`, out)
}

func TestWriteNonfiniteFailsWithoutOption(t *testing.T) {
	t.Parallel()

	v := jsondom.NewFloat64(1.0 / zero())
	defer v.Free()

	_, err := jsondom.WriteString(v, jsondom.DefaultWriteOptions())
	assert.ErrorIs(t, err, jsondom.ErrNonfinite)
}

func zero() float64 { return 0 }

func TestWritePreservesLexemeByDefault(t *testing.T) {
	t.Parallel()

	v, err := jsondom.Parse([]byte(`1.50000`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer v.Free()

	out, err := jsondom.WriteString(v, jsondom.DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, "1.50000", out)
}

func TestWriteCanonicalNumbersDropsLexeme(t *testing.T) {
	t.Parallel()

	v, err := jsondom.Parse([]byte(`1.50000`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer v.Free()

	opt := jsondom.DefaultWriteOptions()
	opt.CanonicalNumbers = true
	out, err := jsondom.WriteString(v, opt)
	require.NoError(t, err)
	assert.NotEqual(t, "1.50000", out)
}

func TestFixedSinkRecordsTruncation(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	sink := jsondom.NewFixedSink(buf)

	v := jsondom.NewString("hello world")
	defer v.Free()

	err := jsondom.Write(sink, v, jsondom.DefaultWriteOptions())
	require.NoError(t, err)
	assert.True(t, sink.Truncated)
	assert.Len(t, sink.Bytes(), 4)
}
