package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relex/jsondom/internal/arena"
)

func TestAllocBumpsWithinBlock(t *testing.T) {
	t.Parallel()

	a := arena.New()
	first, err := a.Alloc(16, 8)
	require.NoError(t, err)
	second, err := a.Alloc(16, 8)
	require.NoError(t, err)

	assert.Len(t, first, 16)
	assert.Len(t, second, 16)
}

func TestAllocChainsNewBlockOnOversizeRequest(t *testing.T) {
	t.Parallel()

	a := arena.New()
	big, err := a.Alloc(arena.DefaultBlockSize+1, 8)
	require.NoError(t, err)
	assert.Len(t, big, arena.DefaultBlockSize+1)

	// A subsequent small allocation still succeeds; it fits in the alignment
	// slack left at the end of the oversize block.
	small, err := a.Alloc(4, 1)
	require.NoError(t, err)
	assert.Len(t, small, 4)
}

func TestCopyBytesRoundTrips(t *testing.T) {
	t.Parallel()

	a := arena.New()
	src := []byte("hello, arena")
	got, err := a.CopyBytes(src)
	require.NoError(t, err)
	assert.Equal(t, src, got)

	// Mutating the source must not affect the copy.
	src[0] = 'H'
	assert.NotEqual(t, src[0], got[0])
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	a := arena.New()
	_, err := a.Alloc(8, 8)
	require.NoError(t, err)

	a.Close()
	assert.True(t, a.Closed())
	a.Close() // must not panic

	_, err = a.Alloc(8, 8)
	assert.Error(t, err)
}

func TestGrowForAppendDoublesFromEight(t *testing.T) {
	t.Parallel()

	var s []int
	for i := 0; i < 20; i++ {
		grown, err := arena.GrowForAppend(s)
		require.NoError(t, err)
		s = append(grown[:len(s)], i)
	}
	assert.Len(t, s, 20)
	for i, v := range s {
		assert.Equal(t, i, v)
	}
}

func TestInsertShiftsTail(t *testing.T) {
	t.Parallel()

	s := []int{1, 2, 4, 5}
	s, err := arena.Insert(s, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s)
}

func TestRemoveAtShiftsTail(t *testing.T) {
	t.Parallel()

	s := []int{1, 2, 3, 4, 5}
	s = arena.RemoveAt(s, 2)
	assert.Equal(t, []int{1, 2, 4, 5}, s)
}
