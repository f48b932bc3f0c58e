package refbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "refs"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

func TestLastOnEmptyBook(t *testing.T) {
	b := openTestBook(t)
	_, ok, err := b.Last()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetLastRecordsAndMarks(t *testing.T) {
	b := openTestBook(t)
	require.NoError(t, b.SetLast(`{"index":1}`))
	require.NoError(t, b.SetLast(`{"index":2}`))

	last, ok, err := b.Last()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"index":2}`, last)

	refs, err := b.List()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Contains(t, refs, `{"index":1}`)
	require.Contains(t, refs, `{"index":2}`)
}

func TestPutIsIdempotent(t *testing.T) {
	b := openTestBook(t)
	require.NoError(t, b.Put("abc"))
	require.NoError(t, b.Put("abc"))

	refs, err := b.List()
	require.NoError(t, err)
	require.Equal(t, []string{"abc"}, refs)
}
