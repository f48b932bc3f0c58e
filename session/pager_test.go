package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowBounds(t *testing.T) {
	p := NewPager([]int{1, 2, 3, 4, 5}, 3)

	require.Equal(t, []int{1, 2, 3}, p.Window())
	require.True(t, p.HasNext())
	require.False(t, p.HasPrev())

	require.True(t, p.Next())
	require.Equal(t, []int{4, 5}, p.Window())
	require.False(t, p.HasNext())

	// a second advance is rejected and the page stays put
	require.False(t, p.Next())
	require.Equal(t, 2, p.Page())
	require.Equal(t, []int{4, 5}, p.Window())

	require.True(t, p.Prev())
	require.False(t, p.Prev())
	require.Equal(t, 1, p.Page())
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		n, size, pages int
	}{
		{0, 3, 1},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{6, 3, 2},
		{7, 3, 3},
	}
	for _, c := range cases {
		items := make([]int, c.n)
		require.Equal(t, c.pages, NewPager(items, c.size).PageCount(), "n=%d size=%d", c.n, c.size)
	}
}

func TestSelectWithinWindow(t *testing.T) {
	p := NewPager([]string{"a", "b", "c", "d"}, 3)

	v, ok := p.Select(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	_, ok = p.Select(4)
	require.False(t, ok)
	_, ok = p.Select(0)
	require.False(t, ok)

	p.Next()
	v, ok = p.Select(1)
	require.True(t, ok)
	require.Equal(t, "d", v)
	_, ok = p.Select(2)
	require.False(t, ok)
}

func TestSeekClamps(t *testing.T) {
	p := NewPager([]int{1, 2, 3, 4}, 3)
	p.Seek(9)
	require.Equal(t, 2, p.Page())
	p.Seek(0)
	require.Equal(t, 1, p.Page())

	empty := NewPager([]int{}, 3)
	empty.Seek(5)
	require.Equal(t, 1, empty.Page())
	require.True(t, empty.Empty())
	require.Nil(t, empty.Window())
}
