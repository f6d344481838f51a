package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRU[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a") // a 变为最近使用
	require.True(t, ok)
	c.Set("c", 3)

	_, ok = c.Get("b")
	require.False(t, ok, "least recently used entry is evicted")
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, c.Len())

	c.Set("a", 10)
	v, _ = c.Get("a")
	require.Equal(t, 10, v)
	require.Equal(t, 2, c.Len())
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](4, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	require.False(t, ok)
	require.Zero(t, c.Len())
}

func TestLRUMinimumCapacity(t *testing.T) {
	c := NewLRU[int](0, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	require.Equal(t, 1, c.Len())
}
