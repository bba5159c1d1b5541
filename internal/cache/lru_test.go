package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_SetAndGet(t *testing.T) {
	c := NewLRU(8, time.Minute)
	ctx := context.Background()

	expected := testStruct{Name: "Bob", Age: 41}
	require.NoError(t, c.Set(ctx, "user:2", expected, 0))

	var actual testStruct
	found, err := c.Get(ctx, "user:2", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU(2, time.Minute)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), i, 0))
	}

	var out int
	found, err := c.Get(ctx, "k0", &out)
	require.NoError(t, err)
	assert.False(t, found, "oldest key should be evicted")

	found, err = c.Get(ctx, "k2", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, out)
}

func TestLRU_TTL(t *testing.T) {
	c := NewLRU(4, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	time.Sleep(60 * time.Millisecond)

	var out string
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRU_SetUnmarshalable(t *testing.T) {
	c := NewLRU(4, time.Minute)

	err := c.Set(context.Background(), "ch", make(chan int), 0)
	require.Error(t, err)
}
