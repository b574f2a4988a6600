package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_InsertAndRetrieve(t *testing.T) {
	c := New(10)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 2, 2))
	assert.Equal(t, 3, c.Weight())

	value, ok := c.Retrieve("a")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	_, ok = c.Retrieve("missing")
	assert.False(t, ok)

	assert.Equal(t, ErrKeyExists, c.Insert("a", 3, 1))
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3)

	require.NoError(t, c.Insert("a", "a", 1))
	require.NoError(t, c.Insert("b", "b", 1))
	require.NoError(t, c.Insert("c", "c", 1))

	// Touch a, making b the least recently used
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("d", "d", 1))
	assert.Equal(t, 3, c.Weight())

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.True(t, ok, key)
	}
}

func TestCache_EvictsUntilWithinBudget(t *testing.T) {
	c := New(4)

	require.NoError(t, c.Insert("a", "a", 1))
	require.NoError(t, c.Insert("b", "b", 1))
	require.NoError(t, c.Insert("c", "c", 3))
	assert.Equal(t, 3, c.Weight())

	_, ok := c.Retrieve("a")
	assert.False(t, ok)
	_, ok = c.Retrieve("b")
	assert.False(t, ok)

	// An item heavier than the budget evicts everything, itself included
	require.NoError(t, c.Insert("huge", "huge", 5))
	assert.Equal(t, 0, c.Weight())
	_, ok = c.Retrieve("huge")
	assert.False(t, ok)

	require.NoError(t, c.Insert("e", "e", 1))
	_, ok = c.Retrieve("e")
	assert.True(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := New(10)

	require.NoError(t, c.Insert("a", "a", 5))
	c.Clear()

	assert.Equal(t, 0, c.Weight())
	_, ok := c.Retrieve("a")
	assert.False(t, ok)
	assert.NoError(t, c.Insert("a", "a", 5))
}

func TestCache_Concurrent(t *testing.T) {
	c := New(50)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			key := fmt.Sprintf("key%d", i)
			_ = c.Insert(key, i, 1)
			c.Retrieve(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Weight())
}
