package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue(3)

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))
	assert.ErrorIs(t, q.Enqueue(4), ErrQueueFull)
	assert.Equal(t, 3, q.Size())

	assert.Equal(t, 1, q.Dequeue())
	assert.Equal(t, []interface{}{2, 3}, q.ReadAllMessages())
	assert.Equal(t, 0, q.Size())
	assert.Nil(t, q.ReadAllMessages())

	require.NoError(t, q.Enqueue("a"))
	q.ClearQueue()
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueueDefaultSize(t *testing.T) {
	q := NewInMemoryQueue(0)
	for i := 0; i < QueueBufferSize; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.ErrorIs(t, q.Enqueue(-1), ErrQueueFull)
}

func TestInMemoryQueueConcurrent(t *testing.T) {
	q := NewInMemoryQueue(100)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(t, q.Enqueue(i*25+j))
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		seen[q.Dequeue().(int)] = true
	}
	assert.Len(t, seen, 100)
}
