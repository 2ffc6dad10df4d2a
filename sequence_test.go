package rcon

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/rcon/protocol"
)

func TestSequenceStartsAtOne(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int32(1), seq.Next())
	assert.Equal(t, int32(2), seq.Next())
	assert.Equal(t, int32(3), seq.Next())
}

func TestSequenceSkipsSentinel(t *testing.T) {
	seq := NewSequence()
	seq.n.Store(protocol.SentinelID - 2)

	assert.Equal(t, protocol.SentinelID-1, seq.Next())
	assert.Equal(t, protocol.SentinelID+1, seq.Next(), "sentinel id must never be allocated")
}

func TestSequenceConcurrentUniqueness(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 1000

	seq := NewSequence()
	results := make([][]int32, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]int32, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, seq.Next())
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	seen := make(map[int32]bool, goroutines*perGoroutine)
	for _, ids := range results {
		for _, id := range ids {
			require.False(t, seen[id], "duplicate request id %d", id)
			require.NotEqual(t, protocol.SentinelID, id)
			seen[id] = true
		}
	}
}
