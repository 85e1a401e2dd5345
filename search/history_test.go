package search

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_Ring(t *testing.T) {
	h := NewHistory(3)
	assert.Equal(t, 3, h.Capacity())
	assert.Empty(t, h.Queries())

	h.Push("a")
	h.Push("b")
	assert.Equal(t, []string{"a", "b"}, h.Queries())

	h.Push("c")
	h.Push("d")
	h.Push("e")
	assert.Equal(t, []string{"c", "d", "e"}, h.Queries())
	assert.Equal(t, 3, h.Len())
}

func TestHistory_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(0).Capacity())
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(-4).Capacity())
}

func TestHistory_KeepsDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("budget")
	h.Push("budget")
	assert.Equal(t, []string{"budget", "budget"}, h.Queries())
}

func TestHistory_ConcurrentPush(t *testing.T) {
	h := NewHistory(10)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Push(fmt.Sprintf("query %d", i))
			_ = h.Queries()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, h.Len())
}
