package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	assert.Equal(t, int64(100), c.MemoryLimit())

	require.True(t, c.TryAcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.True(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Would exceed the limit.
	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	assert.True(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	assert.True(t, c.TryAcquireMemory(1<<40))
	assert.Equal(t, int64(1<<40), c.MemoryUsage())

	c.ReleaseMemory(1 << 39)
	assert.Equal(t, int64(1<<39), c.MemoryUsage())
}

func TestController_NonPositiveAmounts(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10})

	assert.True(t, c.TryAcquireMemory(0))
	assert.True(t, c.TryAcquireMemory(-5))
	c.ReleaseMemory(-5)
	assert.Zero(t, c.MemoryUsage())
}

func TestController_NilIsUnlimited(t *testing.T) {
	var c *Controller

	assert.True(t, c.TryAcquireMemory(1000))
	c.ReleaseMemory(1000)
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.MemoryLimit())
}

func TestController_ConcurrentReservations(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 1000})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryAcquireMemory(100) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, granted)
	assert.Equal(t, int64(1000), c.MemoryUsage())
}
