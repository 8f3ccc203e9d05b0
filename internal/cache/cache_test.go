package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		chain    string
		address  string
		expected string
	}{
		{
			name:     "lowercases the address",
			chain:    "ETH",
			address:  "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
			expected: "ETH:0x742d35cc6634c0532925a3b844bc454e4438f44e",
		},
		{
			name:     "trims whitespace",
			chain:    "BTC",
			address:  "  1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa  ",
			expected: "BTC:1a1zp1ep5qgefi2dmptftl5slmv7divfna",
		},
		{
			name:     "same address on different chains yields different keys",
			chain:    "SOL",
			address:  "abc",
			expected: "SOL:abc",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Key(test.chain, test.address))
		})
	}
}

func TestCacheSetAndGet(t *testing.T) {
	c := New()

	c.Set("k", "value", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "value", got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheMiss(t *testing.T) {
	c := New()

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New()
	c.now = func() time.Time { return current }

	c.Set("k", 42, 5*time.Minute)

	// Still fresh just before the deadline.
	current = current.Add(5 * time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	// Expired one instant later, and evicted by the read.
	current = current.Add(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheSetRefreshesExpiry(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New()
	c.now = func() time.Time { return current }

	c.Set("k", "old", time.Minute)
	current = current.Add(30 * time.Second)
	c.Set("k", "new", time.Minute)

	current = current.Add(45 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Set("shared", "v", time.Minute)
		}()
		go func() {
			defer wg.Done()
			c.Get("shared")
		}()
	}
	wg.Wait()

	got, ok := c.Get("shared")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}
