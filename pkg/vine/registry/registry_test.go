package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New[string, int]()

	r.Register("a", 1)
	r.Register("b", 2)

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := New[string, string]()

	r.Register("key", "first")
	r.Register("key", "second")

	v, _ := r.Get("key")
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MustGet(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 7)

	assert.Equal(t, 7, r.MustGet("a"))
	assert.Panics(t, func() { r.MustGet("missing") })
}

func TestRegistry_HasAndKeys(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)

	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.ElementsMatch(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Range(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)
	r.Register("c", 3)

	seen := map[string]int{}
	r.Range(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, seen)

	// Early stop visits exactly one entry.
	visits := 0
	r.Range(func(string, int) bool {
		visits++
		return false
	})
	assert.Equal(t, 1, visits)
}
