package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedNameGenerator(t *testing.T) {
	gen := NewFixedNameGenerator("scratch")
	assert.Equal(t, "scratch", gen.Generate())
	assert.Equal(t, "scratch", gen.Generate())

	assert.Equal(t, "test-tmp-default", NewFixedNameGenerator("").Generate())
}

func TestSequentialNameGenerator(t *testing.T) {
	gen := NewSequentialNameGenerator("w")
	assert.Equal(t, "w-0001", gen.Generate())
	assert.Equal(t, "w-0002", gen.Generate())

	gen.Reset()
	assert.Equal(t, "w-0001", gen.Generate())

	assert.Equal(t, "tmp-0001", NewSequentialNameGenerator("").Generate())
}

func TestSequentialNameGeneratorConcurrent(t *testing.T) {
	gen := NewSequentialNameGenerator("c")
	const n = 100

	var wg sync.WaitGroup
	names := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names <- gen.Generate()
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]bool)
	for name := range names {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, n)
}
