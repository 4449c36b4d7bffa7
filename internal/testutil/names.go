package testutil

import (
	"fmt"
	"sync"
)

// FixedNameGenerator returns the same temp-file name every time.
//
// Two writers open at once with a FixedNameGenerator collide on O_EXCL,
// which is how tests provoke temp-file creation failures.
//
// Thread-safety: FixedNameGenerator is stateless and safe for concurrent use.
type FixedNameGenerator struct {
	name string
}

// NewFixedNameGenerator creates a generator that always returns name.
//
// If name is empty, Generate() returns "test-tmp-default".
func NewFixedNameGenerator(name string) *FixedNameGenerator {
	if name == "" {
		name = "test-tmp-default"
	}
	return &FixedNameGenerator{name: name}
}

// Generate returns the fixed name.
func (g *FixedNameGenerator) Generate() string {
	return g.name
}

// SequentialNameGenerator returns predictable, distinct names:
// "<prefix>-0001", "<prefix>-0002", ...
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialNameGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialNameGenerator creates a generator starting at 1.
func NewSequentialNameGenerator(prefix string) *SequentialNameGenerator {
	if prefix == "" {
		prefix = "tmp"
	}
	return &SequentialNameGenerator{prefix: prefix}
}

// Generate returns the next name in sequence.
func (g *SequentialNameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset(), Generate() returns
// "<prefix>-0001" again.
func (g *SequentialNameGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
