package testutil

import (
	"fmt"
	"sync"
)

// SequentialCartTokens generates predictable cart tokens: "<prefix>-1",
// "<prefix>-2", and so on.
//
// Unlike engine.FixedGenerator it never runs out, which suits scenarios
// that open an unknown number of carts but still need byte-identical
// golden traces.
//
// Thread-safety: SequentialCartTokens is safe for concurrent use.
type SequentialCartTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialCartTokens creates a generator. If prefix is empty, "cart" is used.
func NewSequentialCartTokens(prefix string) *SequentialCartTokens {
	if prefix == "" {
		prefix = "cart"
	}
	return &SequentialCartTokens{prefix: prefix}
}

// Generate returns the next token.
//
// Implements engine.CartTokenGenerator.
func (g *SequentialCartTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
