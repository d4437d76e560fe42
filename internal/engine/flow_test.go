package engine

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	gen := UUIDv7Generator{}
	token := gen.Generate()

	assert.Equal(t, 36, len(token), "UUID should be 36 characters")

	parsed, err := uuid.Parse(token)
	require.NoError(t, err, "token should be valid UUID")
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	tokens := make(chan string, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- gen.Generate()
		}()
	}

	wg.Wait()
	close(tokens)

	seen := make(map[string]bool)
	for token := range tokens {
		require.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
	assert.Equal(t, goroutines, len(seen))
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("cart-1", "cart-2")

	assert.Equal(t, "cart-1", gen.Generate())
	assert.Equal(t, "cart-2", gen.Generate())
	assert.Panics(t, func() {
		gen.Generate()
	}, "should panic when all tokens exhausted")
}

func TestEngine_NewCart_UsesTokenGenerator(t *testing.T) {
	eng, _, _ := setupEngine(t, WithTokenGenerator(NewFixedGenerator("till-1", "till-2")))

	first := eng.NewCart()
	second := eng.NewCart()

	assert.Equal(t, "till-1", first.Token())
	assert.Equal(t, "till-2", second.Token())
	assert.Equal(t, CartOpen, first.State())
	assert.True(t, first.Total().IsZero())
	assert.Empty(t, first.Lines())
}
