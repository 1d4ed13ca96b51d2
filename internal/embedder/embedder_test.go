package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		cache := NewCache(10)

		emb := &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3, Provider: "local"}
		cache.Set("hash1", emb)

		got, ok := cache.Get("hash1")
		require.True(t, ok)
		assert.Equal(t, emb.Vector, got.Vector)
		assert.Equal(t, 1, cache.Size())
	})

	t.Run("miss", func(t *testing.T) {
		cache := NewCache(10)
		_, ok := cache.Get("missing")
		assert.False(t, ok)
	})

	t.Run("returns a copy, not the cached vector", func(t *testing.T) {
		cache := NewCache(10)
		cache.Set("hash1", &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3})

		got, ok := cache.Get("hash1")
		require.True(t, ok)
		got.Vector[0] = 99

		again, ok := cache.Get("hash1")
		require.True(t, ok)
		assert.Equal(t, float32(1), again.Vector[0])
	})

	t.Run("LRU eviction", func(t *testing.T) {
		cache := NewCache(2)
		cache.Set("a", &Embedding{Dimension: 1})
		cache.Set("b", &Embedding{Dimension: 1})
		cache.Set("c", &Embedding{Dimension: 1})

		assert.Equal(t, 2, cache.Size())
		_, ok := cache.Get("a")
		assert.False(t, ok, "oldest entry should be evicted")
	})

	t.Run("clear", func(t *testing.T) {
		cache := NewCache(10)
		cache.Set("a", &Embedding{Dimension: 1})
		cache.Clear()
		assert.Zero(t, cache.Size())
	})
}

func TestComputeHash(t *testing.T) {
	h1 := ComputeHash("임신 지원금")
	h2 := ComputeHash("임신 지원금")
	h3 := ComputeHash("청년 월세")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(EmbeddingRequest{Text: "청년 지원"}))
	assert.ErrorIs(t, ValidateRequest(EmbeddingRequest{}), ErrEmptyText)
}

func TestValidateBatchRequest(t *testing.T) {
	assert.NoError(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", "b"}}))
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", ""}}), ErrInvalidInput)
}
