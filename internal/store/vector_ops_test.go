package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddoksuni/bokji/pkg/types"
)

func TestVectorSerialization(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		original := []float32{0.5, -1.25, 0, 3.75}
		assert.Equal(t, original, DeserializeVector(SerializeVector(original)))
	})

	t.Run("empty vector", func(t *testing.T) {
		blob := SerializeVector(nil)
		assert.Empty(t, blob)
		assert.Empty(t, DeserializeVector(blob))
	})
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

// seedVectors installs records whose two-dimensional embeddings have known
// similarities against the query vector (1, 0)
func seedVectors(t *testing.T, st *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	records := []struct {
		benefit types.Benefit
		vector  []float32
	}{
		{types.Benefit{ID: "exact", Name: "정확히 일치", Active: true}, []float32{1, 0}},
		{types.Benefit{ID: "close", Name: "비슷함", Active: true}, []float32{1, 0.5}},
		{types.Benefit{ID: "far", Name: "거의 무관", Active: true}, []float32{0.1, 1}},
		{types.Benefit{ID: "orthogonal", Name: "무관", Active: true}, []float32{0, 1}},
		{types.Benefit{ID: "youth-only", Name: "청년 전용", LifeStages: []string{"청년"}, Active: true}, []float32{1, 0.1}},
	}

	for _, r := range records {
		benefit := r.benefit
		require.NoError(t, st.UpsertBenefit(ctx, &benefit))
		require.NoError(t, st.UpsertEmbedding(ctx, &Embedding{
			BenefitID: benefit.ID,
			Vector:    SerializeVector(r.vector),
			Dimension: len(r.vector),
			Provider:  "local",
			Model:     "local-hash-v1",
		}))
	}
}

func TestSearchVector(t *testing.T) {
	st := newTestStore(t)
	seedVectors(t, st)
	ctx := context.Background()
	query := []float32{1, 0}

	t.Run("orders by descending similarity", func(t *testing.T) {
		results, err := st.SearchVector(ctx, query, types.UserProfile{}, SearchOptions{Limit: 10})
		require.NoError(t, err)
		require.Len(t, results, 5)

		assert.Equal(t, "exact", results[0].ID)
		assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
		for i := 1; i < len(results); i++ {
			assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
		}
	})

	t.Run("min score drops weak matches", func(t *testing.T) {
		results, err := st.SearchVector(ctx, query, types.UserProfile{}, SearchOptions{Limit: 10, MinScore: 0.8})
		require.NoError(t, err)

		for _, r := range results {
			assert.GreaterOrEqual(t, r.Similarity, 0.8)
		}
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}
		assert.NotContains(t, ids, "orthogonal")
		assert.NotContains(t, ids, "far")
	})

	t.Run("limit truncates after ranking", func(t *testing.T) {
		results, err := st.SearchVector(ctx, query, types.UserProfile{}, SearchOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "exact", results[0].ID)
	})

	t.Run("non-positive limit yields empty", func(t *testing.T) {
		results, err := st.SearchVector(ctx, query, types.UserProfile{}, SearchOptions{Limit: 0})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("prefilter scopes retrieval to the profile", func(t *testing.T) {
		profile := types.UserProfile{LifeStages: []string{"노년"}}

		filtered, err := st.SearchVector(ctx, query, profile, SearchOptions{Limit: 10, PrefilterTags: true})
		require.NoError(t, err)
		for _, r := range filtered {
			assert.NotEqual(t, "youth-only", r.ID)
		}

		unfiltered, err := st.SearchVector(ctx, query, profile, SearchOptions{Limit: 10, PrefilterTags: false})
		require.NoError(t, err)
		ids := make([]string, len(unfiltered))
		for i, r := range unfiltered {
			ids[i] = r.ID
		}
		assert.Contains(t, ids, "youth-only")
	})

	t.Run("dimension mismatch candidates are skipped", func(t *testing.T) {
		bigQuery := make([]float32, 1536)
		bigQuery[0] = 1

		results, err := st.SearchVector(ctx, bigQuery, types.UserProfile{}, SearchOptions{Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("soft-deleted records drop out of retrieval", func(t *testing.T) {
		_, err := st.Deactivate(ctx, []string{"exact"})
		require.NoError(t, err)

		results, err := st.SearchVector(ctx, query, types.UserProfile{}, SearchOptions{Limit: 10})
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, "exact", r.ID)
		}
	})
}

func TestSearchVector_ZeroMinScore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	records := []struct {
		id     string
		vector []float32
	}{
		{"aligned", []float32{1, 0}},
		{"opposite", []float32{-1, 0}},
	}
	for _, r := range records {
		benefit := types.Benefit{ID: r.id, Name: r.id, Active: true}
		require.NoError(t, st.UpsertBenefit(ctx, &benefit))
		require.NoError(t, st.UpsertEmbedding(ctx, &Embedding{
			BenefitID: r.id,
			Vector:    SerializeVector(r.vector),
			Dimension: 2,
			Provider:  "local",
			Model:     "local-hash-v1",
		}))
	}

	// MinScore 0 is a real threshold, not "disabled": negative
	// similarities are cut off in both build modes
	results, err := st.SearchVector(ctx, []float32{1, 0}, types.UserProfile{}, SearchOptions{Limit: 10, MinScore: 0})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "aligned", results[0].ID)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Similarity, 0.0)
	}
}

func TestNormalizedSimilarityRange(t *testing.T) {
	// Similarity of normalized vectors stays within [-1, 1] even with
	// float32 rounding
	a := []float32{0.6, 0.8}
	b := []float32{0.6, 0.8}
	sim := CosineSimilarity(a, b)
	assert.LessOrEqual(t, sim, 1.0+1e-9)
	assert.False(t, math.IsNaN(sim))
}
