package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddoksuni/bokji/internal/embedder"
	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// failingEmbedder always errors, to exercise the degraded ingest path
type failingEmbedder struct{}

func (f *failingEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	return nil, errors.New("provider down")
}

func (f *failingEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	return nil, errors.New("provider down")
}

func (f *failingEmbedder) Dimension() int   { return 0 }
func (f *failingEmbedder) Provider() string { return "failing" }
func (f *failingEmbedder) Model() string    { return "failing" }
func (f *failingEmbedder) Close() error     { return nil }

func newTestPipeline(t *testing.T, emb embedder.Embedder) (*Pipeline, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	if emb == nil {
		emb, err = embedder.NewLocalProvider(nil)
		require.NoError(t, err)
	}

	return New(st, emb), st
}

func sampleBenefits() []types.Benefit {
	return []types.Benefit{
		{ID: "WLF00000001", Name: "임산부 교통비 지원", Summary: "임산부 대상 교통비 바우처", TargetGroups: []string{"임산부"}, Active: true},
		{ID: "WLF00000002", Name: "청년 월세 지원", Summary: "청년 대상 월세 현금 지원", LifeStages: []string{"청년"}, Active: true},
	}
}

func TestUpsertBenefits(t *testing.T) {
	pipeline, st := newTestPipeline(t, nil)
	ctx := context.Background()

	stats, err := pipeline.UpsertBenefits(ctx, sampleBenefits())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RecordsUpserted)
	assert.Equal(t, 2, stats.EmbeddingsUpserted)
	assert.Zero(t, stats.RecordsFailed)
	assert.Empty(t, stats.ErrorMessages)

	// Record and embedding are both queryable
	got, err := st.GetBenefit(ctx, "WLF00000001")
	require.NoError(t, err)
	assert.Equal(t, "임산부 교통비 지원", got.Name)

	emb, err := st.GetEmbedding(ctx, "WLF00000001")
	require.NoError(t, err)
	assert.Equal(t, embedder.LocalDimension, emb.Dimension)
	assert.Equal(t, "local", emb.Provider)
}

func TestUpsertBenefits_Reingest(t *testing.T) {
	pipeline, st := newTestPipeline(t, nil)
	ctx := context.Background()

	_, err := pipeline.UpsertBenefits(ctx, sampleBenefits())
	require.NoError(t, err)

	updated := sampleBenefits()
	updated[0].Summary = "임산부 교통비 지원 확대"
	stats, err := pipeline.UpsertBenefits(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RecordsUpserted)

	status, err := st.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalBenefits)
	assert.Equal(t, 2, status.Embeddings)
}

func TestUpsertBenefits_EmbeddingFailure(t *testing.T) {
	pipeline, st := newTestPipeline(t, &failingEmbedder{})
	ctx := context.Background()

	stats, err := pipeline.UpsertBenefits(ctx, sampleBenefits())
	require.NoError(t, err)

	// Records land without vectors and the failure is reported, not fatal
	assert.Equal(t, 2, stats.RecordsUpserted)
	assert.Zero(t, stats.EmbeddingsUpserted)
	require.NotEmpty(t, stats.ErrorMessages)

	_, err = st.GetBenefit(ctx, "WLF00000001")
	assert.NoError(t, err)
	_, err = st.GetEmbedding(ctx, "WLF00000001")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertBenefits_FailedReembedDropsStaleVector(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	local, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = New(st, local).UpsertBenefits(ctx, sampleBenefits())
	require.NoError(t, err)
	_, err = st.GetEmbedding(ctx, "WLF00000001")
	require.NoError(t, err)

	// The text changes but re-embedding fails: the updated record must
	// not keep serving the vector of its previous text
	updated := sampleBenefits()
	updated[0].Summary = "임산부 교통비 지원 확대"
	stats, err := New(st, &failingEmbedder{}).UpsertBenefits(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RecordsUpserted)

	got, err := st.GetBenefit(ctx, "WLF00000001")
	require.NoError(t, err)
	assert.Equal(t, "임산부 교통비 지원 확대", got.Summary)

	_, err = st.GetEmbedding(ctx, "WLF00000001")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	pipeline, st := newTestPipeline(t, nil)
	ctx := context.Background()

	_, err := pipeline.UpsertBenefits(ctx, sampleBenefits())
	require.NoError(t, err)

	stats, err := pipeline.Deactivate(ctx, []string{"WLF00000001"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Deactivated)

	eligible, err := st.ListEligible(ctx, types.UserProfile{})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "WLF00000002", eligible[0].ID)
}

func TestEmbeddingText(t *testing.T) {
	assert.Equal(t, "이름\n요약", embeddingText(&types.Benefit{Name: "이름", Summary: "요약"}))
	assert.Equal(t, "이름", embeddingText(&types.Benefit{Name: "이름"}))
	assert.Equal(t, "", embeddingText(&types.Benefit{}))
}
