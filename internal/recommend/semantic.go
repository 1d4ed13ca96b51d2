package recommend

import (
	"context"

	"github.com/ddoksuni/bokji/internal/embedder"
	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// semanticResult is the explicit two-variant outcome of the semantic tier:
// either a scored candidate list or "unavailable". Degradation to
// rule-only ranking is a visible branch on this value, never an implicit
// nil fallthrough.
type semanticResult struct {
	available bool
	scored    []store.ScoredBenefit
}

func semanticUnavailable() semanticResult {
	return semanticResult{available: false}
}

func semanticScored(scored []store.ScoredBenefit) semanticResult {
	return semanticResult{available: true, scored: scored}
}

// retrieveSemantic embeds the query text and runs profile-scoped vector
// retrieval. An empty query means no semantic search was requested; an
// embedding or retrieval failure degrades the call to rule-only ranking.
// Neither case is an error for the overall recommendation.
func (e *Engine) retrieveSemantic(ctx context.Context, queryText string, profile types.UserProfile) semanticResult {
	if queryText == "" {
		return semanticUnavailable()
	}

	emb, err := e.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: queryText})
	if err != nil {
		return semanticUnavailable()
	}

	scored, err := e.store.SearchVector(ctx, emb.Vector, profile, store.SearchOptions{
		Limit:         e.cfg.CandidateLimit,
		MinScore:      e.cfg.MinScore,
		PrefilterTags: e.cfg.PrefilterTags,
	})
	if err != nil {
		return semanticUnavailable()
	}

	return semanticScored(scored)
}
