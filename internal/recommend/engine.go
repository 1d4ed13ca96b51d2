package recommend

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ddoksuni/bokji/internal/embedder"
	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// Engine is the hybrid eligibility + semantic recommendation engine. Each
// call is stateless; the only shared state is the read-only store, the
// embedder's internal cache, and an optional response cache.
type Engine struct {
	store    store.Store
	embedder embedder.Embedder
	cfg      Config

	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// cacheEntry represents a cached recommendation list with expiration time
type cacheEntry struct {
	recommendations []types.Recommendation
	expiresAt       time.Time
}

// New creates an Engine. A zero cfg.CacheSize disables the response cache.
func New(st store.Store, emb embedder.Embedder, cfg Config) *Engine {
	e := &Engine{
		store:    st,
		embedder: emb,
		cfg:      cfg,
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[[32]byte, *cacheEntry](cfg.CacheSize)
		if err == nil {
			e.cache = cache
		}
	}

	return e
}

// Recommend computes the ranked benefit list for one profile and query.
//
// Eligibility resolution and query embedding have no data dependency and
// run concurrently. The semantic tier degrades silently (empty query,
// embedding failure, vector search failure all mean rule-only ranking);
// the eligibility tier does not: a store failure returns
// ErrResolverUnavailable with an empty list, because an absent whitelist
// is indistinguishable from "eligible for nothing" and the caller must be
// able to tell those apart.
//
// topK <= 0 yields an empty result.
func (e *Engine) Recommend(ctx context.Context, profile types.UserProfile, queryText string, topK int) ([]types.Recommendation, error) {
	if topK <= 0 {
		return []types.Recommendation{}, nil
	}

	queryText = strings.TrimSpace(queryText)

	if cached, ok := e.checkCache(profile, queryText, topK); ok {
		return cached, nil
	}

	if e.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
		defer cancel()
	}

	var (
		whitelist []store.BenefitSummary
		semantic  semanticResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		whitelist, err = e.store.ListEligible(gctx, profile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
		}
		return nil
	})

	g.Go(func() error {
		// Semantic failures degrade, they never fail the call
		semantic = e.retrieveSemantic(gctx, queryText, profile)
		return nil
	})

	if err := g.Wait(); err != nil {
		return []types.Recommendation{}, err
	}

	var scored []store.ScoredBenefit
	if semantic.available {
		scored = semantic.scored
	}

	ranked := mergeRank(whitelist, scored, profile, topK)
	if len(ranked) == 0 {
		return []types.Recommendation{}, nil
	}

	recommendations, err := e.resolveDetails(ctx, ranked)
	if err != nil {
		return []types.Recommendation{}, err
	}

	e.storeInCache(profile, queryText, topK, recommendations)
	return recommendations, nil
}

// resolveDetails expands ranked candidates into full records, re-attaching
// each one's source tag and similarity. Lookup failure empties the whole
// call (all-or-nothing); a single identifier missing from the store (for
// example a soft-delete racing the call) is skipped instead.
func (e *Engine) resolveDetails(ctx context.Context, ranked []candidate) ([]types.Recommendation, error) {
	ids := make([]string, len(ranked))
	for i, c := range ranked {
		ids[i] = c.id
	}

	records, err := e.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetailResolution, err)
	}

	recommendations := make([]types.Recommendation, 0, len(ranked))
	for _, c := range ranked {
		record, ok := records[c.id]
		if !ok {
			continue
		}
		recommendations = append(recommendations, types.Recommendation{
			Benefit:    record,
			Source:     c.source,
			Similarity: c.similarity,
		})
	}

	return recommendations, nil
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// checkCache looks up a still-valid cached response
func (e *Engine) checkCache(profile types.UserProfile, queryText string, topK int) ([]types.Recommendation, bool) {
	if e.cache == nil {
		return nil, false
	}

	hash := computeCallHash(profile, queryText, topK)

	e.cacheMu.RLock()
	entry, found := e.cache.Get(hash)
	if !found {
		e.cacheMu.RUnlock()
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		e.cacheMu.RUnlock()
		e.cacheMu.Lock()
		e.cache.Remove(hash)
		e.cacheMu.Unlock()
		return nil, false
	}

	// Copy while holding the read lock so the entry can't change under us
	result := make([]types.Recommendation, len(entry.recommendations))
	copy(result, entry.recommendations)
	e.cacheMu.RUnlock()

	return result, true
}

// storeInCache saves a response; empty results are not cached so a
// transient degradation doesn't stick around for the TTL
func (e *Engine) storeInCache(profile types.UserProfile, queryText string, topK int, recommendations []types.Recommendation) {
	if e.cache == nil || len(recommendations) == 0 {
		return
	}

	stored := make([]types.Recommendation, len(recommendations))
	copy(stored, recommendations)

	entry := &cacheEntry{
		recommendations: stored,
		expiresAt:       time.Now().Add(e.cfg.CacheTTL),
	}

	hash := computeCallHash(profile, queryText, topK)

	e.cacheMu.Lock()
	e.cache.Add(hash, entry)
	e.cacheMu.Unlock()
}

// InvalidateCache drops all cached responses, for callers that know the
// underlying catalog just changed
func (e *Engine) InvalidateCache() {
	if e.cache == nil {
		return
	}
	e.cacheMu.Lock()
	e.cache.Purge()
	e.cacheMu.Unlock()
}

// computeCallHash builds a deterministic key for one recommendation call
func computeCallHash(profile types.UserProfile, queryText string, topK int) [32]byte {
	var data strings.Builder
	data.WriteString(profile.Province)
	data.WriteString("|")
	data.WriteString(profile.District)
	data.WriteString("|")
	data.WriteString(strings.Join(profile.LifeStages, ","))
	data.WriteString("|")
	data.WriteString(strings.Join(profile.TargetGroups, ","))
	data.WriteString("|")
	data.WriteString(queryText)
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", topK))

	return sha256.Sum256([]byte(data.String()))
}
