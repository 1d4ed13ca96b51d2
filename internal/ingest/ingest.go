package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ddoksuni/bokji/internal/embedder"
	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// Pipeline upserts benefit records and keeps their embeddings current.
// It is the only writer of the benefit store; the recommendation engine
// only ever reads.
type Pipeline struct {
	store     store.Store
	embedder  embedder.Embedder
	batchSize int
}

// Statistics tracks one ingestion run
type Statistics struct {
	RecordsUpserted    int
	EmbeddingsUpserted int
	RecordsFailed      int
	Deactivated        int
	ErrorMessages      []string
	Duration           time.Duration
}

// New creates an ingestion pipeline
func New(st store.Store, emb embedder.Embedder) *Pipeline {
	return &Pipeline{
		store:     st,
		embedder:  emb,
		batchSize: embedder.DefaultBatchSize,
	}
}

// embeddingText builds the text that represents a record in the vector
// index: name plus summary, the fields users' queries are matched against
func embeddingText(b *types.Benefit) string {
	parts := make([]string, 0, 2)
	if b.Name != "" {
		parts = append(parts, b.Name)
	}
	if b.Summary != "" {
		parts = append(parts, b.Summary)
	}
	return strings.Join(parts, "\n")
}

// UpsertBenefits writes the given records and their embeddings. Records
// are embedded in batches; each record and its embedding commit together
// so the vector index never references text the store doesn't hold. A
// record that fails to embed is recorded and skipped, it does not abort
// the run.
func (p *Pipeline) UpsertBenefits(ctx context.Context, benefits []types.Benefit) (*Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{}

	for start := 0; start < len(benefits); start += p.batchSize {
		end := start + p.batchSize
		if end > len(benefits) {
			end = len(benefits)
		}

		if err := p.ingestBatch(ctx, benefits[start:end], stats); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// ingestBatch embeds one batch and commits each record transactionally
func (p *Pipeline) ingestBatch(ctx context.Context, batch []types.Benefit, stats *Statistics) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = embeddingText(&batch[i])
	}

	resp, err := p.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		// Records are still worth storing without vectors; they stay
		// reachable through the eligibility tier until the next run
		resp = nil
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("batch embedding failed: %v", err))
	}

	for i := range batch {
		benefit := batch[i]

		var emb *embedder.Embedding
		if resp != nil && i < len(resp.Embeddings) {
			emb = resp.Embeddings[i]
		}

		if err := p.ingestOne(ctx, &benefit, emb); err != nil {
			stats.RecordsFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", benefit.ID, err))
			continue
		}

		stats.RecordsUpserted++
		if emb != nil {
			stats.EmbeddingsUpserted++
		}
	}

	return nil
}

// ingestOne commits one record and its embedding in a single transaction
func (p *Pipeline) ingestOne(ctx context.Context, benefit *types.Benefit, emb *embedder.Embedding) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpsertBenefit(ctx, benefit); err != nil {
		return err
	}

	if emb != nil {
		stored := &store.Embedding{
			BenefitID: benefit.ID,
			Vector:    store.SerializeVector(emb.Vector),
			Dimension: emb.Dimension,
			Provider:  emb.Provider,
			Model:     emb.Model,
		}
		if err := tx.UpsertEmbedding(ctx, stored); err != nil {
			return err
		}
	} else {
		// The record text may have changed; an embedding of the
		// previous text must not keep serving vector retrieval
		if err := tx.DeleteEmbedding(ctx, benefit.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Deactivate soft-deletes records a collection run no longer reports,
// keeping them out of every engine query without losing history
func (p *Pipeline) Deactivate(ctx context.Context, ids []string) (*Statistics, error) {
	startTime := time.Now()

	count, err := p.store.Deactivate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("deactivate records: %w", err)
	}

	return &Statistics{
		Deactivated: count,
		Duration:    time.Since(startTime),
	}, nil
}
