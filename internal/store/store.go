package store

import (
	"context"
	"errors"
	"time"

	"github.com/ddoksuni/bokji/pkg/types"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")
)

// Store defines the interface for persisting and querying benefit records
// and their embeddings. Reads are the engine's concern; writes belong to
// the ingestion pipeline.
type Store interface {
	// Benefit operations
	UpsertBenefit(ctx context.Context, benefit *types.Benefit) error
	GetBenefit(ctx context.Context, id string) (*types.Benefit, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]types.Benefit, error)
	Deactivate(ctx context.Context, ids []string) (int, error)

	// Eligibility operations
	ListEligible(ctx context.Context, profile types.UserProfile) ([]BenefitSummary, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, emb *Embedding) error
	GetEmbedding(ctx context.Context, benefitID string) (*Embedding, error)
	DeleteEmbedding(ctx context.Context, benefitID string) error

	// Search operations
	SearchVector(ctx context.Context, vector []float32, profile types.UserProfile, opts SearchOptions) ([]ScoredBenefit, error)

	// Status operations
	Status(ctx context.Context) (*StoreStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// BenefitSummary is a slim projection of a benefit record carrying just
// enough metadata for merge-time tie-breaking without a second round-trip
type BenefitSummary struct {
	ID            string
	Name          string
	Province      string
	District      string
	ProvisionType string
}

// ScoredBenefit is a summary annotated with its vector similarity score
type ScoredBenefit struct {
	BenefitSummary
	Similarity float64
}

// Embedding represents a stored vector for one benefit record
type Embedding struct {
	BenefitID string
	Vector    []byte // Serialized float32 array, little-endian
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// SearchOptions tunes vector retrieval. MinScore and Limit are operator
// configuration, not constants (observed useful thresholds range 0.1-0.4).
type SearchOptions struct {
	Limit         int     // Max candidates returned
	MinScore      float64 // Minimum cosine similarity
	PrefilterTags bool    // Apply life-stage/target filters at retrieval time
}

// StoreStatus contains statistics about the benefit store
type StoreStatus struct {
	ActiveBenefits int
	TotalBenefits  int
	Embeddings     int
	Health         HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
}
