package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/ddoksuni/bokji/pkg/types"
)

// searchVector performs vector similarity search over benefit embeddings,
// pre-filtered by the profile's eligibility predicate
func searchVector(ctx context.Context, q querier, queryVector []float32, profile types.UserProfile, opts SearchOptions) ([]ScoredBenefit, error) {
	if opts.Limit <= 0 {
		return []ScoredBenefit{}, nil
	}

	// Use optimized SQL-based search when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, q, queryVector, profile, opts)
	}
	// Fall back to Go-based computation for purego builds
	return searchVectorFallback(ctx, q, queryVector, profile, opts)
}

// searchVectorOptimized uses the sqlite-vec extension to compute cosine
// distance at the database layer. Distance is converted to similarity
// (1 - distance) to keep one score convention across both build modes.
func searchVectorOptimized(ctx context.Context, q querier, queryVector []float32, profile types.UserProfile, opts SearchOptions) ([]ScoredBenefit, error) {
	queryVectorBlob := serializeVector(queryVector)

	clause, clauseArgs := eligibilityClause(profile, opts.PrefilterTags)

	query := `
		SELECT
			b.id, b.name, b.province, b.district, b.provision_type,
			1.0 - vec_distance_cosine(e.vector, ?) as similarity
		FROM benefits b
		INNER JOIN benefit_embeddings e ON b.id = e.benefit_id
		WHERE ` + clause
	args := append([]interface{}{queryVectorBlob}, clauseArgs...)

	// Applied unconditionally so both build modes filter identically,
	// including MinScore 0 cutting off negative similarities
	query += " AND (1.0 - vec_distance_cosine(e.vector, ?)) >= ?"
	args = append(args, queryVectorBlob, opts.MinScore)

	query += " ORDER BY similarity DESC LIMIT ?"
	args = append(args, opts.Limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]ScoredBenefit, 0, opts.Limit)
	for rows.Next() {
		var r ScoredBenefit
		if err := rows.Scan(&r.ID, &r.Name, &r.Province, &r.District, &r.ProvisionType, &r.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// searchVectorFallback fetches the pre-filtered candidate vectors and
// computes cosine similarity in Go. Used when the sqlite-vec extension is
// not available (purego builds).
func searchVectorFallback(ctx context.Context, q querier, queryVector []float32, profile types.UserProfile, opts SearchOptions) ([]ScoredBenefit, error) {
	clause, args := eligibilityClause(profile, opts.PrefilterTags)

	query := `
		SELECT b.id, b.name, b.province, b.district, b.provision_type, e.vector
		FROM benefits b
		INNER JOIN benefit_embeddings e ON b.id = e.benefit_id
		WHERE ` + clause

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]ScoredBenefit, 0, 256)
	for rows.Next() {
		var c ScoredBenefit
		var vectorBlob []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Province, &c.District, &c.ProvisionType, &vectorBlob); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		c.Similarity = cosineSimilarity(queryVector, vector)
		if c.Similarity < opts.MinScore {
			continue
		}

		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by similarity (descending), stable for score ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}
	return candidates, nil
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector is an exported helper for ingestion and testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
