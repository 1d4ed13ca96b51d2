package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ddoksuni/bokji/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStore) querier() querier {
	return s.db
}

// Tag sets are stored as comma-delimited text so a single LIKE predicate
// can test set membership inside the eligibility query.

// joinTags encodes a tag slice for storage
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// splitTags decodes a stored tag set
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Benefit operations

func (s *SQLiteStore) upsertBenefitWithQuerier(ctx context.Context, q querier, benefit *types.Benefit) error {
	if benefit.ID == "" {
		return types.ErrInvalidBenefitID
	}

	query := `
		INSERT INTO benefits (id, name, summary, description, province, district,
		                      provision_type, life_stages, target_groups, source_url,
		                      is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			summary = excluded.summary,
			description = excluded.description,
			province = excluded.province,
			district = excluded.district,
			provision_type = excluded.provision_type,
			life_stages = excluded.life_stages,
			target_groups = excluded.target_groups,
			source_url = excluded.source_url,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		benefit.ID, benefit.Name, benefit.Summary, benefit.Description,
		benefit.Province, benefit.District, benefit.ProvisionType,
		joinTags(benefit.LifeStages), joinTags(benefit.TargetGroups),
		benefit.SourceURL, benefit.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert benefit: %w", err)
	}
	benefit.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertBenefit(ctx context.Context, benefit *types.Benefit) error {
	return s.upsertBenefitWithQuerier(ctx, s.querier(), benefit)
}

const benefitColumns = `id, name, summary, description, province, district,
	provision_type, life_stages, target_groups, source_url, is_active,
	created_at, updated_at`

// scanBenefit reads one benefit row
func scanBenefit(row interface{ Scan(...interface{}) error }) (*types.Benefit, error) {
	var b types.Benefit
	var lifeStages, targetGroups string
	err := row.Scan(&b.ID, &b.Name, &b.Summary, &b.Description,
		&b.Province, &b.District, &b.ProvisionType,
		&lifeStages, &targetGroups, &b.SourceURL, &b.Active,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.LifeStages = splitTags(lifeStages)
	b.TargetGroups = splitTags(targetGroups)
	return &b, nil
}

func (s *SQLiteStore) getBenefitWithQuerier(ctx context.Context, q querier, id string) (*types.Benefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE id = ?`
	benefit, err := scanBenefit(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get benefit: %w", err)
	}
	return benefit, nil
}

func (s *SQLiteStore) GetBenefit(ctx context.Context, id string) (*types.Benefit, error) {
	return s.getBenefitWithQuerier(ctx, s.querier(), id)
}

// getByIDsWithQuerier fetches full active records for a set of identifiers
// in a single IN query. Identifiers with no active record are absent from
// the returned map, never an error.
func (s *SQLiteStore) getByIDsWithQuerier(ctx context.Context, q querier, ids []string) (map[string]types.Benefit, error) {
	result := make(map[string]types.Benefit, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE is_active = 1 AND id IN (` + placeholders + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get benefits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		benefit, err := scanBenefit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}
		result[benefit.ID] = *benefit
	}

	return result, rows.Err()
}

func (s *SQLiteStore) GetByIDs(ctx context.Context, ids []string) (map[string]types.Benefit, error) {
	return s.getByIDsWithQuerier(ctx, s.querier(), ids)
}

// deactivateWithQuerier soft-deletes records dropped by a collection run
func (s *SQLiteStore) deactivateWithQuerier(ctx context.Context, q querier, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `UPDATE benefits SET is_active = 0, updated_at = ? WHERE id IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now())
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate benefits: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *SQLiteStore) Deactivate(ctx context.Context, ids []string) (int, error) {
	return s.deactivateWithQuerier(ctx, s.querier(), ids)
}

// Embedding operations

func (s *SQLiteStore) upsertEmbeddingWithQuerier(ctx context.Context, q querier, emb *Embedding) error {
	query := `
		INSERT INTO benefit_embeddings (benefit_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(benefit_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model,
			created_at = excluded.created_at
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		emb.BenefitID, emb.Vector, emb.Dimension, emb.Provider, emb.Model, now)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	emb.CreatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertEmbedding(ctx context.Context, emb *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.querier(), emb)
}

func (s *SQLiteStore) getEmbeddingWithQuerier(ctx context.Context, q querier, benefitID string) (*Embedding, error) {
	query := `
		SELECT benefit_id, vector, dimension, provider, model, created_at
		FROM benefit_embeddings WHERE benefit_id = ?
	`
	var emb Embedding
	err := q.QueryRowContext(ctx, query, benefitID).Scan(
		&emb.BenefitID, &emb.Vector, &emb.Dimension, &emb.Provider, &emb.Model, &emb.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return &emb, nil
}

func (s *SQLiteStore) GetEmbedding(ctx context.Context, benefitID string) (*Embedding, error) {
	return s.getEmbeddingWithQuerier(ctx, s.querier(), benefitID)
}

// deleteEmbeddingWithQuerier removes a stored vector. Deleting a record
// with no embedding is a no-op, not an error.
func (s *SQLiteStore) deleteEmbeddingWithQuerier(ctx context.Context, q querier, benefitID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM benefit_embeddings WHERE benefit_id = ?`, benefitID)
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteEmbedding(ctx context.Context, benefitID string) error {
	return s.deleteEmbeddingWithQuerier(ctx, s.querier(), benefitID)
}

// Search operations

func (s *SQLiteStore) ListEligible(ctx context.Context, profile types.UserProfile) ([]BenefitSummary, error) {
	return listEligible(ctx, s.querier(), profile)
}

func (s *SQLiteStore) SearchVector(ctx context.Context, vector []float32, profile types.UserProfile, opts SearchOptions) ([]ScoredBenefit, error) {
	return searchVector(ctx, s.querier(), vector, profile, opts)
}

// Status operations

func (s *SQLiteStore) statusWithQuerier(ctx context.Context, q querier) (*StoreStatus, error) {
	status := &StoreStatus{}

	err := q.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM benefits`).
		Scan(&status.TotalBenefits, &status.ActiveBenefits)
	if err != nil {
		return nil, fmt.Errorf("failed to count benefits: %w", err)
	}

	err = q.QueryRowContext(ctx, `SELECT COUNT(*) FROM benefit_embeddings`).Scan(&status.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: status.Embeddings > 0,
	}
	return status, nil
}

func (s *SQLiteStore) Status(ctx context.Context) (*StoreStatus, error) {
	return s.statusWithQuerier(ctx, s.querier())
}

// Transaction method implementations

func (t *sqliteTx) UpsertBenefit(ctx context.Context, benefit *types.Benefit) error {
	return t.store.upsertBenefitWithQuerier(ctx, t.querier(), benefit)
}

func (t *sqliteTx) GetBenefit(ctx context.Context, id string) (*types.Benefit, error) {
	return t.store.getBenefitWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) GetByIDs(ctx context.Context, ids []string) (map[string]types.Benefit, error) {
	return t.store.getByIDsWithQuerier(ctx, t.querier(), ids)
}

func (t *sqliteTx) Deactivate(ctx context.Context, ids []string) (int, error) {
	return t.store.deactivateWithQuerier(ctx, t.querier(), ids)
}

func (t *sqliteTx) ListEligible(ctx context.Context, profile types.UserProfile) ([]BenefitSummary, error) {
	return listEligible(ctx, t.querier(), profile)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, emb *Embedding) error {
	return t.store.upsertEmbeddingWithQuerier(ctx, t.querier(), emb)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, benefitID string) (*Embedding, error) {
	return t.store.getEmbeddingWithQuerier(ctx, t.querier(), benefitID)
}

func (t *sqliteTx) DeleteEmbedding(ctx context.Context, benefitID string) error {
	return t.store.deleteEmbeddingWithQuerier(ctx, t.querier(), benefitID)
}

func (t *sqliteTx) SearchVector(ctx context.Context, vector []float32, profile types.UserProfile, opts SearchOptions) ([]ScoredBenefit, error) {
	return searchVector(ctx, t.querier(), vector, profile, opts)
}

func (t *sqliteTx) Status(ctx context.Context) (*StoreStatus, error) {
	return t.store.statusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	return nil // The transaction does not own the connection
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}
