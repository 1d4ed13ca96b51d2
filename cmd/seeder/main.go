// Command seeder loads benefit records from a JSON file into the benefit
// database and embeds them. It is the offline counterpart of the MCP
// server: the server only reads what the seeder has written.
//
// Usage:
//
//	seeder -file benefits.json [-db ~/.bokji/bokji.db] [-prune]
//
// With -prune, records present in the database but absent from the input
// file are soft-deleted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ddoksuni/bokji/internal/embedder"
	"github.com/ddoksuni/bokji/internal/ingest"
	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// seedRecord is the JSON shape of one input record
type seedRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	Province      string   `json:"province"`
	District      string   `json:"district"`
	ProvisionType string   `json:"provision_type"`
	LifeStages    []string `json:"life_stages"`
	TargetGroups  []string `json:"target_groups"`
	SourceURL     string   `json:"source_url"`
}

func main() {
	log.SetOutput(os.Stderr)

	var (
		dbPath   = flag.String("db", "", "path to the benefit database file (default ~/.bokji/bokji.db)")
		filePath = flag.String("file", "", "path to the JSON benefits file (required)")
		prune    = flag.Bool("prune", false, "deactivate records absent from the input file")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	if err := run(context.Background(), *dbPath, *filePath, *prune); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func run(ctx context.Context, dbPath, filePath string, prune bool) error {
	records, err := loadRecords(filePath)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d records from %s", len(records), filePath)

	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".bokji", "bokji.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	log.Printf("Embedding with provider %s (%d dimensions)", emb.Provider(), emb.Dimension())

	pipeline := ingest.New(st, emb)

	benefits := make([]types.Benefit, len(records))
	for i, r := range records {
		benefits[i] = types.Benefit{
			ID:            r.ID,
			Name:          r.Name,
			Summary:       r.Summary,
			Description:   r.Description,
			Province:      r.Province,
			District:      r.District,
			ProvisionType: r.ProvisionType,
			LifeStages:    r.LifeStages,
			TargetGroups:  r.TargetGroups,
			SourceURL:     r.SourceURL,
			Active:        true,
		}
	}

	stats, err := pipeline.UpsertBenefits(ctx, benefits)
	if err != nil {
		return fmt.Errorf("upsert benefits: %w", err)
	}
	log.Printf("Upserted %d records (%d embedded, %d failed) in %s",
		stats.RecordsUpserted, stats.EmbeddingsUpserted, stats.RecordsFailed, stats.Duration)
	for _, msg := range stats.ErrorMessages {
		log.Printf("  error: %s", msg)
	}

	if prune {
		stale, err := staleIDs(ctx, st, benefits)
		if err != nil {
			return fmt.Errorf("find stale records: %w", err)
		}
		if len(stale) > 0 {
			pruneStats, err := pipeline.Deactivate(ctx, stale)
			if err != nil {
				return fmt.Errorf("deactivate stale records: %w", err)
			}
			log.Printf("Deactivated %d stale records", pruneStats.Deactivated)
		}
	}

	status, err := st.Status(ctx)
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	log.Printf("Catalog now holds %d active records, %d embeddings",
		status.ActiveBenefits, status.Embeddings)

	return nil
}

// loadRecords reads and validates the JSON input file
func loadRecords(path string) ([]seedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}

	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse input file: %w", err)
	}

	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d has no id", i)
		}
		if r.Name == "" {
			return nil, fmt.Errorf("record %q has no name", r.ID)
		}
	}

	return records, nil
}

// staleIDs lists active record identifiers not present in the input set.
// The unconstrained profile makes ListEligible return the whole catalog.
func staleIDs(ctx context.Context, st store.Store, current []types.Benefit) ([]string, error) {
	keep := make(map[string]bool, len(current))
	for _, b := range current {
		keep[b.ID] = true
	}

	all, err := st.ListEligible(ctx, types.UserProfile{})
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, b := range all {
		if !keep[b.ID] {
			stale = append(stale, b.ID)
		}
	}
	return stale, nil
}
