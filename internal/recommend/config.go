package recommend

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables for engine tuning
const (
	EnvTopK           = "BOKJI_TOP_K"
	EnvMinScore       = "BOKJI_MIN_SCORE"
	EnvCandidateLimit = "BOKJI_CANDIDATE_LIMIT"
	EnvPrefilterTags  = "BOKJI_PREFILTER_TAGS"
	EnvCallTimeout    = "BOKJI_CALL_TIMEOUT"
)

// Config tunes the recommendation engine. MinScore and CandidateLimit
// trade recall for precision and are deliberately operator configuration;
// useful MinScore values have ranged from 0.1 to 0.4 in practice.
type Config struct {
	TopK           int           // Default result size when the caller passes none
	MinScore       float64       // Minimum similarity for semantic candidates
	CandidateLimit int           // Max candidates fetched from vector search
	PrefilterTags  bool          // Apply life-stage/target filters at retrieval time
	CallTimeout    time.Duration // Per-call budget covering all I/O
	CacheSize      int           // Response cache entries; 0 disables caching
	CacheTTL       time.Duration // Response cache entry lifetime
}

// DefaultConfig returns the operational defaults
func DefaultConfig() Config {
	return Config{
		TopK:           10,
		MinScore:       0.35,
		CandidateLimit: 50,
		PrefilterTags:  true,
		CallTimeout:    10 * time.Second,
		CacheSize:      1000,
		CacheTTL:       5 * time.Minute,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by environment variables
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvTopK); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid %s: %q", EnvTopK, v)
		}
		cfg.TopK = n
	}

	if v := os.Getenv(EnvMinScore); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < -1 || f > 1 {
			return cfg, fmt.Errorf("invalid %s: %q", EnvMinScore, v)
		}
		cfg.MinScore = f
	}

	if v := os.Getenv(EnvCandidateLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid %s: %q", EnvCandidateLimit, v)
		}
		cfg.CandidateLimit = n
	}

	if v := os.Getenv(EnvPrefilterTags); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %q", EnvPrefilterTags, v)
		}
		cfg.PrefilterTags = b
	}

	if v := os.Getenv(EnvCallTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid %s: %q", EnvCallTimeout, v)
		}
		cfg.CallTimeout = d
	}

	return cfg, nil
}
