package types

import "time"

// SourceType tags which ranking tier produced a recommendation
type SourceType string

const (
	// SourceVector marks a semantic (vector similarity) match
	SourceVector SourceType = "VECTOR"
	// SourceRules marks a rule-based eligibility fill
	SourceRules SourceType = "RULES"
)

// UserProfile describes the eligibility profile collected during onboarding.
// Blank strings and empty slices mean "unconstrained", never "match nothing".
// The profile is immutable for the duration of one recommendation call.
type UserProfile struct {
	Province     string   // e.g. "서울특별시"; blank = no regional preference
	District     string   // e.g. "은평구"; blank = no district preference
	LifeStages   []string // e.g. "청년", "노년"; empty = all life stages
	TargetGroups []string // e.g. "저소득", "장애인"; empty = all target groups
}

// Benefit is a full welfare-benefit record as maintained by the ingestion
// pipeline. The engine only ever reads active records.
type Benefit struct {
	ID            string // Stable government service key
	Name          string
	Summary       string // Short description, used for embedding
	Description   string
	Province      string // Blank = nationwide
	District      string // Blank = province-wide (or nationwide if Province blank)
	ProvisionType string // e.g. "현금", "현물", "이용권"; blank = unclassified
	LifeStages    []string
	TargetGroups  []string
	SourceURL     string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recommendation is one entry of the final ranked result list
type Recommendation struct {
	Benefit    Benefit
	Source     SourceType
	Similarity float64 // Only meaningful when Source == SourceVector
}

// Validate checks if the recommendation is well-formed
func (r *Recommendation) Validate() error {
	if r.Benefit.ID == "" {
		return ErrInvalidBenefitID
	}

	if r.Source != SourceVector && r.Source != SourceRules {
		return ErrInvalidSourceType
	}

	if r.Source == SourceVector && (r.Similarity < -1 || r.Similarity > 1) {
		return ErrInvalidSimilarity
	}

	return nil
}

// Life-stage age boundaries (inclusive upper bounds)
var lifeStageBounds = []struct {
	maxAge int
	stage  string
}{
	{5, "영유아"},
	{12, "아동"},
	{18, "청소년"},
	{34, "청년"},
	{64, "중장년"},
}

// LifeStagesForBirthYear maps a birth year to its life-stage bucket,
// for callers whose onboarding stores a birth year instead of stages.
// Returns nil for birth years in the future.
func LifeStagesForBirthYear(birthYear int, now time.Time) []string {
	age := now.Year() - birthYear
	if age < 0 {
		return nil
	}

	for _, b := range lifeStageBounds {
		if age <= b.maxAge {
			return []string{b.stage}
		}
	}
	return []string{"노년"}
}
