package store

import (
	"context"
	"fmt"

	"github.com/ddoksuni/bokji/pkg/types"
)

// eligibilityClause builds the SQL predicate deciding whether an active
// benefit record matches a user profile. The same predicate backs both the
// whitelist query and the retrieval-time pre-filter so regionally scoped
// results are never starved by ineligible nationwide matches.
//
// Region semantics: a blank record province means nationwide; a record with
// a district requires the profile district to match when the profile carries
// one. Blank profile fields and empty tag lists are unconstrained. A record
// with an empty tag set applies to every profile on that dimension.
func eligibilityClause(profile types.UserProfile, includeTags bool) (string, []interface{}) {
	clause := "b.is_active = 1"
	var args []interface{}

	if profile.Province != "" {
		clause += ` AND (b.province = '' OR (b.province = ? AND (b.district = '' OR ? = '' OR b.district = ?)))`
		args = append(args, profile.Province, profile.District, profile.District)
	}

	if includeTags {
		clause, args = appendTagClause(clause, args, "b.life_stages", profile.LifeStages)
		clause, args = appendTagClause(clause, args, "b.target_groups", profile.TargetGroups)
	}

	return clause, args
}

// appendTagClause adds a non-empty-intersection test between a stored
// comma-delimited tag set and the profile's tags. No profile tags, no clause.
func appendTagClause(clause string, args []interface{}, column string, tags []string) (string, []interface{}) {
	if len(tags) == 0 {
		return clause, args
	}

	clause += ` AND (` + column + ` = ''`
	for _, tag := range tags {
		clause += ` OR (',' || ` + column + ` || ',') LIKE ?`
		args = append(args, "%,"+tag+",%")
	}
	clause += `)`

	return clause, args
}

// listEligible returns every active benefit the profile is rule-eligible
// for, evaluated server-side as a single filtering query. The candidate
// volume can run to thousands of records, so post-filtering a full table
// scan in the caller is not an option here.
func listEligible(ctx context.Context, q querier, profile types.UserProfile) ([]BenefitSummary, error) {
	clause, args := eligibilityClause(profile, true)

	query := `
		SELECT b.id, b.name, b.province, b.district, b.provision_type
		FROM benefits b
		WHERE ` + clause + `
		ORDER BY b.id
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible benefits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []BenefitSummary
	for rows.Next() {
		var s BenefitSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Province, &s.District, &s.ProvisionType); err != nil {
			return nil, fmt.Errorf("failed to scan eligible benefit: %w", err)
		}
		results = append(results, s)
	}

	return results, rows.Err()
}
