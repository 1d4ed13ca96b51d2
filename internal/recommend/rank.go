package recommend

import (
	"sort"
	"strings"

	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// candidate is the transient ranking projection: one benefit identifier
// with its tier tag and, for vector hits, the similarity score. Candidates
// exist only for the duration of one recommendation call.
type candidate struct {
	id         string
	source     types.SourceType
	similarity float64
}

// Region specificity tiers, lower sorts first
const (
	regionTierDistrict   = 0
	regionTierProvince   = 1
	regionTierNationwide = 2
)

// Provision type tiers, lower sorts first
const (
	typeTierCashLike = 0
	typeTierOther    = 1
)

// cashLikeMarkers are the provision-type substrings that indicate a direct
// cash or in-kind benefit
var cashLikeMarkers = []string{"현금", "현물", "cash", "in-kind"}

// ruleKey computes the rule-tier priority key for one benefit against a
// profile. It is a pure function of its arguments: region specificity
// first (district match, province match, nationwide), provision type as
// the tie-break (cash/in-kind before everything else). A blank provision
// type ranks as "other" rather than failing.
func ruleKey(profile types.UserProfile, b store.BenefitSummary) (regionTier, typeTier int) {
	regionTier = regionTierNationwide
	if b.District != "" && b.District == profile.District {
		regionTier = regionTierDistrict
	} else if b.Province != "" && b.Province == profile.Province {
		regionTier = regionTierProvince
	}

	typeTier = typeTierOther
	provisionType := strings.ToLower(b.ProvisionType)
	for _, marker := range cashLikeMarkers {
		if strings.Contains(provisionType, marker) {
			typeTier = typeTierCashLike
			break
		}
	}

	return regionTier, typeTier
}

// mergeRank combines the eligibility whitelist and the semantic retrieval
// output into one deduplicated ordered list of at most topK candidates.
//
// Tier 1 keeps vector hits that are in the whitelist, in retriever order
// (descending similarity). Hits outside the whitelist are dropped: the
// retrieval-time pre-filter should prevent them, but eligibility is
// re-asserted here as the authoritative gate. Tier 2 fills the remaining
// slots from the whitelist ordered by ruleKey; the sort is stable so equal
// keys keep their incoming order. Tier 1 entries are never displaced by
// Tier 2, and an empty whitelist yields an empty result regardless of
// semantic scores.
func mergeRank(whitelist []store.BenefitSummary, scored []store.ScoredBenefit, profile types.UserProfile, topK int) []candidate {
	if topK <= 0 || len(whitelist) == 0 {
		return nil
	}

	eligible := make(map[string]struct{}, len(whitelist))
	for _, w := range whitelist {
		eligible[w.ID] = struct{}{}
	}

	results := make([]candidate, 0, topK)
	seen := make(map[string]struct{}, topK)

	// Tier 1: semantic matches within the eligible set
	for _, sc := range scored {
		if len(results) >= topK {
			break
		}
		if _, ok := eligible[sc.ID]; !ok {
			continue
		}
		if _, ok := seen[sc.ID]; ok {
			continue
		}
		results = append(results, candidate{
			id:         sc.ID,
			source:     types.SourceVector,
			similarity: sc.Similarity,
		})
		seen[sc.ID] = struct{}{}
	}

	// Tier 2: rule-based fill from the remaining whitelist
	if len(results) < topK {
		remaining := make([]store.BenefitSummary, 0, len(whitelist))
		for _, w := range whitelist {
			if _, ok := seen[w.ID]; !ok {
				remaining = append(remaining, w)
			}
		}

		sort.SliceStable(remaining, func(i, j int) bool {
			ri, ti := ruleKey(profile, remaining[i])
			rj, tj := ruleKey(profile, remaining[j])
			if ri != rj {
				return ri < rj
			}
			return ti < tj
		})

		for _, w := range remaining {
			if len(results) >= topK {
				break
			}
			results = append(results, candidate{
				id:     w.ID,
				source: types.SourceRules,
			})
			seen[w.ID] = struct{}{}
		}
	}

	return results
}
