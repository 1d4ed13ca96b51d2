// Package recommend implements the hybrid recommendation engine: it
// resolves the set of benefits a profile is rule-eligible for, retrieves
// semantically similar benefits for the query text, and merges both into
// one deterministic ranked list.
//
// The merge is two-tiered. Tier 1 takes vector hits that are inside the
// eligibility whitelist, in descending similarity order. Tier 2 fills the
// remaining slots from the whitelist, ordered by region specificity
// (district, province, nationwide) and then provision type (cash/in-kind
// first); the sort is stable so the result is reproducible. Eligibility is
// a hard gate: an empty whitelist means an empty result no matter how well
// the query matched.
//
// Failure handling is asymmetric on purpose. The semantic tier absorbs
// embedding and vector-search failures by degrading to rule-only ranking;
// the eligibility and detail lookups surface ErrResolverUnavailable and
// ErrDetailResolution so callers can distinguish an outage from a genuine
// empty answer.
package recommend
