// Package types defines the shared domain types of the recommendation
// engine: the user eligibility profile, the welfare-benefit record, and
// the tagged recommendation result.
//
// These types carry no behavior beyond validation; all ranking and
// retrieval logic lives in internal packages.
package types
