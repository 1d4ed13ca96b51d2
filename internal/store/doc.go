// Package store persists welfare-benefit records and their embeddings in
// SQLite and answers the two scoped queries the recommendation engine is
// built on: the rule-eligibility whitelist and profile-pre-filtered vector
// similarity search.
//
// Both queries share one SQL predicate (see eligibilityClause) so that a
// regionally scoped record can never be crowded out of retrieval by a
// higher-scoring but ineligible nationwide record.
//
// Two build modes exist, selected by build tags: a cgo build using
// github.com/mattn/go-sqlite3 with the sqlite-vec extension for SQL-side
// cosine distance, and a pure Go build using modernc.org/sqlite that
// computes similarity in Go over the pre-filtered candidate set.
//
// Writes (upserts, soft deletes, embeddings) belong to the ingestion
// pipeline; the engine itself only reads.
package store
