// Package ingest maintains the benefit store and its vector index: it
// upserts records collected from government APIs, embeds their
// descriptive text in batches, and soft-deletes records that have
// disappeared from the source.
package ingest
