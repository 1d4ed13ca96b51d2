// Package embedder converts free text into fixed-length dense vectors for
// semantic retrieval over benefit descriptions.
//
// Two providers exist: the OpenAI embeddings API (text-embedding-3-small,
// 1536 dimensions, the operational default) and a deterministic local
// provider for offline development and tests. Providers return
// unit-normalized vectors so similarity search reduces to a dot product.
//
// Provider selection happens through environment variables:
//
//  1. If BOKJI_EMBEDDING_PROVIDER is set, that provider is used
//  2. Else if OPENAI_API_KEY is set, OpenAI is used
//  3. Else the local provider is used (offline mode)
//
// Remote calls go through an in-memory LRU cache keyed by content hash and
// retry with exponential backoff on transient failures. An empty input text
// is rejected with ErrEmptyText; it is the caller's job to treat an absent
// query as "no semantic search requested" rather than an error.
package embedder
