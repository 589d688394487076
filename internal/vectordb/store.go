package vectordb

import "context"

// VectorStore defines the interface for storing and searching documents by embeddings.
type VectorStore interface {
	// AddDocuments adds or updates documents in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search performs a semantic search using the query text.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// Reset removes all documents, so the knowledge base can be re-indexed.
	Reset(ctx context.Context) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of documents in the store.
	Count() int
}
