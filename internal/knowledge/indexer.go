package knowledge

import (
	"context"
	"fmt"

	"github.com/halbot/hal-advisor/internal/vectordb"
)

// Indexer embeds every knowledge-base record into the vector store.
type Indexer struct {
	store  *Store
	vector vectordb.VectorStore
}

// NewIndexer creates an indexer over the given stores.
func NewIndexer(store *Store, vector vectordb.VectorStore) *Indexer {
	return &Indexer{store: store, vector: vector}
}

// CollectDocuments loads all records and renders them as documents.
func (ix *Indexer) CollectDocuments(ctx context.Context) ([]vectordb.Document, error) {
	var docs []vectordb.Document

	courses, err := ix.store.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	for _, c := range courses {
		docs = append(docs, c.Document())
	}

	advisors, err := ix.store.ListAdvisors(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing advisors: %w", err)
	}
	for _, a := range advisors {
		docs = append(docs, a.Document())
	}

	policies, err := ix.store.ListPolicies(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing policies: %w", err)
	}
	for _, p := range policies {
		docs = append(docs, p.Document())
	}

	deadlines, err := ix.store.ListDeadlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing deadlines: %w", err)
	}
	for _, d := range deadlines {
		docs = append(docs, d.Document())
	}

	return docs, nil
}

// IndexAll rebuilds the vector index from the knowledge base. The progress
// callback, if non-nil, is invoked once per indexed document.
func (ix *Indexer) IndexAll(ctx context.Context, progress func()) (int, error) {
	docs, err := ix.CollectDocuments(ctx)
	if err != nil {
		return 0, err
	}

	if err := ix.vector.Reset(ctx); err != nil {
		return 0, fmt.Errorf("resetting vector store: %w", err)
	}

	// Add one at a time so progress reporting tracks embedding calls.
	for _, doc := range docs {
		if err := ix.vector.AddDocuments(ctx, []vectordb.Document{doc}); err != nil {
			return 0, fmt.Errorf("indexing %s: %w", doc.ID, err)
		}
		if progress != nil {
			progress()
		}
	}

	return len(docs), nil
}
