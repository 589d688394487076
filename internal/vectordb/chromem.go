package vectordb

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/halbot/hal-advisor/internal/embeddings"
)

const collectionName = "hal_advising"

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore backed by the given embedder.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	ef := embeddings.ToChromemFunc(embedder)
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemStore{db: db, collection: col, embedFunc: ef}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(collectionName, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(dir+"/chromem.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap converts DocumentMetadata to a flat map[string]string for chromem.
func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"source":   string(m.Source),
		"code":     m.Code,
		"name":     m.Name,
		"category": m.Category,
		"semester": m.Semester,
		"url":      m.URL,
	}
}

// mapToMetadata converts a flat map[string]string back to DocumentMetadata.
func mapToMetadata(m map[string]string) DocumentMetadata {
	return DocumentMetadata{
		Source:   SourceType(m["source"]),
		Code:     m["code"],
		Name:     m["name"],
		Category: m["category"],
		Semester: m["semester"],
		URL:      m["url"],
	}
}

// buildWhereClause converts a SearchFilter to a chromem where clause.
func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}

	where := make(map[string]string)
	if filter.Source != nil {
		where["source"] = string(*filter.Source)
	}
	if filter.Code != nil {
		where["code"] = *filter.Code
	}

	if len(where) == 0 {
		return nil
	}
	return where
}
