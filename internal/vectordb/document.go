package vectordb

// SourceType categorizes the knowledge-base record behind a document.
type SourceType string

const (
	SourceCourse   SourceType = "course"
	SourceAdvisor  SourceType = "advisor"
	SourcePolicy   SourceType = "policy"
	SourceDeadline SourceType = "deadline"
)

// Document represents a piece of knowledge-base content to be stored and searched.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a document.
type DocumentMetadata struct {
	Source   SourceType
	Code     string // course code for course documents, e.g. "CMPE 131"
	Name     string // display name (course title, advisor name, policy category)
	Category string // policy category or deadline type
	Semester string // for deadline documents
	URL      string
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter narrows search results by metadata fields.
type SearchFilter struct {
	Source *SourceType
	Code   *string
}
