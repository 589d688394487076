// Package retrieval turns a resolved query into a ranked document set and
// a single quality signal for the confidence aggregator.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/halbot/hal-advisor/internal/config"
	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

// Result is one retrieval pass: the top-k documents in rank order and the
// derived quality score in [0,1].
type Result struct {
	Documents []vectordb.SearchResult
	Score     float64
}

// Ranker queries the vector store wide, re-ranks with a source-type boost
// inferred from intent, and keeps the best k. The boost is a nudge, never
// a hard filter, so an off-type document that matches well still surfaces.
type Ranker struct {
	store vectordb.VectorStore
	cfg   config.RetrievalConfig
}

func NewRanker(store vectordb.VectorStore, cfg config.RetrievalConfig) *Ranker {
	return &Ranker{store: store, cfg: cfg}
}

// preferredSource maps an intent to the document type most likely to hold
// the answer.
func preferredSource(label intent.Label) vectordb.SourceType {
	switch label {
	case intent.LabelPrerequisite, intent.LabelCourseInfo:
		return vectordb.SourceCourse
	case intent.LabelAdvisor:
		return vectordb.SourceAdvisor
	case intent.LabelDeadline:
		return vectordb.SourceDeadline
	case intent.LabelPolicy:
		return vectordb.SourcePolicy
	}
	return ""
}

// Retrieve searches at 3×k depth, boosts documents whose source type
// matches the intent, dedupes by ID, and keeps the top k.
func (r *Ranker) Retrieve(ctx context.Context, resolvedText string, label intent.Label) (*Result, error) {
	hits, err := r.store.Search(ctx, resolvedText, r.cfg.TopK*3, nil)
	if err != nil {
		return nil, fmt.Errorf("searching vector store: %w", err)
	}
	if len(hits) == 0 {
		return &Result{}, nil
	}

	preferred := preferredSource(label)

	type ranked struct {
		hit  vectordb.SearchResult
		rank float64
	}
	seen := make(map[string]bool, len(hits))
	candidates := make([]ranked, 0, len(hits))
	for _, h := range hits {
		if seen[h.Document.ID] {
			continue
		}
		seen[h.Document.ID] = true

		score := float64(h.Similarity)
		if preferred != "" && h.Document.Metadata.Source == preferred {
			score += r.cfg.SourceBoost
		}
		candidates = append(candidates, ranked{hit: h, rank: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rank > candidates[j].rank
	})

	k := r.cfg.TopK
	if len(candidates) < k {
		k = len(candidates)
	}
	docs := make([]vectordb.SearchResult, k)
	for i := 0; i < k; i++ {
		docs[i] = candidates[i].hit
	}

	return &Result{Documents: docs, Score: r.score(docs)}, nil
}

// score derives retrieval quality from the kept documents' raw
// similarities: the top hit, penalized when the top two are too close to
// call and when fewer than two documents clear the similarity floor.
func (r *Ranker) score(docs []vectordb.SearchResult) float64 {
	if len(docs) == 0 {
		return 0
	}

	s := float64(docs[0].Similarity)

	if len(docs) >= 2 {
		gap := float64(docs[0].Similarity) - float64(docs[1].Similarity)
		if gap < 0 {
			gap = -gap
		}
		if gap < r.cfg.AmbiguityEpsilon {
			s *= r.cfg.AmbiguityPenalty
		}
	}

	aboveFloor := 0
	for _, d := range docs {
		if float64(d.Similarity) >= r.cfg.SimilarityFloor {
			aboveFloor++
		}
	}
	if aboveFloor < 2 {
		s *= r.cfg.SparsePenalty
	}

	if s > 1 {
		s = 1
	}
	if s < 0 {
		s = 0
	}
	return s
}
