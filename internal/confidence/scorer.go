// Package confidence folds the pipeline's per-turn signals into a single
// score and a discrete level. The scorer is pure: same inputs, same output.
package confidence

import (
	"fmt"
	"math"

	"github.com/halbot/hal-advisor/internal/config"
)

// Level buckets a final score for display and decision making.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Breakdown records every component that went into a final score, so the
// admin UI and the logs can show why a turn scored the way it did.
type Breakdown struct {
	RetrievalScore  float64 `json:"retrieval_score"`
	IntentScore     float64 `json:"intent_score"`
	ResolutionScore float64 `json:"resolution_score"`
	CoverageScore   float64 `json:"coverage_score"`
	FinalScore      float64 `json:"final_score"`
	Level           Level   `json:"level"`
}

// Scorer computes confidence breakdowns. Construction validates the
// weight configuration once so per-turn scoring can never fail.
type Scorer struct {
	cfg       config.ConfidenceConfig
	expectedK int
}

// NewScorer fails when the four weights do not sum to 1.0 or the level
// thresholds are not ordered 0 < medium < high < 1.
func NewScorer(cfg config.ConfidenceConfig, expectedK int) (*Scorer, error) {
	sum := cfg.RetrievalWeight + cfg.IntentWeight + cfg.ResolutionWeight + cfg.CoverageWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("confidence weights sum to %v, want 1.0", sum)
	}
	if cfg.MediumThreshold <= 0 || cfg.MediumThreshold >= cfg.HighThreshold || cfg.HighThreshold >= 1 {
		return nil, fmt.Errorf("confidence thresholds medium=%v high=%v not ordered", cfg.MediumThreshold, cfg.HighThreshold)
	}
	if expectedK <= 0 {
		return nil, fmt.Errorf("expected document count %d must be positive", expectedK)
	}
	return &Scorer{cfg: cfg, expectedK: expectedK}, nil
}

// Score combines retrieval quality, intent confidence, resolution
// confidence, and document coverage into one breakdown. Inputs are
// clamped to [0,1] first, so the final score always lands in [0,1].
func (s *Scorer) Score(retrievalScore, intentConfidence, resolutionConfidence float64, docCount int) Breakdown {
	b := Breakdown{
		RetrievalScore:  clamp01(retrievalScore),
		IntentScore:     clamp01(intentConfidence),
		ResolutionScore: clamp01(resolutionConfidence),
		CoverageScore:   clamp01(float64(docCount) / float64(s.expectedK)),
	}

	b.FinalScore = s.cfg.RetrievalWeight*b.RetrievalScore +
		s.cfg.IntentWeight*b.IntentScore +
		s.cfg.ResolutionWeight*b.ResolutionScore +
		s.cfg.CoverageWeight*b.CoverageScore

	switch {
	case b.FinalScore >= s.cfg.HighThreshold:
		b.Level = LevelHigh
	case b.FinalScore >= s.cfg.MediumThreshold:
		b.Level = LevelMedium
	default:
		b.Level = LevelLow
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
