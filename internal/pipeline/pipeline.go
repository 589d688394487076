// Package pipeline wires the per-turn stages together and owns the sole
// inbound operation, HandleTurn. Stage order is fixed: classify, resolve,
// retrieve, score, decide, then either generate or hand off.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/halbot/hal-advisor/internal/answer"
	"github.com/halbot/hal-advisor/internal/confidence"
	"github.com/halbot/hal-advisor/internal/handoff"
	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/resolver"
	"github.com/halbot/hal-advisor/internal/retrieval"
	"github.com/halbot/hal-advisor/internal/session"
)

const greetingReply = "Hi! I'm HAL, your academic advising assistant. Ask me about courses, prerequisites, deadlines, policies, or finding your advisor."

// SourceRef points at a knowledge-base record that backed an answer.
type SourceRef struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// TurnResult is the structured response for one completed turn.
type TurnResult struct {
	Answer          string               `json:"answer"`
	ResolvedQuery   string               `json:"resolved_query"`
	IntentLabel     intent.Label         `json:"intent_label"`
	ConfidenceScore float64              `json:"confidence_score"`
	ConfidenceLevel confidence.Level     `json:"confidence_level"`
	Breakdown       confidence.Breakdown `json:"breakdown"`
	Escalate        bool                 `json:"escalate"`
	Reason          handoff.Reason       `json:"escalation_reason,omitempty"`
	CourseCards     []answer.CourseCard  `json:"course_cards,omitempty"`
	Sources         []SourceRef          `json:"sources,omitempty"`
}

// Pipeline holds the per-turn stages. All stages are constructed once at
// startup; a Pipeline is safe for concurrent use across sessions.
type Pipeline struct {
	classifier *intent.Classifier
	resolver   *resolver.Resolver
	ranker     *retrieval.Ranker
	scorer     *confidence.Scorer
	decider    *handoff.Decider
	generator  *answer.Generator
	sessions   *session.Manager
	maxMsgLen  int
}

func New(
	classifier *intent.Classifier,
	res *resolver.Resolver,
	ranker *retrieval.Ranker,
	scorer *confidence.Scorer,
	decider *handoff.Decider,
	generator *answer.Generator,
	sessions *session.Manager,
	maxMsgLen int,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		resolver:   res,
		ranker:     ranker,
		scorer:     scorer,
		decider:    decider,
		generator:  generator,
		sessions:   sessions,
		maxMsgLen:  maxMsgLen,
	}
}

// HandleTurn runs one user message through the full pipeline. Turns for
// the same session are serialized; the turn pair is appended to history
// only after every stage has completed, so an aborted run leaves no trace.
func (p *Pipeline) HandleTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ContentError{Reason: "message is empty"}
	}
	if len(message) > p.maxMsgLen {
		return nil, &ContentError{Reason: fmt.Sprintf("message exceeds %d characters", p.maxMsgLen)}
	}
	if sessionID == "" {
		return nil, &ContentError{Reason: "session id is required"}
	}

	unlock := p.sessions.Lock(sessionID)
	defer unlock()

	sc, err := p.sessions.Context(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	in := p.classifier.Classify(ctx, message, intent.Label(sc.LastIntent()))
	res := p.resolver.Resolve(message, in, sc)

	if in.Label == intent.LabelGreeting {
		return p.commitTurn(ctx, sc, message, in, res.ResolvedText, TurnResult{
			Answer:          greetingReply,
			ResolvedQuery:   res.ResolvedText,
			IntentLabel:     in.Label,
			ConfidenceScore: 1.0,
			ConfidenceLevel: confidence.LevelHigh,
		})
	}

	ret, err := p.ranker.Retrieve(ctx, res.ResolvedText, in.Label)
	if err != nil {
		// A dead vector index degrades to zero documents; the handoff
		// rules then escalate deterministically instead of failing the turn.
		log.Printf("pipeline: retrieval failed for session %s: %v", sessionID, err)
		ret = &retrieval.Result{}
	}

	breakdown := p.scorer.Score(ret.Score, in.Confidence, res.Confidence, len(ret.Documents))

	decision := p.decider.Decide(handoff.Signals{
		IntentLabel:  in.Label,
		Utterance:    message,
		ResolvedText: res.ResolvedText,
		DocCount:     len(ret.Documents),
		FinalScore:   breakdown.FinalScore,
	})

	result := TurnResult{
		ResolvedQuery:   res.ResolvedText,
		IntentLabel:     in.Label,
		ConfidenceScore: breakdown.FinalScore,
		ConfidenceLevel: breakdown.Level,
		Breakdown:       breakdown,
		Escalate:        decision.Escalate,
		Reason:          decision.Reason,
	}

	if decision.Escalate {
		// The generator is never called on escalation paths.
		result.Answer = decision.Message
	} else {
		gen, err := p.generator.Generate(ctx, res.ResolvedText, ret.Documents, decision)
		if err != nil {
			return nil, fmt.Errorf("answering turn for session %s: %w", sessionID, err)
		}
		result.Answer = gen.Text
		result.CourseCards = gen.CourseCards
		for _, d := range ret.Documents {
			result.Sources = append(result.Sources, SourceRef{
				Type: string(d.Document.Metadata.Source),
				Name: d.Document.Metadata.Name,
				URL:  d.Document.Metadata.URL,
			})
		}
	}

	return p.commitTurn(ctx, sc, message, in, res.ResolvedText, result)
}

// commitTurn appends the user/assistant turn pair and persists the active
// entity in one step.
func (p *Pipeline) commitTurn(ctx context.Context, sc *session.Context, message string, in intent.Result, resolvedText string, result TurnResult) (*TurnResult, error) {
	err := p.sessions.Commit(ctx, sc,
		session.Turn{
			SessionID:       sc.SessionID,
			Role:            session.RoleUser,
			Content:         message,
			ResolvedContent: resolvedText,
			Intent:          string(in.Label),
			Confidence:      result.ConfidenceScore,
			Escalated:       result.Escalate,
		},
		session.Turn{
			SessionID: sc.SessionID,
			Role:      session.RoleAssistant,
			Content:   result.Answer,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("recording turn for session %s: %w", sc.SessionID, err)
	}
	return &result, nil
}

// ClearSession wipes a session's history and context on an explicit
// "clear history" request.
func (p *Pipeline) ClearSession(ctx context.Context, sessionID string) error {
	unlock := p.sessions.Lock(sessionID)
	defer unlock()
	return p.sessions.Clear(ctx, sessionID)
}
