package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/halbot/hal-advisor/internal/llm"
)

const (
	classifyTimeout = 2 * time.Second
	classifyRetries = 1
)

const systemPrompt = `You classify a student's message to an academic advising assistant.

Respond with a single JSON object and nothing else:
{"label": "<label>", "needs_context": <bool>, "confidence": <0.0-1.0>}

Labels:
- prerequisite_inquiry: asking what is required before taking a course
- course_info: asking about a course's content, units, or description
- advisor_lookup: asking who their advisor is or how to reach one
- deadline_inquiry: asking about dates (add/drop, withdrawal, graduation application)
- policy_inquiry: asking about university rules and procedures
- greeting: a greeting with no question
- general_question: anything else advising-related
- human_request: explicitly asking for a human or expressing the assistant is not helping

Set needs_context true when the message refers to something from earlier
in the conversation ("that class", "what about it") without naming it.`

// Classifier assigns an intent label to each utterance. A rule pass
// handles unambiguous phrasing; the rest goes to a small LLM with a short
// timeout. Classification never fails a turn: on any error the result
// degrades to a low-confidence general_question.
type Classifier struct {
	provider     llm.Provider
	model        string
	humanPhrases []string
}

func NewClassifier(provider llm.Provider, model string, humanPhrases []string) *Classifier {
	lowered := make([]string, len(humanPhrases))
	for i, p := range humanPhrases {
		lowered[i] = strings.ToLower(p)
	}
	return &Classifier{provider: provider, model: model, humanPhrases: lowered}
}

// Classify labels one utterance. prev is the intent of the previous user
// turn ("" for a fresh session); follow-up questions may inherit it.
func (c *Classifier) Classify(ctx context.Context, utterance string, prev Label) Result {
	if r := c.ruleClassify(utterance, prev); r != nil {
		return *r
	}
	if c.provider == nil {
		return fallbackResult(utterance)
	}

	var lastErr error
	for attempt := 0; attempt <= classifyRetries; attempt++ {
		r, err := c.llmClassify(ctx, utterance)
		if err == nil {
			return r
		}
		lastErr = err
	}

	log.Printf("intent: classification failed, degrading to general_question: %v", lastErr)
	return fallbackResult(utterance)
}

type llmVerdict struct {
	Label        string  `json:"label"`
	NeedsContext bool    `json:"needs_context"`
	Confidence   float64 `json:"confidence"`
}

func (c *Classifier) llmClassify(ctx context.Context, utterance string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: utterance},
		},
		MaxTokens:   128,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("classifying intent: %w", err)
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &v); err != nil {
		return Result{}, fmt.Errorf("parsing classifier output: %w", err)
	}

	label := Label(v.Label)
	if !validLabels[label] {
		return Result{}, fmt.Errorf("classifier returned unknown label %q", v.Label)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return Result{}, fmt.Errorf("classifier confidence %v out of range", v.Confidence)
	}

	return Result{
		Label:        label,
		Entities:     extractEntities(utterance),
		NeedsContext: v.NeedsContext,
		Confidence:   v.Confidence,
	}, nil
}

// extractJSON tolerates models that wrap the object in prose or fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
