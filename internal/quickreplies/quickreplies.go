// Package quickreplies suggests follow-up taps for the chat UI based on
// the intent of the last exchange.
package quickreplies

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/llm"
)

const (
	maxReplies      = 4
	generateTimeout = 2 * time.Second
)

// defaults are the canned suggestions per intent. They are the fallback
// when no fast model is configured or generation fails.
var defaults = map[intent.Label][]string{
	intent.LabelGreeting: {
		"What are the prerequisites for CMPE 131?",
		"Who is my advisor?",
		"When is the drop deadline?",
		"How do I add a class?",
	},
	intent.LabelPrerequisite: {
		"How many units is it?",
		"When is it offered?",
		"What comes after this course?",
	},
	intent.LabelCourseInfo: {
		"What are the prerequisites?",
		"How many units is it?",
		"When is it offered?",
	},
	intent.LabelAdvisor: {
		"How do I book an appointment?",
		"What are the drop-in hours?",
	},
	intent.LabelDeadline: {
		"What happens if I miss it?",
		"Are there other deadlines this semester?",
	},
	intent.LabelPolicy: {
		"Who do I contact about this?",
		"Where is the official policy page?",
	},
}

var generic = []string{
	"Tell me about a course",
	"Who is my advisor?",
	"Show me important deadlines",
}

const generatePrompt = `Given the last exchange in an academic advising chat, suggest up to %d short follow-up questions the student is likely to ask next.
Respond with a JSON array of strings and nothing else.

Student: %s
Assistant: %s`

// Suggester produces quick replies. With a nil provider it serves the
// canned defaults only.
type Suggester struct {
	provider llm.Provider
	model    string
}

func NewSuggester(provider llm.Provider, model string) *Suggester {
	return &Suggester{provider: provider, model: model}
}

// Defaults returns the canned suggestions for an intent.
func Defaults(label intent.Label) []string {
	if r, ok := defaults[label]; ok {
		return r
	}
	return generic
}

// Suggest returns follow-up suggestions for the completed exchange. It
// degrades to the canned defaults on any generation problem, same policy
// as the intent classifier.
func (s *Suggester) Suggest(ctx context.Context, label intent.Label, question, answerText string) []string {
	if s.provider == nil || question == "" {
		return Defaults(label)
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(generatePrompt, maxReplies, question, answerText)},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("quickreplies: generation failed, using defaults: %v", err)
		return Defaults(label)
	}

	replies := parseReplies(resp.Content)
	if len(replies) == 0 {
		return Defaults(label)
	}
	return replies
}

func parseReplies(content string) []string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil
	}

	var replies []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &replies); err != nil {
		return nil
	}
	if len(replies) > maxReplies {
		replies = replies[:maxReplies]
	}
	return replies
}
