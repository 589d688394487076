// Package answer owns the boundary to the generation model: prompt
// assembly from retrieved context, the call itself, and post-processing
// of the raw text into course cards for the UI.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/halbot/hal-advisor/internal/handoff"
	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/llm"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

// Generation gets one attempt with a generous timeout. Retrying risks the
// student seeing two different answers to the same question.
const generateTimeout = 15 * time.Second

const caveatFooter = "\n\n_I'm only moderately confident in this answer — please verify with your advisor before acting on it._"

const answerSystemPrompt = `You are HAL, an academic advising assistant for engineering students.
Answer the student's question using ONLY the reference documents provided.
If the documents do not contain the answer, say so plainly instead of guessing.
Be concise and concrete: name courses by code, quote dates exactly, and link
policies to their source when a URL is given. Do not invent courses, dates,
or requirements that are not in the documents.`

// CourseCard is a structured course reference extracted from an answer,
// rendered as a rich card by the chat UI.
type CourseCard struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Result is the generated answer plus its extracted structure.
type Result struct {
	Text        string       `json:"text"`
	CourseCards []CourseCard `json:"course_cards,omitempty"`
}

// Generator calls the generation provider. Escalation turns never reach
// it; the pipeline returns the handoff message instead.
type Generator struct {
	provider llm.Provider
	model    string
}

func NewGenerator(provider llm.Provider, model string) *Generator {
	return &Generator{provider: provider, model: model}
}

// Generate produces the answer for a non-escalated turn. The prompt
// contains the resolved query and the retrieved documents, nothing else.
func (g *Generator) Generate(ctx context.Context, resolvedText string, docs []vectordb.SearchResult, decision handoff.Decision) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(resolvedText, docs)},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if decision.State == handoff.StateCaveat {
		text += caveatFooter
	}

	return &Result{
		Text:        text,
		CourseCards: ExtractCourseCards(text, docs),
	}, nil
}

// buildPrompt lays the retrieved documents out as numbered references
// followed by the student's (resolved) question.
func buildPrompt(resolvedText string, docs []vectordb.SearchResult) string {
	var b strings.Builder
	b.WriteString("Reference documents:\n\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, d.Document.Content)
	}
	b.WriteString("Student question: ")
	b.WriteString(resolvedText)
	return b.String()
}

// ExtractCourseCards finds course codes mentioned in the answer and pairs
// them with the retrieved course documents they came from. A code the
// retrieval pass never saw gets no card; the model may not introduce
// courses on its own.
func ExtractCourseCards(text string, docs []vectordb.SearchResult) []CourseCard {
	mentioned := intent.ExtractCourseCodes(text)
	if len(mentioned) == 0 {
		return nil
	}

	byCode := make(map[string]vectordb.Document)
	for _, d := range docs {
		if d.Document.Metadata.Source == vectordb.SourceCourse && d.Document.Metadata.Code != "" {
			byCode[d.Document.Metadata.Code] = d.Document
		}
	}

	var cards []CourseCard
	for _, code := range mentioned {
		doc, ok := byCode[code]
		if !ok {
			continue
		}
		cards = append(cards, CourseCard{
			Code:        code,
			Name:        doc.Metadata.Name,
			Description: firstSentence(doc.Content),
			URL:         doc.Metadata.URL,
		})
	}
	return cards
}

// firstSentence trims a document body down to card size.
func firstSentence(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, ". "); i > 0 {
		return content[:i+1]
	}
	if len(content) > 200 {
		return content[:200]
	}
	return content
}
