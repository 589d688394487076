// Package resolver rewrites ambiguous references in a student's message
// ("it", "that class") into the concrete entity the conversation is about,
// using the session's active-entity slot. It is the only writer of that slot.
package resolver

import (
	"regexp"

	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/session"
)

// Substitutable reference markers, longest phrase first so "that class"
// wins over a bare "that".
var markerPatterns = []string{
	"that class",
	"that course",
	"this class",
	"this course",
	"the same one",
	"the same class",
	"the same course",
	"same one",
	"that one",
	"this one",
	"those",
	"them",
	"that",
	"this",
	"it",
}

// Result carries the rewritten query and how sure the resolver is that
// the rewrite reflects what the student meant.
type Result struct {
	ResolvedText string
	Confidence   float64
}

type Resolver struct {
	markers []*regexp.Regexp
}

func New() *Resolver {
	markers := make([]*regexp.Regexp, len(markerPatterns))
	for i, p := range markerPatterns {
		markers[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return &Resolver{markers: markers}
}

// Resolve rewrites the utterance against the session's active entity and
// updates the slot for the next turn. An explicit course code in the
// utterance always wins over history. Resolving an already-resolved text
// a second time yields the same text.
func (r *Resolver) Resolve(utterance string, in intent.Result, sc *session.Context) Result {
	// An explicit entity needs no resolution and becomes the new focus.
	// The last code mentioned wins when there are several.
	if n := len(in.Entities.CourseCodes); n > 0 {
		sc.ActiveEntity = in.Entities.CourseCodes[n-1]
		return Result{ResolvedText: utterance, Confidence: 1.0}
	}

	marker := r.firstMarker(utterance)
	if marker == nil {
		return Result{ResolvedText: utterance, Confidence: 1.0}
	}

	if sc.ActiveEntity == "" {
		// Nothing to substitute with. Leave the text alone and let the
		// confidence aggregator see the uncertainty.
		return Result{ResolvedText: utterance, Confidence: 0.3}
	}

	resolved := utterance
	for _, re := range r.markers {
		resolved = re.ReplaceAllString(resolved, sc.ActiveEntity)
	}
	return Result{ResolvedText: resolved, Confidence: 0.9}
}

func (r *Resolver) firstMarker(utterance string) *regexp.Regexp {
	for _, re := range r.markers {
		if re.MatchString(utterance) {
			return re
		}
	}
	return nil
}

// HasMarker reports whether the text still contains an unresolved
// reference marker.
func (r *Resolver) HasMarker(text string) bool {
	return r.firstMarker(text) != nil
}
