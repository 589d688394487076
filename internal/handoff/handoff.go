// Package handoff decides, per turn, whether the bot answers, answers with
// a caveat, or hands the student to a human advisor. The rules are an
// ordered list evaluated first-match-wins, so tests can enumerate them and
// the priority order is visible in one place.
package handoff

import (
	"fmt"
	"strings"

	"github.com/halbot/hal-advisor/internal/config"
	"github.com/halbot/hal-advisor/internal/intent"
)

// State is the terminal decision for one turn.
type State string

const (
	StateAnswer   State = "answer"
	StateCaveat   State = "answer_with_caveat"
	StateEscalate State = "escalate"
)

// Reason explains an escalation.
type Reason string

const (
	ReasonHumanRequested Reason = "user_requested_human"
	ReasonSensitiveTopic Reason = "sensitive_topic"
	ReasonNoDocuments    Reason = "no_relevant_documents"
	ReasonLowConfidence  Reason = "low_confidence"
)

// Signals are the current turn's inputs to the decision. The decider is a
// pure function of these; nothing carries over between turns.
type Signals struct {
	IntentLabel  intent.Label
	Utterance    string
	ResolvedText string
	DocCount     int
	FinalScore   float64
}

// Decision is the outcome for one turn.
type Decision struct {
	State     State  `json:"state"`
	Escalate  bool   `json:"escalate"`
	Reason    Reason `json:"reason,omitempty"`
	SubReason string `json:"sub_reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

type rule struct {
	name    string
	matches func(Signals) (Decision, bool)
}

// Decider evaluates the rule chain.
type Decider struct {
	rules      []rule
	bookingURL string
	sensitive  map[string][]string
	mediumMin  float64
	highMin    float64
}

func NewDecider(cfg config.HandoffConfig, conf config.ConfidenceConfig) *Decider {
	d := &Decider{
		bookingURL: cfg.BookingURL,
		sensitive:  lowerTopics(cfg.SensitiveTopics),
		mediumMin:  conf.MediumThreshold,
		highMin:    conf.HighThreshold,
	}
	d.rules = []rule{
		{name: "human_request", matches: d.humanRequest},
		{name: "sensitive_topic", matches: d.sensitiveTopic},
		{name: "no_documents", matches: d.noDocuments},
		{name: "low_confidence", matches: d.lowConfidence},
		{name: "medium_confidence", matches: d.mediumConfidence},
	}
	return d
}

// Decide walks the rules in priority order. When none fires, the turn is
// a plain answer.
func (d *Decider) Decide(s Signals) Decision {
	for _, r := range d.rules {
		if dec, ok := r.matches(s); ok {
			return dec
		}
	}
	return Decision{State: StateAnswer}
}

func (d *Decider) humanRequest(s Signals) (Decision, bool) {
	if s.IntentLabel != intent.LabelHumanRequest {
		return Decision{}, false
	}
	return Decision{
		State:    StateEscalate,
		Escalate: true,
		Reason:   ReasonHumanRequested,
		Message:  d.message(ReasonHumanRequested, ""),
	}, true
}

func (d *Decider) sensitiveTopic(s Signals) (Decision, bool) {
	text := strings.ToLower(s.Utterance + " " + s.ResolvedText)
	for category, phrases := range d.sensitive {
		for _, p := range phrases {
			if strings.Contains(text, p) {
				return Decision{
					State:     StateEscalate,
					Escalate:  true,
					Reason:    ReasonSensitiveTopic,
					SubReason: category,
					Message:   d.message(ReasonSensitiveTopic, category),
				}, true
			}
		}
	}
	return Decision{}, false
}

func (d *Decider) noDocuments(s Signals) (Decision, bool) {
	if s.DocCount > 0 {
		return Decision{}, false
	}
	return Decision{
		State:    StateEscalate,
		Escalate: true,
		Reason:   ReasonNoDocuments,
		Message:  d.message(ReasonNoDocuments, ""),
	}, true
}

func (d *Decider) lowConfidence(s Signals) (Decision, bool) {
	if s.FinalScore >= d.mediumMin {
		return Decision{}, false
	}
	return Decision{
		State:    StateEscalate,
		Escalate: true,
		Reason:   ReasonLowConfidence,
		Message:  d.message(ReasonLowConfidence, ""),
	}, true
}

func (d *Decider) mediumConfidence(s Signals) (Decision, bool) {
	if s.FinalScore >= d.highMin {
		return Decision{}, false
	}
	return Decision{State: StateCaveat}, true
}

// message builds the templated handoff text for an escalation reason.
func (d *Decider) message(reason Reason, category string) string {
	booking := fmt.Sprintf("You can book an appointment with an advisor here: %s", d.bookingURL)
	switch reason {
	case ReasonHumanRequested:
		return "Of course — let me connect you with a human advisor. " + booking
	case ReasonSensitiveTopic:
		return fmt.Sprintf("This sounds like a %s question that deserves personal attention from an advisor rather than an automated answer. %s",
			strings.ReplaceAll(category, "_", " "), booking)
	case ReasonNoDocuments:
		return "I couldn't find anything in my knowledge base that addresses this, so I'd rather not guess. " + booking
	case ReasonLowConfidence:
		return "I'm not confident I can answer this accurately, and a wrong answer could cost you time. " + booking
	}
	return booking
}

// RuleNames returns the evaluation order, for tests and diagnostics.
func (d *Decider) RuleNames() []string {
	names := make([]string, len(d.rules))
	for i, r := range d.rules {
		names[i] = r.name
	}
	return names
}

func lowerTopics(topics map[string][]string) map[string][]string {
	out := make(map[string][]string, len(topics))
	for category, phrases := range topics {
		lowered := make([]string, len(phrases))
		for i, p := range phrases {
			lowered[i] = strings.ToLower(p)
		}
		out[category] = lowered
	}
	return out
}
