package intent

import "strings"

// Keyword sets for the fast rule-based pass. Rules fire with high
// confidence on unambiguous phrasing; everything else goes to the LLM.
var (
	greetings = map[string]bool{
		"hi": true, "hello": true, "hey": true,
		"hi!": true, "hello!": true, "hey there": true,
		"good morning": true, "good afternoon": true,
	}

	prereqKeywords = []string{
		"prereq",
		"prerequisite",
		"before i take",
		"need to take before",
		"required before",
	}

	advisorKeywords = []string{
		"who is my advisor",
		"my advisor",
		"advisor for",
		"find my advisor",
		"which advisor",
	}

	deadlineKeywords = []string{
		"deadline",
		"last day to",
		"due date",
		"when is the last day",
		"cutoff date",
	}

	policyKeywords = []string{
		"drop a class",
		"drop class",
		"how do i drop",
		"add a class",
		"add class",
		"enroll",
		"refund",
		"waitlist",
		"withdraw",
		"how many units",
		"max units",
		"unit limit",
		"graduation requirement",
		"apply for graduation",
	}

	contextMarkers = []string{
		"that class",
		"that course",
		"the class",
		"the course",
		"it",
		"this",
		"them",
		"those",
		"the same",
		"same one",
		"what about",
		"how about",
	}
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func containsWordMarker(s string, markers []string) bool {
	words := strings.Fields(s)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?")] = true
	}
	for _, m := range markers {
		if strings.Contains(m, " ") {
			if strings.Contains(s, m) {
				return true
			}
		} else if wordSet[m] {
			return true
		}
	}
	return false
}

// Labels a follow-up question may inherit from the previous user turn.
var carryable = map[Label]bool{
	LabelPrerequisite: true,
	LabelCourseInfo:   true,
	LabelAdvisor:      true,
	LabelDeadline:     true,
	LabelPolicy:       true,
}

// ruleClassify attempts fast pattern classification. It returns nil when no
// rule matches with enough confidence to skip the LLM.
func (c *Classifier) ruleClassify(utterance string, prev Label) *Result {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	entities := extractEntities(utterance)

	// Explicit human requests short-circuit everything: never dilute them
	// with an LLM opinion.
	for _, phrase := range c.humanPhrases {
		if strings.Contains(lower, phrase) {
			return &Result{Label: LabelHumanRequest, Entities: entities, Confidence: 1.0}
		}
	}

	if greetings[lower] {
		return &Result{Label: LabelGreeting, Confidence: 0.99}
	}

	if containsAny(lower, prereqKeywords) {
		return &Result{
			Label:        LabelPrerequisite,
			Entities:     entities,
			NeedsContext: len(entities.CourseCodes) == 0,
			Confidence:   0.95,
		}
	}

	if containsAny(lower, advisorKeywords) {
		return &Result{Label: LabelAdvisor, Entities: entities, Confidence: 0.95}
	}

	if containsAny(lower, deadlineKeywords) {
		return &Result{Label: LabelDeadline, Entities: entities, Confidence: 0.95}
	}

	if containsAny(lower, policyKeywords) {
		return &Result{Label: LabelPolicy, Entities: entities, Confidence: 0.95}
	}

	// Follow-up phrasing: inherit the previous question's intent when it
	// is a topic that follow-ups naturally continue.
	if containsWordMarker(lower, contextMarkers) {
		if carryable[prev] {
			return &Result{
				Label:        prev,
				Entities:     entities,
				NeedsContext: len(entities.CourseCodes) == 0,
				Confidence:   0.85,
			}
		}
		return &Result{
			Label:        LabelGeneral,
			Entities:     entities,
			NeedsContext: true,
			Confidence:   0.7,
		}
	}

	// A bare course code with no clear verb is a course-info request.
	if len(entities.CourseCodes) > 0 {
		return &Result{Label: LabelCourseInfo, Entities: entities, Confidence: 0.75}
	}

	return nil
}

// fallbackResult is the safe default when both rules and the LLM fail.
func fallbackResult(utterance string) Result {
	return Result{
		Label:        LabelGeneral,
		Entities:     extractEntities(utterance),
		NeedsContext: true,
		Confidence:   0.3,
	}
}
