package intent

// Label is a coarse user-intent category.
type Label string

const (
	LabelPrerequisite Label = "prerequisite_inquiry"
	LabelCourseInfo   Label = "course_info"
	LabelAdvisor      Label = "advisor_lookup"
	LabelDeadline     Label = "deadline_inquiry"
	LabelPolicy       Label = "policy_inquiry"
	LabelGreeting     Label = "greeting"
	LabelGeneral      Label = "general_question"
	LabelHumanRequest Label = "human_request"
)

// validLabels is the set of labels the LLM is allowed to return.
var validLabels = map[Label]bool{
	LabelPrerequisite: true,
	LabelCourseInfo:   true,
	LabelAdvisor:      true,
	LabelDeadline:     true,
	LabelPolicy:       true,
	LabelGreeting:     true,
	LabelGeneral:      true,
	LabelHumanRequest: true,
}

// Entities holds structured values extracted from an utterance.
type Entities struct {
	CourseCodes []string `json:"course_codes,omitempty"` // normalized "DEPT NUM"
	LastName    string   `json:"last_name,omitempty"`
	Date        string   `json:"date,omitempty"`
}

// Empty reports whether no entities were extracted.
func (e Entities) Empty() bool {
	return len(e.CourseCodes) == 0 && e.LastName == "" && e.Date == ""
}

// Result is the classifier's output for one utterance. Produced fresh per
// turn and never persisted beyond it.
type Result struct {
	Label        Label    `json:"label"`
	Entities     Entities `json:"entities"`
	NeedsContext bool     `json:"needs_context"`
	Confidence   float64  `json:"confidence"`
}
