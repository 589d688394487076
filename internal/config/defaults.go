package config

// classifierPresets maps each provider to its fast classification model.
var classifierPresets = map[ProviderType]string{
	ProviderAnthropic: "claude-3-5-haiku-20241022",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderOllama:    "llama3.1:8b",
}

// mainPresets maps each provider to its default answer-generation model.
var mainPresets = map[ProviderType]string{
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderOpenAI:    "gpt-4o",
	ProviderOllama:    "llama3.1:8b",
}

// DefaultHumanRequestPhrases trigger an immediate handoff, bypassing
// classification and retrieval entirely.
var DefaultHumanRequestPhrases = []string{
	"talk to a human",
	"talk to an advisor",
	"speak to someone",
	"speak with someone",
	"real person",
	"human advisor",
	"contact advisor",
	"not helpful",
	"you're not helping",
	"actual help",
}

// DefaultSensitiveTopics maps escalation sub-reason categories to the
// phrases that trigger them. Keys must match handoff reason names.
var DefaultSensitiveTopics = map[string][]string{
	"academic_standing": {
		"academic probation",
		"probation",
		"disqualified",
		"dismissed",
		"expelled",
	},
	"appeals_or_exceptions": {
		"appeal",
		"exception",
		"waiver",
		"petition",
		"special circumstance",
	},
	"disciplinary": {
		"academic integrity",
		"cheating",
		"plagiarism",
		"misconduct",
	},
	"personal_situation": {
		"disability",
		"accommodation",
		"medical",
		"mental health",
		"emergency",
		"crisis",
	},
	"financial_hardship": {
		"financial aid",
		"financial hardship",
		"scholarship",
		"can't afford",
		"tuition assistance",
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOllama,
		Model:             mainPresets[ProviderOllama],
		ClassifierModel:   classifierPresets[ProviderOllama],
		EmbeddingProvider: ProviderOllama,
		EmbeddingModel:    "nomic-embed-text",
		DataDir:           "data",
		Port:              5001,
		Retrieval: RetrievalConfig{
			TopK:             5,
			SourceBoost:      0.1,
			AmbiguityEpsilon: 0.05,
			AmbiguityPenalty: 0.85,
			SimilarityFloor:  0.3,
			SparsePenalty:    0.8,
		},
		Confidence: ConfidenceConfig{
			RetrievalWeight:  0.40,
			IntentWeight:     0.25,
			ResolutionWeight: 0.15,
			CoverageWeight:   0.20,
			HighThreshold:    0.7,
			MediumThreshold:  0.4,
		},
		Handoff: HandoffConfig{
			BookingURL:          "https://sjsu.campus.eab.com/student/appointments/new",
			HumanRequestPhrases: DefaultHumanRequestPhrases,
			SensitiveTopics:     DefaultSensitiveTopics,
		},
		Session: SessionConfig{
			HistoryWindow:  8,
			TimeoutMinutes: 30,
			MaxMessageLen:  2000,
		},
	}
}

// ClassifierPreset returns the fast classifier model for the given provider.
func ClassifierPreset(provider ProviderType) string {
	if m, ok := classifierPresets[provider]; ok {
		return m
	}
	return classifierPresets[ProviderOllama]
}

// MainPreset returns the default generation model for the given provider.
func MainPreset(provider ProviderType) string {
	if m, ok := mainPresets[provider]; ok {
		return m
	}
	return mainPresets[ProviderOllama]
}
