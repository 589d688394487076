package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level hal configuration, corresponding to hal.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	ClassifierModel   string       `yaml:"classifier_model" koanf:"classifier_model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	Port    int    `yaml:"port" koanf:"port"`

	Retrieval  RetrievalConfig  `yaml:"retrieval" koanf:"retrieval"`
	Confidence ConfidenceConfig `yaml:"confidence" koanf:"confidence"`
	Handoff    HandoffConfig    `yaml:"handoff" koanf:"handoff"`
	Session    SessionConfig    `yaml:"session" koanf:"session"`
}

// RetrievalConfig tunes the retrieval ranker.
type RetrievalConfig struct {
	TopK             int     `yaml:"top_k" koanf:"top_k"`
	SourceBoost      float64 `yaml:"source_boost" koanf:"source_boost"`
	AmbiguityEpsilon float64 `yaml:"ambiguity_epsilon" koanf:"ambiguity_epsilon"`
	AmbiguityPenalty float64 `yaml:"ambiguity_penalty" koanf:"ambiguity_penalty"`
	SimilarityFloor  float64 `yaml:"similarity_floor" koanf:"similarity_floor"`
	SparsePenalty    float64 `yaml:"sparse_penalty" koanf:"sparse_penalty"`
}

// ConfidenceConfig holds the aggregation weights and level thresholds.
// The four weights must sum to exactly 1.0; Validate enforces this at startup.
type ConfidenceConfig struct {
	RetrievalWeight  float64 `yaml:"retrieval_weight" koanf:"retrieval_weight"`
	IntentWeight     float64 `yaml:"intent_weight" koanf:"intent_weight"`
	ResolutionWeight float64 `yaml:"resolution_weight" koanf:"resolution_weight"`
	CoverageWeight   float64 `yaml:"coverage_weight" koanf:"coverage_weight"`
	HighThreshold    float64 `yaml:"high_threshold" koanf:"high_threshold"`
	MediumThreshold  float64 `yaml:"medium_threshold" koanf:"medium_threshold"`
}

// HandoffConfig is the product-content side of the handoff decision:
// phrase lists are data, not logic, and can be tuned without a deploy.
type HandoffConfig struct {
	BookingURL          string              `yaml:"booking_url" koanf:"booking_url"`
	HumanRequestPhrases []string            `yaml:"human_request_phrases" koanf:"human_request_phrases"`
	SensitiveTopics     map[string][]string `yaml:"sensitive_topics" koanf:"sensitive_topics"`
}

// SessionConfig tunes conversation state handling.
type SessionConfig struct {
	HistoryWindow  int `yaml:"history_window" koanf:"history_window"`
	TimeoutMinutes int `yaml:"timeout_minutes" koanf:"timeout_minutes"`
	MaxMessageLen  int `yaml:"max_message_len" koanf:"max_message_len"`
}
