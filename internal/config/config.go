package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	AzureOpenAIEndpoint   string
	AzureOpenAIAPIKey     string
	AzureOpenAIAPIVersion string
	AzureChatDeployment   string
	AzureEmbedDeployment  string

	LLMRequestsPerSecond float64
	LLMBurst             int
	LLMTimeoutSeconds    int

	QdrantURL         string
	QdrantAPIKey      string
	QdrantCollections []string

	RAGTopK           int
	RAGScoreThreshold float64
	ContextCharBudget int
	RerankCandidates  int
	RerankTextLimit   int

	HeuristicAlpha float64
	HeuristicBeta  float64
	HeuristicGamma float64
	LayerWeightL1  float64
	LayerWeightL2  float64

	RequestTimeoutSeconds int
}

// Load reads the environment and, when CONFIG_FILE points at a YAML file,
// overlays the tuning knobs from it. Environment wins for secrets and
// endpoints; the file only carries retrieval tuning.
func Load() (Config, error) {
	cfg := Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		AzureOpenAIEndpoint:   mustEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:     mustEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIAPIVersion: mustEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		AzureChatDeployment:   normalizeDeployment(mustEnv("AZURE_CHAT_DEPLOYMENT", "gpt-4o")),
		AzureEmbedDeployment:  mustEnv("AZURE_EMBED_DEPLOYMENT", "text-embedding-3-large"),

		LLMRequestsPerSecond: mustEnvFloat("LLM_REQUESTS_PER_SECOND", 8),
		LLMBurst:             mustEnvInt("LLM_BURST", 4),
		LLMTimeoutSeconds:    mustEnvInt("LLM_TIMEOUT_SECONDS", 60),

		QdrantURL:         mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:      mustEnv("QDRANT_API_KEY", ""),
		QdrantCollections: splitList(mustEnv("QDRANT_COLLECTIONS", "advotac_acts_L1,advotac_acts_L2,advotac_acts_L3")),

		RAGTopK:           mustEnvInt("RAG_TOP_K", 5),
		RAGScoreThreshold: mustEnvFloat("RAG_SCORE_THRESHOLD", 0.70),
		ContextCharBudget: mustEnvInt("RAG_CONTEXT_CHAR_BUDGET", 7500),
		RerankCandidates:  mustEnvInt("RAG_RERANK_CANDIDATES", 20),
		RerankTextLimit:   mustEnvInt("RAG_RERANK_TEXT_LIMIT", 1000),

		HeuristicAlpha: mustEnvFloat("RAG_HEURISTIC_ALPHA", 0.65),
		HeuristicBeta:  mustEnvFloat("RAG_HEURISTIC_BETA", 0.25),
		HeuristicGamma: mustEnvFloat("RAG_HEURISTIC_GAMMA", 0.10),
		LayerWeightL1:  mustEnvFloat("RAG_LAYER_WEIGHT_L1", 0.15),
		LayerWeightL2:  mustEnvFloat("RAG_LAYER_WEIGHT_L2", 0.55),

		RequestTimeoutSeconds: mustEnvInt("REQUEST_TIMEOUT_SECONDS", 90),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

type fileOverlay struct {
	TopK              *int     `yaml:"top_k"`
	ScoreThreshold    *float64 `yaml:"score_threshold"`
	ContextCharBudget *int     `yaml:"context_char_budget"`
	RerankCandidates  *int     `yaml:"rerank_candidates"`
	Collections       []string `yaml:"collections"`
	HeuristicAlpha    *float64 `yaml:"heuristic_alpha"`
	HeuristicBeta     *float64 `yaml:"heuristic_beta"`
	HeuristicGamma    *float64 `yaml:"heuristic_gamma"`
	LayerWeightL1     *float64 `yaml:"layer_weight_l1"`
	LayerWeightL2     *float64 `yaml:"layer_weight_l2"`
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if overlay.TopK != nil {
		c.RAGTopK = *overlay.TopK
	}
	if overlay.ScoreThreshold != nil {
		c.RAGScoreThreshold = *overlay.ScoreThreshold
	}
	if overlay.ContextCharBudget != nil {
		c.ContextCharBudget = *overlay.ContextCharBudget
	}
	if overlay.RerankCandidates != nil {
		c.RerankCandidates = *overlay.RerankCandidates
	}
	if len(overlay.Collections) > 0 {
		c.QdrantCollections = overlay.Collections
	}
	if overlay.HeuristicAlpha != nil {
		c.HeuristicAlpha = *overlay.HeuristicAlpha
	}
	if overlay.HeuristicBeta != nil {
		c.HeuristicBeta = *overlay.HeuristicBeta
	}
	if overlay.HeuristicGamma != nil {
		c.HeuristicGamma = *overlay.HeuristicGamma
	}
	if overlay.LayerWeightL1 != nil {
		c.LayerWeightL1 = *overlay.LayerWeightL1
	}
	if overlay.LayerWeightL2 != nil {
		c.LayerWeightL2 = *overlay.LayerWeightL2
	}
	return nil
}

// normalizeDeployment folds legacy deployment aliases onto canonical model
// names. Older environment files still carry the short "4o" form.
func normalizeDeployment(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "4o":
		return "gpt-4o"
	case "4o-mini":
		return "gpt-4o-mini"
	default:
		return strings.TrimSpace(name)
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
