package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("RAG_SCORE_THRESHOLD", "")
	t.Setenv("RAG_CONTEXT_CHAR_BUDGET", "")
	t.Setenv("QDRANT_COLLECTIONS", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.RAGTopK)
	}
	if cfg.RAGScoreThreshold != 0.70 {
		t.Fatalf("expected default threshold 0.70, got %v", cfg.RAGScoreThreshold)
	}
	if cfg.ContextCharBudget != 7500 {
		t.Fatalf("expected default context budget 7500, got %d", cfg.ContextCharBudget)
	}
	if len(cfg.QdrantCollections) != 3 || cfg.QdrantCollections[1] != "advotac_acts_L2" {
		t.Fatalf("unexpected default collections %v", cfg.QdrantCollections)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("RAG_SCORE_THRESHOLD", "0.55")
	t.Setenv("QDRANT_COLLECTIONS", "a_L1 , b_L2,")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RAGTopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.RAGTopK)
	}
	if cfg.RAGScoreThreshold != 0.55 {
		t.Fatalf("expected threshold 0.55, got %v", cfg.RAGScoreThreshold)
	}
	if len(cfg.QdrantCollections) != 2 || cfg.QdrantCollections[0] != "a_L1" {
		t.Fatalf("expected trimmed collection list, got %v", cfg.QdrantCollections)
	}
}

func TestLoadNormalizesDeploymentAliases(t *testing.T) {
	t.Setenv("AZURE_CHAT_DEPLOYMENT", "4o")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AzureChatDeployment != "gpt-4o" {
		t.Fatalf("expected 4o alias folded to gpt-4o, got %q", cfg.AzureChatDeployment)
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	overlay := "top_k: 10\nscore_threshold: 0.6\ncollections:\n  - custom_L2\n"
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("RAG_CONTEXT_CHAR_BUDGET", "7500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RAGTopK != 10 {
		t.Fatalf("expected overlay top k 10, got %d", cfg.RAGTopK)
	}
	if cfg.RAGScoreThreshold != 0.6 {
		t.Fatalf("expected overlay threshold 0.6, got %v", cfg.RAGScoreThreshold)
	}
	if len(cfg.QdrantCollections) != 1 || cfg.QdrantCollections[0] != "custom_L2" {
		t.Fatalf("expected overlay collections, got %v", cfg.QdrantCollections)
	}
	if cfg.ContextCharBudget != 7500 {
		t.Fatalf("keys absent from the overlay must keep env values, got %d", cfg.ContextCharBudget)
	}
}

func TestLoadFailsOnBrokenOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("top_k: [not an int"), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for broken overlay")
	}
}
