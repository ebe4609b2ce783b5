package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[resolver]
thresholds = [0.9, 0.75]
max_results_per_level = 5

[prompts]
level_summary = "custom prompt"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(cfg.Resolver.Thresholds) != 2 || cfg.Resolver.Thresholds[0] != 0.9 {
		t.Fatalf("unexpected thresholds: %v", cfg.Resolver.Thresholds)
	}
	if cfg.Resolver.MaxResultsPerLevel != 5 {
		t.Fatalf("expected max_results_per_level 5, got %d", cfg.Resolver.MaxResultsPerLevel)
	}
	if cfg.Prompts.LevelSummary != "custom prompt" {
		t.Fatalf("unexpected prompt: %q", cfg.Prompts.LevelSummary)
	}
	// Untouched sections keep defaults.
	if cfg.Resolver.MaxWorkers != 8 {
		t.Fatalf("expected default max_workers 8, got %d", cfg.Resolver.MaxWorkers)
	}
	if cfg.Agent.DigestMaxTokens != 3000 {
		t.Fatalf("expected default digest_max_tokens, got %d", cfg.Agent.DigestMaxTokens)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[resolver\nbroken"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestLevelThresholds(t *testing.T) {
	cfg := Default()
	got := cfg.LevelThresholds()
	want := map[int]float64{1: 0.8, 2: 0.7, 3: 0.6}
	if len(got) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(got))
	}
	for level, threshold := range want {
		if got[level] != threshold {
			t.Fatalf("level %d: expected %v, got %v", level, threshold, got[level])
		}
	}
}
