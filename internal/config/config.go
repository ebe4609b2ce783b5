package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ResolverConfig carries the tunable policy of the network resolver.
// Thresholds is indexed by level-1 (position 0 holds the level-1 cutoff).
type ResolverConfig struct {
	Thresholds         []float64 `toml:"thresholds"`
	MaxResultsPerLevel int       `toml:"max_results_per_level"`
	MaxWorkers         int       `toml:"max_workers"`
	SummaryTimeoutSecs int       `toml:"summary_timeout_seconds"`
}

// AgentConfig bounds the summarizer's calls into the AI gateway.
type AgentConfig struct {
	SummaryModel       string  `toml:"summary_model"`
	SummaryTemperature float64 `toml:"summary_temperature"`
	DigestMaxTokens    int     `toml:"digest_max_tokens"`
}

// Prompts holds the system prompts sent to the AI gateway.
type Prompts struct {
	LevelSummary string `toml:"level_summary"`
}

type Config struct {
	Resolver ResolverConfig `toml:"resolver"`
	Agent    AgentConfig    `toml:"agent"`
	Prompts  Prompts        `toml:"prompts"`
}

const defaultLevelSummaryPrompt = "You summarize clusters of related work objects. " +
	"Given a list of objects with their type, title and description, respond with a " +
	"2-3 sentence synthesis of what connects them. Mention concrete themes, never " +
	"enumerate the list back."

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Thresholds:         []float64{0.8, 0.7, 0.6},
			MaxResultsPerLevel: 10,
			MaxWorkers:         8,
			SummaryTimeoutSecs: 30,
		},
		Agent: AgentConfig{
			SummaryTemperature: 0.3,
			DigestMaxTokens:    3000,
		},
		Prompts: Prompts{
			LevelSummary: defaultLevelSummaryPrompt,
		},
	}
}

// Load reads a TOML config file. Sections and keys that the file omits
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LevelThresholds maps the threshold list into the level-keyed form the
// resolver consumes.
func (c *Config) LevelThresholds() map[int]float64 {
	out := make(map[int]float64, len(c.Resolver.Thresholds))
	for i, v := range c.Resolver.Thresholds {
		out[i+1] = v
	}
	return out
}
