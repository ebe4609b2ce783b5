// Package gateway constructs the AI client the server and the worker
// share, selected by the AGENT_ADAPTER environment variable.
package gateway

import (
	"fmt"
	"strings"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent/anthropic"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent/ollama"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent/openai"
)

// NewClientFromEnv builds an agent.Client for the configured adapter:
// "openai" (default), "ollama" or "anthropic". Anthropic has no
// embedding endpoint, so deployments running the embedding worker must
// pair it with one of the other adapters.
func NewClientFromEnv() (agent.Client, error) {
	adapter := strings.ToLower(util.GetEnvString("AGENT_ADAPTER", "openai"))

	switch adapter {
	case "openai", "":
		return openai.NewOpenAIClient(openai.NewOpenAIClientParams{
			CompletionModel: util.GetEnv("AGENT_COMPLETION_MODEL"),
			EmbeddingModel:  util.GetEnv("AGENT_EMBED_MODEL"),

			CompletionURL: util.GetEnv("AGENT_COMPLETION_URL"),
			CompletionKey: util.GetEnv("AGENT_COMPLETION_KEY"),
			EmbeddingURL:  util.GetEnv("AGENT_EMBED_URL"),
			EmbeddingKey:  util.GetEnv("AGENT_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AGENT_PARALLEL_REQ", 15)),
			TimeoutMin:            int(util.GetEnvNumeric("AGENT_TIMEOUT_MIN", 5)),
		}), nil

	case "ollama":
		client, err := ollama.NewOllamaClient(ollama.NewOllamaClientParams{
			CompletionModel: util.GetEnv("AGENT_COMPLETION_MODEL"),
			EmbeddingModel:  util.GetEnv("AGENT_EMBED_MODEL"),

			BaseURL: util.GetEnv("AGENT_URL"),
			ApiKey:  util.GetEnv("AGENT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AGENT_PARALLEL_REQ", 15)),
			TimeoutMin:            int(util.GetEnvNumeric("AGENT_TIMEOUT_MIN", 5)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil

	case "anthropic":
		return anthropic.NewAnthropicClient(anthropic.NewAnthropicClientParams{
			CompletionModel: util.GetEnv("AGENT_COMPLETION_MODEL"),

			BaseURL: util.GetEnv("AGENT_URL"),
			ApiKey:  util.GetEnv("AGENT_KEY"),

			TimeoutMin: int(util.GetEnvNumeric("AGENT_TIMEOUT_MIN", 5)),
		}), nil
	}

	return nil, fmt.Errorf("unsupported agent adapter %q", adapter)
}
