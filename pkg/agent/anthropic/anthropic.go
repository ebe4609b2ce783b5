package anthropic

import (
	"sync"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicClient implements the agent.Client interface against the
// Anthropic Messages API. It supports completions only; the API has no
// embedding endpoint, so GenerateEmbedding returns agent.ErrNoEmbeddings
// and deployments running the embedding worker must pair it with the
// openai or ollama adapter.
type AnthropicClient struct {
	completionModel string

	timeoutMin int

	metricsLock sync.Mutex
	metrics     agent.ModelMetrics

	Client *anthropic.Client
}

// NewAnthropicClientParams contains configuration options for creating a
// new AnthropicClient.
type NewAnthropicClientParams struct {
	CompletionModel string

	BaseURL string
	ApiKey  string

	TimeoutMin int
}

// NewAnthropicClient creates a new Anthropic-based client with the
// specified configuration.
func NewAnthropicClient(params NewAnthropicClientParams) *AnthropicClient {
	var opts []anthropic.ClientOption
	if params.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(params.BaseURL))
	}

	client := anthropic.NewClient(params.ApiKey, opts...)

	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 5
	}

	return &AnthropicClient{
		completionModel: params.CompletionModel,

		timeoutMin: timeoutMin,

		metricsLock: sync.Mutex{},
		metrics: agent.ModelMetrics{
			Requests:     0,
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		Client: client,
	}
}
