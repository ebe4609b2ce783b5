package openai

import (
	"sync"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// OpenAIClient talks to OpenAI-compatible endpoints. It manages separate
// clients for completion and embedding tasks so the two concerns can point
// at different providers.
//
// An OpenAIClient should be created using NewOpenAIClient.
type OpenAIClient struct {
	completionModel string
	embeddingModel  string

	completionURL string
	completionKey string
	embeddingURL  string
	embeddingKey  string

	timeoutMin    int
	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     agent.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewOpenAIClientParams defines the configuration parameters for creating
// a new OpenAIClient.
//
// CompletionModel specifies the model used for text generation.
// EmbeddingModel specifies the model used for embeddings.
// CompletionURL and CompletionKey configure the chat/completion API endpoint.
// EmbeddingURL and EmbeddingKey configure the embedding API endpoint.
// MaxConcurrentRequests bounds in-flight embedding requests.
// TimeoutMin is the per-request timeout in minutes for embedding calls.
type NewOpenAIClientParams struct {
	CompletionModel string
	EmbeddingModel  string

	CompletionURL string
	CompletionKey string
	EmbeddingURL  string
	EmbeddingKey  string

	MaxConcurrentRequests int64
	TimeoutMin            int
}

// NewOpenAIClient creates and returns a new OpenAIClient configured with
// the provided parameters.
//
// Example:
//
//	params := openai.NewOpenAIClientParams{
//		CompletionModel: "gpt-4o-mini",
//		EmbeddingModel:  "text-embedding-3-small",
//		CompletionURL:   "https://api.openai.com/v1",
//		CompletionKey:   os.Getenv("AGENT_COMPLETION_KEY"),
//		EmbeddingURL:    "https://api.openai.com/v1",
//		EmbeddingKey:    os.Getenv("AGENT_EMBED_KEY"),
//	}
//	client := openai.NewOpenAIClient(params)
func NewOpenAIClient(params NewOpenAIClientParams) *OpenAIClient {
	chatClient := newOpenaiClient(params.CompletionURL, params.CompletionKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	maxReq := params.MaxConcurrentRequests
	if maxReq <= 0 {
		maxReq = 1
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 5
	}

	return &OpenAIClient{
		completionModel: params.CompletionModel,
		embeddingModel:  params.EmbeddingModel,

		completionURL: params.CompletionURL,
		completionKey: params.CompletionKey,
		embeddingURL:  params.EmbeddingURL,
		embeddingKey:  params.EmbeddingKey,

		timeoutMin:    timeoutMin,
		embeddingLock: semaphore.NewWeighted(maxReq),

		metricsLock: sync.Mutex{},
		metrics: agent.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
