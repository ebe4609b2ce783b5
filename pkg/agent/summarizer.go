package agent

import (
	"context"
	"errors"
	"strings"
	"time"
)

const defaultSummaryTimeout = 30 * time.Second

type levelSummary struct {
	Summary string `json:"summary" jsonschema_description:"2-3 sentence synthesis of what connects the listed objects"`
}

// LevelSummarizer turns a digest of related objects into a short prose
// summary through the gateway. It binds the model, system prompt and
// timeout once so callers only pass the digest text.
type LevelSummarizer struct {
	client Client

	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int
	timeout      time.Duration
}

// LevelSummarizerParams configures a LevelSummarizer. Zero values fall
// back to the backend's defaults (Model, MaxTokens) or package defaults
// (Timeout).
type LevelSummarizerParams struct {
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// NewLevelSummarizer wraps the given client with summary policy.
func NewLevelSummarizer(client Client, params LevelSummarizerParams) *LevelSummarizer {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultSummaryTimeout
	}

	return &LevelSummarizer{
		client: client,

		model:        params.Model,
		systemPrompt: params.SystemPrompt,
		temperature:  params.Temperature,
		maxTokens:    params.MaxTokens,
		timeout:      timeout,
	}
}

// Summarize generates a prose summary for the given object digest. The
// call is bounded by the configured timeout; failures are returned to the
// caller, which is expected to fall back to a deterministic summary.
func (s *LevelSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	rCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []GenerateOption{
		WithTemperature(s.temperature),
	}
	if s.model != "" {
		opts = append(opts, WithModel(s.model))
	}
	if s.systemPrompt != "" {
		opts = append(opts, WithSystemPrompts(s.systemPrompt))
	}
	if s.maxTokens > 0 {
		opts = append(opts, WithMaxTokens(s.maxTokens))
	}

	var out levelSummary
	err := s.client.GenerateCompletionWithFormat(
		rCtx,
		"level_summary",
		"A short synthesis of what connects a cluster of related objects",
		text,
		&out,
		opts...,
	)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return "", errors.New("model returned an empty summary")
	}
	return summary, nil
}
