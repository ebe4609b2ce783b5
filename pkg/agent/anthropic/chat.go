package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"

	"github.com/liushuangls/go-anthropic/v2"
)

const defaultMaxTokens = 1024

// GenerateCompletion sends a single-turn prompt to the Messages API and
// returns the generated completion as plain text.
func (c *AnthropicClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...agent.GenerateOption,
) (string, error) {
	options := agent.GenerateOptions{
		Model:       c.completionModel,
		Temperature: 0.3,
		MaxTokens:   defaultMaxTokens,
	}
	for _, o := range opts {
		o(&options)
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	temp := float32(options.Temperature)
	req := anthropic.MessagesRequest{
		Model: anthropic.Model(options.Model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   options.MaxTokens,
		Temperature: &temp,
	}
	if len(options.SystemPrompts) > 0 {
		req.System = strings.Join(options.SystemPrompts, "\n\n")
	}

	start := time.Now()
	resp, err := c.Client.CreateMessages(rCtx, req)
	if err != nil {
		return "", err
	}
	duration := time.Since(start).Milliseconds()

	metrics := agent.ModelMetrics{
		Requests:     1,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", fmt.Errorf("no response content")
	}
	return *resp.Content[0].Text, nil
}

// GenerateCompletionWithFormat sends a prompt and unmarshals the response
// into the provided output struct. The Messages API has no structured
// output mode, so the JSON schema is injected as a system prompt and the
// response is parsed leniently.
func (c *AnthropicClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...agent.GenerateOption,
) error {
	schemaObj := agent.GenerateSchema(out)
	schemaBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return err
	}

	options := agent.GenerateOptions{
		Model:       c.completionModel,
		Temperature: 0.1,
		MaxTokens:   defaultMaxTokens,
	}
	for _, o := range opts {
		o(&options)
	}

	system := options.SystemPrompts
	system = append(system, fmt.Sprintf(
		"Respond with a single JSON object named %q (%s) that validates against this JSON Schema. Output only the JSON, no prose:\n%s",
		name, description, string(schemaBytes),
	))

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	temp := float32(options.Temperature)
	req := anthropic.MessagesRequest{
		Model: anthropic.Model(options.Model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   options.MaxTokens,
		Temperature: &temp,
		System:      strings.Join(system, "\n\n"),
	}

	start := time.Now()
	resp, err := c.Client.CreateMessages(rCtx, req)
	if err != nil {
		return err
	}
	duration := time.Since(start).Milliseconds()

	metrics := agent.ModelMetrics{
		Requests:     1,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return fmt.Errorf("no response content")
	}
	return agent.UnmarshalFlexible(*resp.Content[0].Text, out)
}

// GenerateEmbedding always fails: the Messages API has no embedding
// endpoint. Callers should check for agent.ErrNoEmbeddings and route
// embedding work to a different adapter.
func (c *AnthropicClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, agent.ErrNoEmbeddings
}
