package agent

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClient struct {
	response    string
	err         error
	lastPrompt  string
	lastOptions GenerateOptions
	sawDeadline bool
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...GenerateOption) error {
	f.lastPrompt = prompt
	f.lastOptions = GenerateOptions{}
	for _, o := range opts {
		o(&f.lastOptions)
	}
	_, f.sawDeadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	return UnmarshalFlexible(f.response, out)
}

func (f *fakeClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, ErrNoEmbeddings
}

func (f *fakeClient) ResetMetrics() {}

func (f *fakeClient) GetMetrics() ModelMetrics { return ModelMetrics{} }

func TestLevelSummarizer_Summarize(t *testing.T) {
	fake := &fakeClient{response: `{"summary":"  Both objects concern the release pipeline.  "}`}
	s := NewLevelSummarizer(fake, LevelSummarizerParams{
		Model:        "gpt-4o-mini",
		SystemPrompt: "summarize clusters",
		Temperature:  0.4,
		MaxTokens:    256,
		Timeout:      5 * time.Second,
	})

	got, err := s.Summarize(context.Background(), "1. task: Fix CI\n2. task: Cut release")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Both objects concern the release pipeline." {
		t.Fatalf("Summarize() = %q, want trimmed summary", got)
	}

	if fake.lastOptions.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q, want %q", fake.lastOptions.Model, "gpt-4o-mini")
	}
	if fake.lastOptions.Temperature != 0.4 {
		t.Fatalf("temperature = %v, want 0.4", fake.lastOptions.Temperature)
	}
	if fake.lastOptions.MaxTokens != 256 {
		t.Fatalf("max tokens = %d, want 256", fake.lastOptions.MaxTokens)
	}
	if len(fake.lastOptions.SystemPrompts) != 1 || fake.lastOptions.SystemPrompts[0] != "summarize clusters" {
		t.Fatalf("system prompts = %v, want the configured prompt", fake.lastOptions.SystemPrompts)
	}
	if !fake.sawDeadline {
		t.Fatalf("expected the gateway call to carry a deadline")
	}
}

func TestLevelSummarizer_GatewayError(t *testing.T) {
	wantErr := errors.New("connection refused")
	fake := &fakeClient{err: wantErr}
	s := NewLevelSummarizer(fake, LevelSummarizerParams{})

	if _, err := s.Summarize(context.Background(), "digest"); !errors.Is(err, wantErr) {
		t.Fatalf("Summarize() error = %v, want %v", err, wantErr)
	}
}

func TestLevelSummarizer_EmptySummary(t *testing.T) {
	fake := &fakeClient{response: `{"summary":"   "}`}
	s := NewLevelSummarizer(fake, LevelSummarizerParams{})

	if _, err := s.Summarize(context.Background(), "digest"); err == nil {
		t.Fatalf("Summarize() expected error for empty summary")
	}
}

func TestLevelSummarizer_DefaultTimeout(t *testing.T) {
	fake := &fakeClient{response: `{"summary":"ok"}`}
	s := NewLevelSummarizer(fake, LevelSummarizerParams{})

	if _, err := s.Summarize(context.Background(), "digest"); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !fake.sawDeadline {
		t.Fatalf("expected a default deadline when none is configured")
	}
}
