package queue

import (
	"context"
	"strings"
	"testing"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

func TestComposeEmbeddingText_MetadataOnly(t *testing.T) {
	rec := &catalog.Record{
		ID:   "rec-1",
		Type: catalog.TypeTask,
		Properties: catalog.Properties{
			Title:       "Fix ingest crash",
			Description: "The ingest worker crashes on empty payloads",
			Tags:        []string{"bug", "worker"},
		},
	}

	text, err := ComposeEmbeddingText(context.Background(), nil, rec)
	if err != nil {
		t.Fatalf("ComposeEmbeddingText: %v", err)
	}

	want := "Fix ingest crash\n\nThe ingest worker crashes on empty payloads\n\nTags: bug, worker"
	if text != want {
		t.Errorf("composed text = %q, want %q", text, want)
	}
}

func TestComposeEmbeddingText_TitleOnly(t *testing.T) {
	rec := &catalog.Record{
		ID:         "rec-2",
		Type:       catalog.TypeContainer,
		Properties: catalog.Properties{Title: "Platform rework"},
	}

	text, err := ComposeEmbeddingText(context.Background(), nil, rec)
	if err != nil {
		t.Fatalf("ComposeEmbeddingText: %v", err)
	}
	if text != "Platform rework" {
		t.Errorf("composed text = %q, want title only", text)
	}
}

func TestComposeEmbeddingText_NoText(t *testing.T) {
	rec := &catalog.Record{ID: "rec-3", Type: catalog.TypeMessage}

	text, err := ComposeEmbeddingText(context.Background(), nil, rec)
	if err != nil {
		t.Fatalf("ComposeEmbeddingText: %v", err)
	}
	if text != "" {
		t.Errorf("composed text = %q, want empty", text)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "paragraphs",
			doc:  "<html><body><p>First part.</p><p>Second part.</p></body></html>",
			want: "First part. Second part.",
		},
		{
			name: "script and style skipped",
			doc:  "<body><style>p{color:red}</style><p>Kept</p><script>var x=1;</script></body>",
			want: "Kept",
		},
		{
			name: "nested markup",
			doc:  "<div>Outer <span>inner</span> tail</div>",
			want: "Outer inner tail",
		},
		{
			name: "entities unescaped",
			doc:  "<p>a &amp; b</p>",
			want: "a & b",
		},
		{
			name: "plain text passes through",
			doc:  "no markup at all",
			want: "no markup at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripTags(tt.doc); got != tt.want {
				t.Errorf("stripTags(%q) = %q, want %q", tt.doc, got, tt.want)
			}
		})
	}
}

func TestExtractReadableText(t *testing.T) {
	doc := `<html><head><title>Weekly report</title><style>body{margin:0}</style></head>
<body><script>trackPageView();</script>
<article><h1>Weekly report</h1>
<p>The embedding backlog cleared on Tuesday after the index rebuild.</p>
<p>Latency has been stable since.</p></article>
</body></html>`

	got := ExtractReadableText(doc, "objects/rec-9/content")
	if !strings.Contains(got, "embedding backlog cleared") {
		t.Errorf("readable text lost article body: %q", got)
	}
	if strings.Contains(got, "trackPageView") {
		t.Errorf("script body leaked into readable text: %q", got)
	}
	if strings.Contains(got, "margin:0") {
		t.Errorf("style body leaked into readable text: %q", got)
	}
}
