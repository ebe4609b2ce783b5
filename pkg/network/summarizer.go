package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// digestNodeCap bounds how many nodes make it into the digest text
	// handed to the gateway; a level can admit far more than a 2-3
	// sentence summary can cover.
	digestNodeCap = 20

	// digestDescriptionRunes caps each node's description inside the
	// digest.
	digestDescriptionRunes = 200

	// defaultDigestTokenLimit caps the whole digest, measured with the
	// o200k_base encoding.
	defaultDigestTokenLimit = 3000
)

// summarizeLevel produces the level's summary text. Everything that can
// go wrong here (nil gateway, timeout, malformed output) degrades to the
// deterministic fallback; summarization never aborts a traversal.
func (r *resolution) summarizeLevel(ctx context.Context, level int, nodes []Node) string {
	fallback := fallbackSummary(level, len(nodes))
	if r.b.summarizer == nil || len(nodes) == 0 {
		emit(ctx, r.b.tracer, TraceEvent{
			Kind:     TraceEventSummary,
			SourceID: r.result.SourceID,
			Level:    level,
			Fallback: true,
		})
		return fallback
	}

	digest := buildLevelDigest(nodes, r.b.digestTokenLimit)
	summary, err := r.b.summarizer.Summarize(ctx, digest)
	if err != nil {
		logger.Warn("level summary failed, using fallback", "err", err, "level", level)
		emit(ctx, r.b.tracer, TraceEvent{
			Kind:     TraceEventSummary,
			SourceID: r.result.SourceID,
			Level:    level,
			Fallback: true,
			Error:    err.Error(),
		})
		return fallback
	}

	emit(ctx, r.b.tracer, TraceEvent{
		Kind:     TraceEventSummary,
		SourceID: r.result.SourceID,
		Level:    level,
	})
	return summary
}

func fallbackSummary(level, count int) string {
	return fmt.Sprintf("Level %d contains %d related objects", level, count)
}

// buildLevelDigest renders the admitted nodes as numbered
// type/title/description triples, bounded twice: at most digestNodeCap
// nodes, and at most tokenLimit tokens of rendered text.
func buildLevelDigest(nodes []Node, tokenLimit int) string {
	if len(nodes) > digestNodeCap {
		nodes = nodes[:digestNodeCap]
	}

	var b strings.Builder
	for i, node := range nodes {
		title := node.Properties.Title
		if title == "" {
			title = node.ID
		}
		fmt.Fprintf(&b, "%d. %s: %s", i+1, node.Type, title)
		if desc := util.TruncateRunes(node.Properties.Description, digestDescriptionRunes); desc != "" {
			fmt.Fprintf(&b, " — %s", desc)
		}
		b.WriteString("\n")
	}

	return capTokens(b.String(), tokenLimit)
}

// capTokens truncates text to at most limit tokens of the o200k_base
// encoding, the same count the agent backends size their context
// windows with. When the tokenizer is unavailable the text passes
// through uncapped; the gateway's own limits still apply.
func capTokens(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		logger.Warn("failed to load token encoding, digest not capped", "err", err)
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return enc.Decode(tokens[:limit])
}
