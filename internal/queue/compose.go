package queue

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/net/html"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/storage"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// ComposeEmbeddingText builds the text a record is embedded under:
// title, description and tags, plus the stored content body for records
// that carry one. HTML bodies are reduced to readable text first.
func ComposeEmbeddingText(ctx context.Context, s3Client *awss3.Client, rec *catalog.Record) (string, error) {
	var b strings.Builder
	b.WriteString(rec.Properties.Title)
	if rec.Properties.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(rec.Properties.Description)
	}
	if len(rec.Properties.Tags) > 0 {
		b.WriteString("\n\nTags: ")
		b.WriteString(strings.Join(rec.Properties.Tags, ", "))
	}

	if rec.ContentKey != "" {
		raw, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) ([]byte, error) {
			return storage.GetFile(ctx, s3Client, rec.ContentKey)
		})
		if err != nil {
			return "", fmt.Errorf("failed to fetch content for %s: %w", rec.ID, err)
		}

		body := string(raw)
		contentType := rec.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(raw)
		}
		if strings.Contains(contentType, "text/html") {
			body = ExtractReadableText(body, rec.ContentKey)
		}
		body = strings.TrimSpace(body)
		if body != "" {
			b.WriteString("\n\n")
			b.WriteString(body)
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// ExtractReadableText reduces an HTML document to its text. Readability
// finds the main article; when it cannot, every tag is stripped with the
// tokenizer so at least the raw text survives.
func ExtractReadableText(doc string, key string) string {
	pageURL, _ := url.Parse("s3://" + key)
	article, err := readability.FromReader(strings.NewReader(doc), pageURL)
	if err == nil {
		var b strings.Builder
		if renderErr := article.RenderText(&b); renderErr == nil {
			if text := strings.TrimSpace(b.String()); text != "" {
				return text
			}
		}
	} else {
		logger.Debug("[Queue] Readability found no article, stripping tags", "err", err)
	}
	return stripTags(doc)
}

// stripTags drops every tag and collapses whitespace, skipping script
// and style bodies.
func stripTags(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}
