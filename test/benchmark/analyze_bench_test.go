package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/tango/internal/corpus"
	"github.com/hyperjump/tango/internal/engine"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/normalize"
	"github.com/hyperjump/tango/internal/tfidf"
	"github.com/hyperjump/tango/internal/vocabulary"
)

var words = []string{
	"funny", "cats", "dogs", "jumping", "running", "playing", "cute", "kitten", "puppy", "sleeping",
	"box", "sunbeam", "laser", "pointer", "zoomies", "treat", "walk", "park", "couch", "window",
}

func syntheticDocs(n int) []models.Document {
	docs := make([]models.Document, n)
	for i := range docs {
		title := fmt.Sprintf("%s %s %s", words[i%len(words)], words[(i*7)%len(words)], words[(i*13)%len(words)])
		body := ""
		for j := 0; j < 30; j++ {
			body += words[(i+j*3)%len(words)] + " and the "
		}
		docs[i] = models.Document{ID: i + 1, Title: title, Body: body}
	}
	return docs
}

func BenchmarkNormalize(b *testing.B) {
	text := syntheticDocs(1)[0].Body
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = normalize.Normalize(text)
	}
}

func BenchmarkTopTerms(b *testing.B) {
	c, _ := corpus.New(syntheticDocs(1000))
	stream := c.Stream()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = vocabulary.TopTerms(stream, 15)
	}
}

func BenchmarkBuildMatrix(b *testing.B) {
	c, _ := corpus.New(syntheticDocs(1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tfidf.BuildMatrix(c, tfidf.DefaultOptions())
	}
}

func BenchmarkAnalyze(b *testing.B) {
	docs := syntheticDocs(1000)
	e := engine.New()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Analyze(ctx, docs, "funny cats", 15)
	}
}
