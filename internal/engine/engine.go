// Package engine runs one analysis over a batch of documents: the top-K inverted index and
// the TF-IDF scores of a query.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/tango/internal/corpus"
	"github.com/hyperjump/tango/internal/indexer"
	"github.com/hyperjump/tango/internal/metrics"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/tfidf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTopK is the vocabulary size used when none is configured.
const DefaultTopK = 15

// Engine builds the index and the TF-IDF matrix of a batch and scores a query.
// It holds no per-batch state, so one Engine may analyze batches concurrently.
type Engine struct {
	tfidf   tfidf.Options
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTFIDF sets the TF-IDF weighting options.
func WithTFIDF(opts tfidf.Options) Option {
	return func(e *Engine) { e.tfidf = opts }
}

// WithMetrics records every run on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine. Without options it uses tfidf.DefaultOptions and a no-op logger.
func New(opts ...Option) *Engine {
	e := &Engine{
		tfidf:  tfidf.DefaultOptions(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze indexes docs, keeps the k most frequent terms and scores query against the corpus.
// The indexer and the scorer read the same corpus concurrently.
// Invalid document IDs or k <= 0 return an error matching models.ErrInvalidInput.
func (e *Engine) Analyze(ctx context.Context, docs []models.Document, query string, k int) (*models.Analysis, error) {
	start := time.Now()
	analysis, cols, err := e.analyze(ctx, docs, query, k)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ObserveFailure()
		}
		return nil, err
	}
	elapsed := time.Since(start)

	found := 0
	for _, r := range analysis.Scores {
		if r.Found {
			found++
		}
	}
	if e.metrics != nil {
		e.metrics.ObserveRun(elapsed, analysis.DocumentCount, len(analysis.Vocabulary), cols, found, len(analysis.Scores)-found)
	}
	e.logger.Debug("analysis complete",
		zap.Int("documents", analysis.DocumentCount),
		zap.Int("top_k", k),
		zap.Int("vocabulary", len(analysis.Vocabulary)),
		zap.Int("tfidf_terms", cols),
		zap.Int("query_terms", len(analysis.Scores)),
		zap.Int("query_terms_found", found),
		zap.Duration("elapsed", elapsed),
	)
	return analysis, nil
}

func (e *Engine) analyze(ctx context.Context, docs []models.Document, query string, k int) (*models.Analysis, int, error) {
	if k <= 0 {
		return nil, 0, models.NewInvalidInputError("k", "must be positive, got %d", k)
	}
	if err := e.tfidf.Validate(); err != nil {
		return nil, 0, models.NewInvalidInputError("tfidf", "%v", err)
	}
	c, err := corpus.New(docs)
	if err != nil {
		return nil, 0, err
	}

	var (
		idx    *indexer.Index
		matrix *tfidf.Matrix
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		built, err := indexer.Build(c, k, indexer.WithLogger(e.logger))
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		idx = built
		return gctx.Err()
	})
	g.Go(func() error {
		matrix = tfidf.BuildMatrix(c, e.tfidf)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return &models.Analysis{
		DocumentCount: c.Len(),
		TopK:          k,
		Query:         query,
		Vocabulary:    idx.Rows(),
		Scores:        matrix.Score(query),
	}, matrix.Cols(), nil
}
