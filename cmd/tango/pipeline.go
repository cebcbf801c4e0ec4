package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hyperjump/tango/internal/config"
	"github.com/hyperjump/tango/internal/engine"
	"github.com/hyperjump/tango/internal/metrics"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/sheet"
	"github.com/hyperjump/tango/internal/source"
	"github.com/hyperjump/tango/internal/storage"
	"github.com/hyperjump/tango/pkg/utils"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Engine  *engine.Engine
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Close releases the run store.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	m := metrics.New()
	eng := engine.New(
		engine.WithTFIDF(cfg.TFIDF),
		engine.WithMetrics(m),
		engine.WithLogger(utils.Named(logger, "engine")),
	)
	return &Components{
		Storage: store,
		Engine:  eng,
		Metrics: m,
		Logger:  logger,
	}, nil
}

func newRedditSource(cfg *config.Config, logger *zap.Logger) *source.RedditSource {
	return source.NewRedditSource(
		cfg.Reddit.ClientID,
		cfg.Reddit.ClientSecret,
		cfg.Reddit.UserAgent,
		source.WithBaseURL(cfg.Reddit.BaseURL),
		source.WithAuthURL(cfg.Reddit.AuthURL),
		source.WithTimeout(cfg.Reddit.Timeout),
		source.WithLogger(utils.Named(logger, "reddit")),
	)
}

func searchRequest(cfg *config.Config) models.SearchRequest {
	return models.SearchRequest{
		Subreddit:  cfg.Reddit.Subreddit,
		Query:      cfg.Reddit.Query,
		Limit:      cfg.Reddit.Limit,
		Sort:       cfg.Reddit.Sort,
		TimeFilter: cfg.Reddit.TimeFilter,
	}
}

// crawl fetches posts from src and writes them to the results workbook at resultsPath.
// An empty result leaves any existing workbook untouched.
func crawl(ctx context.Context, src source.ContentSource, req models.SearchRequest, resultsPath string, logger *zap.Logger) (int, error) {
	logger.Info("searching", zap.String("subreddit", req.Subreddit), zap.String("query", req.Query), zap.Int("limit", req.Limit))
	posts, err := src.Fetch(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("fetch posts: %w", err)
	}
	if len(posts) == 0 {
		logger.Warn("no results found, keeping existing results", zap.String("subreddit", req.Subreddit), zap.String("query", req.Query), zap.String("path", resultsPath))
		return 0, nil
	}
	if err := sheet.WritePosts(resultsPath, posts); err != nil {
		return 0, fmt.Errorf("write results: %w", err)
	}
	logger.Info("results saved", zap.String("path", resultsPath), zap.Int("posts", len(posts)))
	return len(posts), nil
}

// analyzeRequest describes one analyze pass over a results workbook.
type analyzeRequest struct {
	InputPath string
	Query     string
	TopK      int
	Output    config.OutputConfig
	Save      bool
}

// analyzeFile reads the results workbook, analyzes it, writes the vocabulary and
// scores workbooks and, when req.Save is set, stores the run.
func analyzeFile(ctx context.Context, c *Components, req analyzeRequest) (*models.Run, error) {
	posts, err := source.SpreadsheetSource{Path: req.InputPath}.Fetch(ctx, models.SearchRequest{})
	if err != nil {
		return nil, err
	}
	docs := source.Documents(posts)
	analysis, err := c.Engine.Analyze(ctx, docs, req.Query, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", req.InputPath, err)
	}

	if req.Output.VocabularyPath != "" {
		if err := sheet.WriteVocabulary(req.Output.VocabularyPath, analysis.Vocabulary); err != nil {
			return nil, fmt.Errorf("write vocabulary: %w", err)
		}
		c.Logger.Info("inverted index saved", zap.String("path", req.Output.VocabularyPath), zap.Int("terms", len(analysis.Vocabulary)))
	}
	if req.Output.ScoresPath != "" {
		if err := sheet.WriteScores(req.Output.ScoresPath, analysis.Scores); err != nil {
			return nil, fmt.Errorf("write scores: %w", err)
		}
		c.Logger.Info("tf-idf scores saved", zap.String("path", req.Output.ScoresPath))
	}

	run := &models.Run{
		Source:    "file:" + filepath.Base(req.InputPath),
		Documents: docs,
		Analysis:  analysis,
	}
	if req.Save && c.Storage != nil {
		if err := c.Storage.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		c.Logger.Debug("run saved", zap.String("id", run.ID))
	}
	return run, nil
}
