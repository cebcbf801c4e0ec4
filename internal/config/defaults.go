package config

import (
	"time"

	"github.com/hyperjump/tango/internal/tfidf"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/tango/runs.db"
	}
	if cfg.Reddit.UserAgent == "" {
		cfg.Reddit.UserAgent = "tango/1.0"
	}
	if cfg.Reddit.Subreddit == "" {
		cfg.Reddit.Subreddit = "all"
	}
	if cfg.Reddit.Query == "" {
		cfg.Reddit.Query = "Funny cats"
	}
	if cfg.Reddit.Limit == 0 {
		cfg.Reddit.Limit = 1000
	}
	if cfg.Reddit.Sort == "" {
		cfg.Reddit.Sort = "hot"
	}
	if cfg.Reddit.TimeFilter == "" {
		cfg.Reddit.TimeFilter = "month"
	}
	if cfg.Reddit.BaseURL == "" {
		cfg.Reddit.BaseURL = "https://oauth.reddit.com"
	}
	if cfg.Reddit.AuthURL == "" {
		cfg.Reddit.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if cfg.Reddit.Timeout == 0 {
		cfg.Reddit.Timeout = 30 * time.Second
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 15
	}
	if cfg.TFIDF.TF == "" {
		// An unset tf mode means the whole section was omitted.
		cfg.TFIDF = tfidf.DefaultOptions()
	}
	if cfg.Output.ResultsPath == "" {
		cfg.Output.ResultsPath = "./reddit_results.xlsx"
	}
	if cfg.Output.VocabularyPath == "" {
		cfg.Output.VocabularyPath = "./word_post_locations.xlsx"
	}
	if cfg.Output.ScoresPath == "" {
		cfg.Output.ScoresPath = "./tfidf_scores.xlsx"
	}
}
