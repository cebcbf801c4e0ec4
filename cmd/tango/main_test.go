package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/hyperjump/tango/internal/config"
	"github.com/hyperjump/tango/internal/engine"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/sheet"
	"github.com/hyperjump/tango/internal/storage"
	"go.uber.org/zap"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"funny cats", "-k", "5"},
			expected: []string{"-k", "5", "funny cats"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-k", "5", "funny cats"},
			expected: []string{"-k", "5", "funny cats"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"funny cats"},
			expected: []string{"funny cats"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "flags between positionals keep query order",
			args:     []string{"funny", "-k", "5", "cats"},
			expected: []string{"-k", "5", "funny", "cats"},
		},
		{
			name:     "boolean and inline flags take no value",
			args:     []string{"funny", "-no-save", "cats", "-output=json", "dogs"},
			expected: []string{"-no-save", "-output=json", "funny", "cats", "dogs"},
		},
		{
			name:     "double dash ends flags",
			args:     []string{"funny", "-k", "5", "--", "-cats"},
			expected: []string{"-k", "5", "--", "funny", "-cats"},
		},
		{
			name:     "runs subcommand then flags",
			args:     []string{"show", "abc", "-output", "json"},
			expected: []string{"-output", "json", "show", "abc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"cats"}, "cats"},
		{"multiple words", []string{"funny", "cats"}, "funny cats"},
		{"single quoted phrase", []string{"funny cats"}, "funny cats"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.args); got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestBuildAnalyzeRequest_defaultsFromConfig(t *testing.T) {
	cfg := config.Default()
	req := buildAnalyzeRequest(cfg, "", "", 0)
	if req.InputPath != cfg.Output.ResultsPath || req.Query != "Funny cats" || req.TopK != 15 || !req.Save {
		t.Errorf("defaults: %+v", req)
	}

	req = buildAnalyzeRequest(cfg, "/tmp/in.xlsx", "dogs", 3)
	if req.InputPath != "/tmp/in.xlsx" || req.Query != "dogs" || req.TopK != 3 {
		t.Errorf("explicit: %+v", req)
	}
}

func TestApplyCrawlFlags(t *testing.T) {
	cfg := config.Default()
	applyCrawlFlags(cfg, "", "", 0, "")
	if cfg.Reddit.Subreddit != "all" || cfg.Reddit.Query != "Funny cats" || cfg.Reddit.Limit != 1000 {
		t.Errorf("empty flags changed config: %+v", cfg.Reddit)
	}
	applyCrawlFlags(cfg, "golang", "generics", 50, "/tmp/out.xlsx")
	if cfg.Reddit.Subreddit != "golang" || cfg.Reddit.Query != "generics" || cfg.Reddit.Limit != 50 || cfg.Output.ResultsPath != "/tmp/out.xlsx" {
		t.Errorf("flags not applied: %+v %+v", cfg.Reddit, cfg.Output)
	}
}

func TestWatchInputs(t *testing.T) {
	cfg := config.Default()
	if got := watchInputs(cfg, nil); !reflect.DeepEqual(got, []string{cfg.Output.ResultsPath}) {
		t.Errorf("fallback = %v", got)
	}
	cfg.Watch.Inputs = []string{"/a.xlsx"}
	if got := watchInputs(cfg, nil); !reflect.DeepEqual(got, []string{"/a.xlsx"}) {
		t.Errorf("config inputs = %v", got)
	}
	if got := watchInputs(cfg, []string{"/b.xlsx"}); !reflect.DeepEqual(got, []string{"/b.xlsx"}) {
		t.Errorf("flag inputs = %v", got)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
index:
  top_k: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 || cfg.Index.TopK != 5 {
		t.Errorf("unexpected config: %+v %+v", cfg.Server, cfg.Index)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config")
	}
}

type fakeSource struct {
	posts []models.Post
	err   error
	got   models.SearchRequest
}

func (f *fakeSource) Fetch(ctx context.Context, req models.SearchRequest) ([]models.Post, error) {
	f.got = req
	return f.posts, f.err
}

func samplePosts() []models.Post {
	return []models.Post{
		{Title: "Funny cats", Body: "My cats are funny", URL: "https://reddit.com/r/cats/1", Score: 10, Subreddit: "cats"},
		{Title: "Dogs", Body: "Dogs playing outside", URL: "https://reddit.com/r/dogs/2", Score: 4, Subreddit: "dogs"},
		{Title: "Cats and dogs", Body: "", URL: "https://reddit.com/r/pets/3", Score: 7, Subreddit: "pets"},
	}
}

func TestCrawl_writesResults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results", "reddit_results.xlsx")
	src := &fakeSource{posts: samplePosts()}
	req := searchRequest(config.Default())

	n, err := crawl(context.Background(), src, req, out, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("crawl returned %d, want 3", n)
	}
	if src.got.Query != "Funny cats" || src.got.Subreddit != "all" || src.got.Limit != 1000 {
		t.Errorf("request = %+v", src.got)
	}
	posts, err := sheet.ReadPosts(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 3 || posts[2].Title != "Cats and dogs" || posts[0].Score != 10 {
		t.Errorf("read back %+v", posts)
	}
}

func TestCrawl_noResultsKeepsWorkbook(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reddit_results.xlsx")
	if err := sheet.WritePosts(out, samplePosts()); err != nil {
		t.Fatal(err)
	}

	n, err := crawl(context.Background(), &fakeSource{}, searchRequest(config.Default()), out, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("crawl returned %d, want 0", n)
	}

	c := newTestComponents(t)
	run, err := analyzeFile(context.Background(), c, analyzeRequest{InputPath: out, Query: "cats", TopK: 5})
	if err != nil {
		t.Fatal(err)
	}
	if run.Analysis.DocumentCount != 3 {
		t.Errorf("documents after empty crawl = %d, want 3", run.Analysis.DocumentCount)
	}
}

func TestCrawl_fetchError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reddit_results.xlsx")
	boom := errors.New("boom")
	if _, err := crawl(context.Background(), &fakeSource{err: boom}, models.SearchRequest{}, out, zap.NewNop()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("results workbook should not be written on failure: %v", err)
	}
}

func newTestComponents(t *testing.T) *Components {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	c := &Components{Storage: store, Engine: engine.New(), Logger: zap.NewNop()}
	t.Cleanup(c.Close)
	return c
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "reddit_results.xlsx")
	if err := sheet.WritePosts(input, samplePosts()); err != nil {
		t.Fatal(err)
	}
	c := newTestComponents(t)

	req := analyzeRequest{
		InputPath: input,
		Query:     "funny zebra",
		TopK:      10,
		Output: config.OutputConfig{
			VocabularyPath: filepath.Join(dir, "word_post_locations.xlsx"),
			ScoresPath:     filepath.Join(dir, "tfidf_scores.xlsx"),
		},
		Save: true,
	}
	run, err := analyzeFile(context.Background(), c, req)
	if err != nil {
		t.Fatal(err)
	}
	if run.ID == "" || run.Source != "file:reddit_results.xlsx" {
		t.Errorf("run = %+v", run)
	}
	a := run.Analysis
	if a.DocumentCount != 3 || a.TopK != 10 {
		t.Errorf("analysis header = %+v", a)
	}

	var cats *models.VocabularyRow
	for i := range a.Vocabulary {
		if a.Vocabulary[i].Term == "cats" {
			cats = &a.Vocabulary[i]
		}
	}
	if cats == nil || cats.PostsJoined() != "1,3" {
		t.Errorf("cats row = %+v in %+v", cats, a.Vocabulary)
	}

	if len(a.Scores) != 2 {
		t.Fatalf("scores = %+v", a.Scores)
	}
	if a.Scores[0].Term != "funny" || !a.Scores[0].Found || a.Scores[0].Score <= 0 {
		t.Errorf("funny = %+v", a.Scores[0])
	}
	if a.Scores[1].Term != "zebra" || a.Scores[1].Found {
		t.Errorf("zebra = %+v", a.Scores[1])
	}

	for _, p := range []string{req.Output.VocabularyPath, req.Output.ScoresPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected output workbook %s: %v", p, err)
		}
	}

	stored, err := c.Storage.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Analysis.Query != "funny zebra" || len(stored.Analysis.Vocabulary) != len(a.Vocabulary) {
		t.Errorf("stored analysis = %+v", stored.Analysis)
	}
}

func TestAnalyzeFile_noSave(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.xlsx")
	if err := sheet.WritePosts(input, samplePosts()); err != nil {
		t.Fatal(err)
	}
	c := newTestComponents(t)

	if _, err := analyzeFile(context.Background(), c, analyzeRequest{InputPath: input, Query: "cats", TopK: 2}); err != nil {
		t.Fatal(err)
	}
	n, err := c.Storage.CountRuns(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("CountRuns = %d, want 0 when Save is false", n)
	}
}

func TestAnalyzeFile_errors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.xlsx")
	if err := sheet.WritePosts(input, samplePosts()); err != nil {
		t.Fatal(err)
	}
	c := newTestComponents(t)

	if _, err := analyzeFile(context.Background(), c, analyzeRequest{InputPath: filepath.Join(dir, "missing.xlsx"), TopK: 5}); err == nil {
		t.Error("expected an error for a missing input workbook")
	}
	_, err := analyzeFile(context.Background(), c, analyzeRequest{InputPath: input, TopK: 0})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("k=0: err = %v, want ErrInvalidInput", err)
	}
}

func TestInputWatcher_reanalyzesOnWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "reddit_results.xlsx")
	c := newTestComponents(t)
	cfg := config.Default()
	cfg.Output = config.OutputConfig{}

	runs := make(chan *models.Run, 4)
	w := newInputWatcher(cfg, c, []string{input}, func(run *models.Run) { runs <- run })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := sheet.WritePosts(input, samplePosts()); err != nil {
		t.Fatal(err)
	}
	select {
	case run := <-runs:
		if run.Analysis.DocumentCount != 3 || run.Analysis.Query != "Funny cats" {
			t.Errorf("analysis = %+v", run.Analysis)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected a re-analysis after the workbook was written")
	}
}
