// Package main is the tango CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/tango/internal/cli"
	"github.com/hyperjump/tango/internal/config"
	"github.com/hyperjump/tango/internal/models"
	"github.com/hyperjump/tango/internal/server"
	"github.com/hyperjump/tango/internal/source"
	"github.com/hyperjump/tango/internal/storage"
	"github.com/hyperjump/tango/internal/watcher"
	"github.com/hyperjump/tango/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tango/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if neither exists the
// built-in defaults are used with credentials from the environment.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg := config.Default()
			config.ApplyEnv(cfg, os.Getenv)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "crawl":
		runCrawl()
	case "analyze":
		runAnalyze()
	case "run":
		runPipeline()
	case "server":
		runServer()
	case "watch":
		runWatch()
	case "runs":
		runRuns()
	case "version", "--version", "-v":
		fmt.Printf("tango version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are the flags every subcommand accepts.
type commonFlags struct {
	configPath *string
	debug      *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// load resolves the config and creates the logger, exiting on failure.
func (f commonFlags) load() (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(*f.configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *f.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolved == "" {
		logger.Debug("no config file found, using defaults")
	} else {
		logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	}
	return cfg, logger
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCrawl() {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	common := addCommonFlags(fs)
	subreddit := fs.String("subreddit", "", "subreddit to search (default from config, \"all\")")
	query := fs.String("query", "", "search query (default from config, \"Funny cats\")")
	limit := fs.Int("limit", 0, "maximum posts to fetch (default from config, 1000)")
	outPath := fs.String("out", "", "results workbook path (default from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := common.load()
	defer logger.Sync()
	applyCrawlFlags(cfg, *subreddit, *query, *limit, *outPath)

	ctx, stop := signalContext()
	defer stop()
	n, err := crawl(ctx, newRedditSource(cfg, logger), searchRequest(cfg), cfg.Output.ResultsPath, logger)
	if err != nil {
		if errors.Is(err, source.ErrUnauthorized) {
			fmt.Printf("Crawl failed: %v\nSet %s and %s (and optionally %s).\n", err, config.EnvClientID, config.EnvClientSecret, config.EnvUserAgent)
		} else {
			fmt.Printf("Crawl failed: %v\n", err)
		}
		os.Exit(1)
	}
	if n == 0 {
		fmt.Printf("No results found for %q in r/%s\n", cfg.Reddit.Query, cfg.Reddit.Subreddit)
		return
	}
	fmt.Printf("Saved %d posts to %s\n", n, cfg.Output.ResultsPath)
}

func applyCrawlFlags(cfg *config.Config, subreddit, query string, limit int, outPath string) {
	if subreddit != "" {
		cfg.Reddit.Subreddit = subreddit
	}
	if query != "" {
		cfg.Reddit.Query = query
	}
	if limit > 0 {
		cfg.Reddit.Limit = limit
	}
	if outPath != "" {
		cfg.Output.ResultsPath = outPath
	}
}

func runAnalyze() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	common := addCommonFlags(fs)
	input := fs.String("input", "", "results workbook to analyze (default from config)")
	query := fs.String("query", "", "query to score (default: positional args, else the crawl query)")
	k := fs.Int("k", 0, "number of top words to index (default from config, 15)")
	output := fs.String("output", "text", "output format: text or json")
	noSave := fs.Bool("no-save", false, "do not store the run")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg, logger := common.load()
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signalContext()
	defer stop()
	q := *query
	if q == "" {
		q = buildQuery(fs.Args())
	}
	req := buildAnalyzeRequest(cfg, *input, q, *k)
	req.Save = !*noSave
	run, err := analyzeFile(ctx, components, req)
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnalysis(os.Stdout, run.Analysis, format); err != nil {
		fmt.Printf("Failed to write output: %v\n", err)
		os.Exit(1)
	}
}

// buildAnalyzeRequest fills unset values from cfg.
func buildAnalyzeRequest(cfg *config.Config, input, query string, k int) analyzeRequest {
	req := analyzeRequest{
		InputPath: input,
		Query:     query,
		TopK:      k,
		Output:    cfg.Output,
		Save:      true,
	}
	if req.InputPath == "" {
		req.InputPath = cfg.Output.ResultsPath
	}
	if req.Query == "" {
		req.Query = cfg.Reddit.Query
	}
	if req.TopK <= 0 {
		req.TopK = cfg.Index.TopK
	}
	return req
}

// runPipeline crawls and then analyzes. A failed crawl is reported and the analysis
// runs on whatever results workbook already exists.
func runPipeline() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	common := addCommonFlags(fs)
	k := fs.Int("k", 0, "number of top words to index (default from config, 15)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg, logger := common.load()
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signalContext()
	defer stop()
	if _, err := crawl(ctx, newRedditSource(cfg, logger), searchRequest(cfg), cfg.Output.ResultsPath, logger); err != nil {
		logger.Error("crawl failed, analyzing existing results", zap.Error(err))
	}
	run, err := analyzeFile(ctx, components, buildAnalyzeRequest(cfg, "", "", *k))
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnalysis(os.Stdout, run.Analysis, format); err != nil {
		fmt.Printf("Failed to write output: %v\n", err)
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	common := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	cfg, logger := common.load()
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Inputs) > 0 {
		w := newInputWatcher(cfg, components, cfg.Watch.Inputs, nil)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
		w.SyncExistingFiles()
	}

	srv := server.NewServer(components.Engine, components.Storage, cfg, components.Metrics, utils.Named(logger, "server"))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	common := addCommonFlags(fs)
	var inputs stringList
	fs.Var(&inputs, "input", "results workbook to watch (repeatable; default from config)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg, logger := common.load()
	defer logger.Sync()

	files := watchInputs(cfg, inputs)
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signalContext()
	defer stop()
	w := newInputWatcher(cfg, components, files, func(run *models.Run) {
		_ = cli.WriteAnalysis(os.Stdout, run.Analysis, format)
	})
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", strings.Join(w.Files(), ", "))
	w.SyncExistingFiles()
	<-ctx.Done()
}

// watchInputs returns the flag inputs, else the configured inputs, else the results workbook.
func watchInputs(cfg *config.Config, flagInputs []string) []string {
	if len(flagInputs) > 0 {
		return flagInputs
	}
	if len(cfg.Watch.Inputs) > 0 {
		return cfg.Watch.Inputs
	}
	return []string{cfg.Output.ResultsPath}
}

// newInputWatcher re-analyzes a workbook each time it changes and stores the run.
func newInputWatcher(cfg *config.Config, c *Components, files []string, onResult func(*models.Run)) *watcher.Watcher {
	logger := c.Logger
	return watcher.NewWatcher(files, func(path string) {
		req := buildAnalyzeRequest(cfg, path, "", 0)
		run, err := analyzeFile(context.Background(), c, req)
		if err != nil {
			logger.Warn("watch analyze failed", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("re-analyzed input", zap.String("path", path), zap.String("run_id", run.ID), zap.Int("documents", run.Analysis.DocumentCount))
		if onResult != nil {
			onResult(run)
		}
	}, watcher.WithLogger(utils.Named(logger, "watcher")))
}

func runRuns() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "text", "output format: text or json")
	limit := fs.Int("limit", 20, "number of runs to list")
	offset := fs.Int("offset", 0, "number of runs to skip")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg, logger := common.load()
	defer logger.Sync()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open run store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	ctx := context.Background()

	rest := fs.Args()
	switch {
	case len(rest) == 0:
		runs, err := store.ListRuns(ctx, *offset, *limit)
		if err != nil {
			fmt.Printf("Failed to list runs: %v\n", err)
			os.Exit(1)
		}
		total, err := store.CountRuns(ctx)
		if err != nil {
			fmt.Printf("Failed to count runs: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteRuns(os.Stdout, runs, total, format)
	case len(rest) == 2 && rest[0] == "show":
		run, err := store.GetRun(ctx, rest[1])
		if err != nil {
			fmt.Printf("Failed to load run: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteAnalysis(os.Stdout, run.Analysis, format)
	case len(rest) == 2 && rest[0] == "delete":
		if err := store.DeleteRun(ctx, rest[1]); err != nil {
			fmt.Printf("Deletion failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Run deleted: %s\n", rest[1])
	default:
		fmt.Println("Usage: tango runs [flags] [show <id> | delete <id>]")
		os.Exit(1)
	}
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front so that flag.Parse sees them. The flag package stops at
// the first non-flag argument, so "tango analyze funny cats -k 5" would otherwise
// leave -k unparsed. Positional arguments keep their relative order. A flag
// without "=" takes the following argument as its value unless that argument is
// itself a flag; boolean flags must therefore come last or use -flag=true.
func argsReorder(args []string) []string {
	flags := make([]string, 0, len(args))
	positional := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			flags = append(flags, "--")
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if strings.Contains(a, "=") || boolFlags[strings.TrimLeft(a, "-")] {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

// boolFlags are the subcommand flags that take no value.
var boolFlags = map[string]bool{"debug": true, "no-save": true}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func printUsage() {
	fmt.Println(`tango - Reddit post crawler, inverted index and TF-IDF scorer

Usage:
  tango crawl [flags]               Search Reddit and save the results workbook
  tango analyze [flags] [query]     Index the results workbook and score a query
  tango run [flags]                 Crawl, then analyze
  tango server [flags]              Start the HTTP server
  tango watch [flags]               Re-analyze input workbooks when they change
  tango runs [flags] [show|delete <id>]  List, show or delete stored runs
  tango version                     Show version
  tango help                        Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/tango/config.yaml)
  --debug            Enable debug logging

Crawl Flags:
  --subreddit string  Subreddit to search (default: all)
  --query string      Search query (default: "Funny cats")
  --limit int         Maximum posts to fetch (default: 1000)
  --out string        Results workbook path (default: ./reddit_results.xlsx)

Analyze Flags:
  --input string     Results workbook to analyze (default: results_path from config)
  --query string     Query to score (default: positional args, else the crawl query)
  --k int            Number of top words in the inverted index (default: 15)
  --output string    Output format: text or json (default: text)
  --no-save          Do not store the run

Watch Flags:
  --input string     Workbook to watch (repeatable)
  --output string    Output format: text or json

Environment:
  REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USER_AGENT override the reddit section of the config.

Examples:
  tango crawl --query "Funny cats" --limit 500
  tango analyze funny cats
  tango analyze --k 20 --output json "cats dogs"
  tango run
  tango runs --output json
  tango runs show 6f1c...`)
}
