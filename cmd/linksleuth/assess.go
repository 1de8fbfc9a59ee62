package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/linksleuth/linksleuth/internal/cache"
	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/engine"
	"github.com/linksleuth/linksleuth/internal/infra"
	"github.com/linksleuth/linksleuth/internal/linkcheck"
	seclog "github.com/linksleuth/linksleuth/internal/log"
	"github.com/linksleuth/linksleuth/internal/report"
	"github.com/linksleuth/linksleuth/internal/score"
	"github.com/linksleuth/linksleuth/internal/source"
)

// NewAssessCmd creates the assess command.
func NewAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess [url...]",
		Short: "Assess the risk of one or more URLs",
		Long: `Assess combines multiple evidence channels into a risk verdict per URL:

- Real-time threat sources (reputation list, multi-engine scan, blacklists)
- Hosting infrastructure (TLS certificate, IP geolocation, CDN, domain age)
- Link heuristics (domain masking, punycode, redirects, tracking parameters)

Each triggered indicator adds its weight to a 0-100 score, which maps to
LOW, MEDIUM, or HIGH risk. Fresh results are served from the local cache.

Examples:
  # Assess a single URL
  linksleuth assess https://example.com/login

  # Assess several URLs concurrently
  linksleuth assess site1.example site2.example site3.example

  # Output JSON for tool integration
  linksleuth assess --json https://example.com

  # Write a Markdown report to a file
  linksleuth assess --markdown -o report.md https://example.com

  # Skip the result cache
  linksleuth assess --no-cache https://example.com

Configuration file (.linksleuth) example:
  timeout: 8s
  cacheTTL: 30m
  safeBrowsingAPIKey: "your-key"
  policy:
    highThreshold: 70`,
		Args: cobra.ArbitraryArgs,
		RunE: runAssessCmd,
	}

	// Assessment behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each individual network call")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent assessments")
	cmd.Flags().Bool("no-cache", false,
		"Bypass the result cache entirely")
	cmd.Flags().String("db-dir", "",
		"Result cache directory (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linksleuth in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// assessOptions holds flag state that is not part of the engine Config.
type assessOptions struct {
	noCache  bool
	json     bool
	markdown bool
	output   string
}

// runAssessCmd executes the assess command.
func runAssessCmd(cmd *cobra.Command, args []string) error {
	cfg, opts, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	if len(args) == 0 {
		return config.ErrNoTarget
	}

	// Set up structured logging with secret redaction
	logger := seclog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAssess(ctx, cfg, opts, args, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command) (*config.Config, *assessOptions, error) {
	cfg := config.NewConfig()
	opts := &assessOptions{}

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, nil, err
	}

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}

	// Load overrides from the config file.
	// If the user explicitly specified a path, error when it is missing.
	// Otherwise silently run on defaults.
	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if configPathFlag != "" {
		return nil, nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	// Flags override the config file.
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	opts.noCache, err = cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, nil, err
	}

	opts.json, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, nil, err
	}

	opts.markdown, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, nil, err
	}

	opts.output, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, opts, nil
}

// buildCheckers wires a checker per configured threat source. Sources whose
// API keys are missing are skipped rather than degraded, so a keyless run
// still gets blacklist coverage.
func buildCheckers(cfg *config.Config, logger *slog.Logger) []source.Checker {
	var checkers []source.Checker

	if cfg.SafeBrowsingAPIKey != "" {
		checkers = append(checkers, source.NewSafeBrowsingChecker(cfg.SafeBrowsingAPIKey,
			source.WithSafeBrowsingTimeout(cfg.Timeout),
			source.WithSafeBrowsingLogger(logger),
		))
	} else {
		logger.Debug("reputation checker disabled", "reason", "no API key configured")
	}

	if cfg.ScanAPIKey != "" {
		checkers = append(checkers, source.NewScanChecker(cfg.ScanAPIKey,
			source.WithScanTimeout(cfg.Timeout),
			source.WithScanLogger(logger),
		))
	} else {
		logger.Debug("scan checker disabled", "reason", "no API key configured")
	}

	if len(cfg.BlacklistFeeds) > 0 {
		checkers = append(checkers, source.NewBlacklistChecker(cfg.BlacklistFeeds,
			source.WithBlacklistTimeout(cfg.Timeout),
			source.WithBlacklistLogger(logger),
		))
	}

	return checkers
}

// buildEngine assembles the assessment engine from the configuration.
// A nil store disables result caching.
func buildEngine(cfg *config.Config, store *cache.Store, logger *slog.Logger) *engine.Engine {
	engineOpts := []engine.Option{
		engine.WithCheckers(buildCheckers(cfg, logger)...),
		engine.WithInspector(infra.NewInspector(
			infra.WithTimeout(cfg.Timeout),
			infra.WithLogger(logger),
		)),
		engine.WithAnalyzer(linkcheck.NewAnalyzer(
			linkcheck.WithTimeout(cfg.Timeout),
			linkcheck.WithMaxBodySize(cfg.MaxBodySize),
			linkcheck.WithUserAgent(cfg.UserAgent),
			linkcheck.WithLogger(logger),
		)),
		engine.WithScorer(score.NewScorer(cfg.Policy)),
		engine.WithLogger(logger),
	}
	if store != nil {
		engineOpts = append(engineOpts, engine.WithStore(store))
	}

	return engine.New(engineOpts...)
}

// runAssess executes the assessment for every target URL.
func runAssess(ctx context.Context, cfg *config.Config, opts *assessOptions, targets []string, logger *slog.Logger) error {
	var store *cache.Store
	if !opts.noCache {
		storeOpts := cache.DefaultOptions()
		storeOpts.TTL = cfg.CacheTTL
		var err error
		store, err = cache.Open(cfg.DBDir, storeOpts)
		if err != nil {
			return fmt.Errorf("failed to open result cache: %w", err)
		}
		defer store.Close()
		logger.Debug("result cache opened", "dir", cfg.DBDir, "ttl", cfg.CacheTTL)
	}

	eng := buildEngine(cfg, store, logger)

	writer, closeOutput, err := buildWriter(opts, cfg.Verbose)
	if err != nil {
		return err
	}
	defer closeOutput()

	if len(targets) == 1 || cfg.BatchSize <= 1 {
		return runSequential(ctx, eng, writer, targets, logger)
	}
	return runBatch(ctx, eng, writer, targets, cfg.BatchSize, logger)
}

// runSequential assesses targets one at a time.
func runSequential(ctx context.Context, eng *engine.Engine, writer report.Writer, targets []string, logger *slog.Logger) error {
	var failed int
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ra, err := eng.Assess(ctx, target)
		if err != nil {
			logger.Error("assessment failed", "url", target, "error", err)
			fmt.Fprintf(os.Stderr, "Assessment error for %s: %v\n", target, err)
			failed++
			continue
		}

		if _, err := writer.Write(ra); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if failed == len(targets) {
		return errors.New("all assessments failed")
	}
	return nil
}

// runBatch assesses targets concurrently with a bounded worker count.
// Reports are written from the completing goroutines under a mutex, so
// their order follows completion, not the argument order.
func runBatch(ctx context.Context, eng *engine.Engine, writer report.Writer, targets []string, concurrency int, logger *slog.Logger) error {
	fmt.Fprintf(os.Stderr, "Assessing %d URLs (concurrency: %d)...\n", len(targets), concurrency)
	startTime := time.Now()

	var mu sync.Mutex
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, target := range targets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			ra, err := eng.Assess(gctx, target)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("assessment failed", "url", target, "error", err)
				fmt.Fprintf(os.Stderr, "Assessment error for %s: %v\n", target, err)
				failed++
				return nil // one bad URL must not cancel the rest
			}
			if _, err := writer.Write(ra); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()
	fmt.Fprintf(os.Stderr, "Done in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed == len(targets) {
		return errors.New("all assessments failed")
	}
	return nil
}

// buildWriter selects the report writer and output destination from flags.
// The returned closeOutput is always safe to call.
func buildWriter(opts *assessOptions, verbose bool) (report.Writer, func(), error) {
	output := os.Stdout
	closeOutput := func() {}

	if opts.output != "" {
		dir := filepath.Dir(opts.output)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may name suspicious URLs the user was sent; keep them
		// readable by the owner only.
		f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		output = f
		closeOutput = func() { _ = f.Close() }
	}

	switch {
	case opts.json:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()), closeOutput, nil
	case opts.markdown:
		return report.NewMarkdownWriter(output), closeOutput, nil
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(verbose)), closeOutput, nil
	}
}
