package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linksleuth/linksleuth/internal/cache"
	"github.com/linksleuth/linksleuth/internal/config"
	seclog "github.com/linksleuth/linksleuth/internal/log"
	"github.com/linksleuth/linksleuth/internal/probe"
)

// NewSweepCmd creates the sweep command.
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Clean up the result cache",
		Long: `Sweep walks the result cache and handles entries whose TTL has passed:
URLs that no longer respond are evicted, URLs that still respond are
re-assessed so the cache holds a fresh verdict.

By default sweep runs a single pass and exits. With --daemon it stays
resident, fires at the next local midnight, and repeats on the configured
interval until interrupted.

Examples:
  # One cleanup pass
  linksleuth sweep

  # Run as a background maintenance daemon
  linksleuth sweep --daemon`,
		Args: cobra.NoArgs,
		RunE: runSweepCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each individual network call")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linksleuth in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Result cache directory (default: XDG data directory)")
	cmd.Flags().BoolP("daemon", "d", false,
		"Keep running, sweeping at midnight and then on the configured interval")

	return cmd
}

// runSweepCmd executes the sweep command.
func runSweepCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildSweepConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	daemon, err := cmd.Flags().GetBool("daemon")
	if err != nil {
		return err
	}

	logger := seclog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runSweep(ctx, cfg, daemon, logger)
}

// buildSweepConfig creates a Config from the sweep command's flags and the
// optional configuration file. Sweep never creates the cache database: a
// missing cache means there is nothing to clean.
func buildSweepConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runSweep opens the cache and runs the sweeper, once or as a daemon.
func runSweep(ctx context.Context, cfg *config.Config, daemon bool, logger *slog.Logger) error {
	storeOpts := cache.DefaultOptions()
	storeOpts.CreateIfNotExists = false
	storeOpts.TTL = cfg.CacheTTL

	store, err := cache.Open(cfg.DBDir, storeOpts)
	if err != nil {
		return fmt.Errorf("failed to open result cache (run an assessment first): %w", err)
	}
	defer store.Close()

	// Expired entries are refreshed through the same engine the assess
	// command uses, writing back into the already open store.
	eng := buildEngine(cfg, store, logger)

	sweeper := cache.NewSweeper(store,
		probe.NewProber(
			probe.WithTimeout(cfg.Timeout),
			probe.WithLogger(logger),
		),
		cache.WithRefresher(eng),
		cache.WithInterval(cfg.SweepInterval),
		cache.WithSweepLogger(logger),
	)

	if daemon {
		logger.Info("sweep daemon started",
			"interval", cfg.SweepInterval, "ttl", cfg.CacheTTL)
		err := sweeper.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return sweeper.Sweep(ctx)
}
