package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/report"
)

// TestNewAssessCmd tests the assess command creation.
func TestNewAssessCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAssessCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "assess [url...]" {
			t.Errorf("expected use 'assess [url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-cache flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-cache")
		if flag == nil {
			t.Fatal("expected no-cache flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has db-dir flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag == nil {
			t.Fatal("expected db-dir flag")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewAssessCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		assessCmd, _, err := root.Find([]string{"assess"})
		if err != nil {
			t.Fatalf("failed to find assess command: %v", err)
		}

		result := getVerboseFlag(assessCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
// HOME and the working directory are pinned so a developer's own
// .linksleuth file cannot leak into the defaults.
func TestBuildConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAssessCmd()
		cfg, opts, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected timeout %v, got %v", config.DefaultTimeout, cfg.Timeout)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected batch size %d, got %d", config.DefaultBatchSize, cfg.BatchSize)
		}
		if opts.noCache {
			t.Error("expected noCache to be false")
		}
		if opts.json || opts.markdown {
			t.Error("expected report format flags to be false")
		}
	})

	t.Run("builds config with custom timeout", func(t *testing.T) {
		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("timeout", "3s")
		cfg, _, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Timeout != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", cfg.Timeout)
		}
	})

	t.Run("builds config with custom batch size", func(t *testing.T) {
		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("batch", "5")
		cfg, _, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BatchSize != 5 {
			t.Errorf("expected batch size 5, got %d", cfg.BatchSize)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("json", "true")
		_, opts, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !opts.json {
			t.Error("expected json to be true")
		}
	})

	t.Run("builds config with db-dir override", func(t *testing.T) {
		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("db-dir", "/tmp/linksleuth-test")
		cfg, _, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.DBDir != "/tmp/linksleuth-test" {
			t.Errorf("expected DBDir '/tmp/linksleuth-test', got %q", cfg.DBDir)
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "linksleuth.yaml")

		content := []byte(`
timeout: 3s
cacheTTL: 10m
policy:
  highThreshold: 75
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, _, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Timeout != 3*time.Second {
			t.Errorf("expected timeout 3s from config file, got %v", cfg.Timeout)
		}
		if cfg.CacheTTL != 10*time.Minute {
			t.Errorf("expected cache TTL 10m from config file, got %v", cfg.CacheTTL)
		}
		if cfg.Policy.HighThreshold != 75 {
			t.Errorf("expected high threshold 75, got %d", cfg.Policy.HighThreshold)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, _, err := buildConfig(cmd)
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewAssessCmd()
		_ = cmd.Flags().Set("config", "/nonexistent/path/.linksleuth")
		_, _, err := buildConfig(cmd)
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})

	t.Run("missing implicit config file falls back to defaults", func(t *testing.T) {
		cmd := NewAssessCmd()
		cfg, _, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.CacheTTL != config.DefaultCacheTTL {
			t.Errorf("expected default cache TTL, got %v", cfg.CacheTTL)
		}
	})
}

// TestRunAssessCmdValidation tests the early argument validation in the
// assess command, before any network activity.
func TestRunAssessCmdValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	t.Run("rejects conflicting report formats", func(t *testing.T) {
		cmd := NewAssessCmd()
		cmd.SetArgs([]string{"--json", "--markdown", "https://example.com"})

		err := cmd.Execute()
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("rejects missing target", func(t *testing.T) {
		cmd := NewAssessCmd()
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		if !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})
}

// TestBuildCheckers tests threat source wiring from the configuration.
func TestBuildCheckers(t *testing.T) {
	t.Parallel()

	t.Run("blacklist only without API keys", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.SafeBrowsingAPIKey = ""
		cfg.ScanAPIKey = ""

		checkers := buildCheckers(cfg, slog.Default())
		if len(checkers) != 1 {
			t.Fatalf("expected 1 checker, got %d", len(checkers))
		}
		if checkers[0].Name() != "blacklist" {
			t.Errorf("expected blacklist checker, got %q", checkers[0].Name())
		}
	})

	t.Run("all sources with API keys", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.SafeBrowsingAPIKey = "sb-key"
		cfg.ScanAPIKey = "scan-key"

		checkers := buildCheckers(cfg, slog.Default())
		if len(checkers) != 3 {
			t.Fatalf("expected 3 checkers, got %d", len(checkers))
		}
	})

	t.Run("no checkers without keys and feeds", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.SafeBrowsingAPIKey = ""
		cfg.ScanAPIKey = ""
		cfg.BlacklistFeeds = nil

		checkers := buildCheckers(cfg, slog.Default())
		if len(checkers) != 0 {
			t.Fatalf("expected 0 checkers, got %d", len(checkers))
		}
	})
}

// TestBuildWriter tests report writer selection.
func TestBuildWriter(t *testing.T) {
	t.Parallel()

	t.Run("defaults to simple writer", func(t *testing.T) {
		t.Parallel()
		w, closeOutput, err := buildWriter(&assessOptions{}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeOutput()

		if _, ok := w.(*report.SimpleWriter); !ok {
			t.Errorf("expected *report.SimpleWriter, got %T", w)
		}
	})

	t.Run("selects JSON writer", func(t *testing.T) {
		t.Parallel()
		w, closeOutput, err := buildWriter(&assessOptions{json: true}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeOutput()

		if _, ok := w.(*report.FullJSONWriter); !ok {
			t.Errorf("expected *report.FullJSONWriter, got %T", w)
		}
	})

	t.Run("selects Markdown writer", func(t *testing.T) {
		t.Parallel()
		w, closeOutput, err := buildWriter(&assessOptions{markdown: true}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeOutput()

		if _, ok := w.(*report.MarkdownWriter); !ok {
			t.Errorf("expected *report.MarkdownWriter, got %T", w)
		}
	})

	t.Run("creates output file and parent directories", func(t *testing.T) {
		t.Parallel()
		outputPath := filepath.Join(t.TempDir(), "reports", "out.md")

		_, closeOutput, err := buildWriter(&assessOptions{markdown: true, output: outputPath}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		closeOutput()

		if _, err := os.Stat(outputPath); err != nil {
			t.Errorf("expected output file to exist: %v", err)
		}
	})
}
