package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yingtu35/link-verifier/internal/config"
	"github.com/yingtu35/link-verifier/internal/export"
	"github.com/yingtu35/link-verifier/internal/logging"
	"github.com/yingtu35/link-verifier/internal/webscraper"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootLogger reports problems that happen before the run log exists.
var bootLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
	With().Timestamp().Logger()

func runVerify(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLogger.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", rootFlags.configPath).Msg("using default settings")
	}
	cfg.LoadFromEnv()
	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingSite) {
			bootLogger.Error().Msg("Exiting due to missing or invalid config.")
			return nil
		}
		return err
	}
	policy, err := webscraper.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}

	start := time.Now()
	logger, logFile, err := logging.Setup(cfg, start)
	if logFile != nil {
		defer logFile.Close()
	}
	if err != nil {
		bootLogger.Warn().Err(err).Msg("logging setup")
		if logFile == nil {
			logger = bootLogger
		}
	}

	session, err := webscraper.OpenSession(cfg.Driver, webscraper.SessionOptions{
		Headless:        cfg.Headless,
		PageLoadTimeout: cfg.PageLoadTimeout.Duration,
		UserAgent:       cfg.UserAgent,
	})
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Driver).Msg("could not start browser session")
		return fmt.Errorf("open %s session: %w", cfg.Driver, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error().Err(err).Msg("closing browser session")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := webscraper.NewHTTPStatusChecker(webscraper.StatusCheckerOptions{
		Timeout:       cfg.RequestTimeout.Duration,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff.Duration,
		RequestRate:   cfg.RequestRate,
		UserAgent:     cfg.UserAgent,
	})
	results := webscraper.NewResults()
	hunter := webscraper.NewHunter(session, checker,
		webscraper.MultiReporter{webscraper.NewLogReporter(logger), results},
		logger,
		webscraper.Options{
			MaxDepth:      cfg.MaxDepth,
			Policy:        policy,
			Dedupe:        cfg.Dedupe,
			ReadyTimeout:  cfg.ReadyTimeout.Duration,
			IframeTimeout: cfg.IframeTimeout.Duration,
		})

	summary := hunter.Hunt(ctx, cfg.Site)
	elapsed := time.Since(start)
	logger.Info().
		Str("run_id", summary.RunID).
		Int("pages", summary.PagesVisited).
		Int("page_failures", summary.PageFailures).
		Int("links", summary.LinksChecked).
		Int("healthy", summary.Healthy).
		Int("unhealthy", summary.Unhealthy).
		Int("skipped", summary.Skipped).
		Dur("elapsed", elapsed).
		Msg("run finished")

	out := cmd.OutOrStdout()
	results.PrintResults(out)
	fmt.Fprintf(out, "Total Hunting Time: %s\n", elapsed)

	if cfg.ReportFile != "" {
		exporter, err := export.New(cfg.ReportFormat)
		if err != nil {
			return err
		}
		if err := exporter.Export(results, cfg.ReportFile); err != nil {
			logger.Error().Err(err).Str("file", cfg.ReportFile).Msg("export failed")
			return err
		}
	}
	return ctx.Err()
}
