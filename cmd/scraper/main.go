package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-books-catalog/config"
	"github.com/aluiziolira/go-scrape-books-catalog/logging"
	"github.com/aluiziolira/go-scrape-books-catalog/pipeline"
	"github.com/aluiziolira/go-scrape-books-catalog/report"
	"github.com/aluiziolira/go-scrape-books-catalog/scraper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options mirrors the command line flags.
type options struct {
	csvFile     string
	logFile     string
	pages       int
	baseURL     string
	delay       time.Duration
	timeout     time.Duration
	format      string
	metricsAddr string
	verbose     bool
}

func (o options) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.OutputFile = o.csvFile
	cfg.LogFile = o.logFile
	cfg.Pages = o.pages
	cfg.BaseURL = o.baseURL
	cfg.Delay = o.delay
	cfg.Timeout = o.timeout
	cfg.OutputFormat = strings.ToLower(o.format)
	cfg.MetricsAddr = o.metricsAddr
	cfg.Verbose = o.verbose
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newRootCmd builds the CLI. A nil transport uses the network.
func newRootCmd(transport http.RoundTripper) *cobra.Command {
	defaults := config.DefaultConfig()
	opts := options{}

	cmd := &cobra.Command{
		Use:          "scraper",
		Short:        "Scrape the books catalog into a CSV file and print price statistics.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			start := time.Now()
			err = run(cmd.Context(), cfg, out, transport)
			fmt.Fprintf(out, "Process lasted %.2f seconds\n", time.Since(start).Seconds())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.csvFile, "csv", "c", defaults.OutputFile, "Output CSV file")
	flags.StringVarP(&opts.logFile, "log", "l", defaults.LogFile, "Log file")
	flags.IntVarP(&opts.pages, "pages", "n", defaults.Pages, "Number of catalog pages to scrape")
	flags.StringVar(&opts.baseURL, "base-url", defaults.BaseURL, "Catalog base URL")
	flags.DurationVar(&opts.delay, "delay", defaults.Delay, "Pause after every listing and page (0s < delay < 5s)")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "HTTP request timeout")
	flags.StringVar(&opts.format, "format", defaults.OutputFormat, "Output format: csv or dual (csv plus jsonl)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, out io.Writer, transport http.RoundTripper) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger, logFile, err := logging.Open(cfg.LogFile, cfg.LoggerName, level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	fmt.Fprintln(out, "Starting to scraper...")

	scraperOpts := []scraper.Option{scraper.WithLogger(logger), scraper.WithOutput(out)}
	if transport != nil {
		scraperOpts = append(scraperOpts, scraper.WithTransport(transport))
	}
	s, err := scraper.NewScraper(cfg, scraperOpts...)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		logger.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	result, err := s.Run(ctx)
	fmt.Fprintln(out)
	if err != nil {
		fmt.Fprintf(out, "Scraping interrupted, keeping %d books\n", len(result.Books))
	}

	if err := pipeline.SaveBooks(result.Books, cfg, out, logger); err != nil {
		logger.Error("saving books failed", slog.Any("error", err))
		return fmt.Errorf("save books: %w", err)
	}
	logger.Info("Book scraping process completed",
		slog.Int("books", len(result.Books)),
		slog.Int("failed_pages", len(result.FailedPages)),
		slog.Int("skipped_items", result.SkippedItems),
		slog.Duration("duration", result.Duration()),
	)

	fmt.Fprintf(out, "Scraping completed! Total books: %d\n\n", len(result.Books))
	report.Print(out, report.Summarize(result.Books))
	return nil
}
