package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-books-catalog/config"
	"github.com/aluiziolira/go-scrape-books-catalog/models"
	"github.com/aluiziolira/go-scrape-books-catalog/parser"
)

var spinner = []string{"|", "/", "―", "\\", "|", "/", "―", "\\"}

// Scraper walks the catalog pages one at a time and collects books.
type Scraper struct {
	cfg       *config.Config
	fetcher   *Fetcher
	Metrics   *Metrics
	logger    *slog.Logger
	out       io.Writer
	transport http.RoundTripper
	sleep     func(context.Context, time.Duration) error
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// WithOutput sets where console progress is written.
func WithOutput(w io.Writer) Option {
	return func(s *Scraper) {
		s.out = w
	}
}

// WithTransport replaces the fetcher's HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Scraper) {
		s.transport = rt
	}
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Scraper{
		cfg:     cfg,
		Metrics: NewMetrics(),
		logger:  slog.Default(),
		out:     os.Stdout,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fetcher = NewFetcher(cfg, s.Metrics, s.logger)
	if s.transport != nil {
		s.fetcher.collector.WithTransport(s.transport)
	}
	return s, nil
}

// progress is the per-run extraction counter behind the console spinner.
type progress struct {
	count int
	out   io.Writer
}

func (p *progress) show() {
	fmt.Fprintf(p.out, "[%s] Extracting book %d\r", spinner[p.count%len(spinner)], p.count+1)
}

// Run fetches pages 1..cfg.Pages in order and returns every book extracted.
// Failed pages and listings are logged and skipped. A cancelled ctx stops the
// loop early; the books collected so far are returned with ctx.Err().
func (s *Scraper) Run(ctx context.Context) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.fetcher.Close()

	result := &models.ScrapeResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	prog := &progress{out: s.out}

	s.logger.Info("Book scraping process started", slog.Int("pages", s.cfg.Pages))

	for page := 1; page <= s.cfg.Pages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := s.cfg.PageURL(page)
		fmt.Fprintf(s.out, "Scraping page %s\n", pageURL)
		result.PageCount++

		doc, err := s.fetcher.Fetch(pageURL)
		if err != nil {
			s.Metrics.IncPage("failed")
			result.FailedPages = append(result.FailedPages, pageURL)
			result.ErrorsByType[errorTypeLabel(err)]++
			s.logger.Warn("page could not be fetched", slog.String("url", pageURL))
			continue
		}
		s.Metrics.IncPage("fetched")
		s.logger.Info("page fetched", slog.String("url", pageURL))

		books, skipped := s.scrapePage(ctx, doc, prog)
		result.Books = append(result.Books, books...)
		result.SkippedItems += skipped
		s.logger.Info("books added",
			slog.String("url", pageURL),
			slog.Int("books", len(books)),
			slog.Int("skipped", skipped),
		)

		if err := s.sleep(ctx, s.cfg.Delay); err != nil {
			break
		}
	}

	result.EndTime = time.Now()
	if err := ctx.Err(); err != nil {
		s.logger.Warn("scrape interrupted", slog.Int("books", len(result.Books)), slog.Any("error", err))
		return result, err
	}
	s.logger.Info("Books information collected", slog.Int("books", len(result.Books)))
	return result, nil
}

func (s *Scraper) scrapePage(ctx context.Context, doc *goquery.Document, prog *progress) ([]*models.Book, int) {
	var books []*models.Book
	skipped := 0
	doc.Find(parser.ListingSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if book := s.extract(sel, prog); book != nil {
			books = append(books, book)
		} else {
			skipped++
		}
		return s.sleep(ctx, s.cfg.Delay) == nil
	})
	return books, skipped
}

// extract runs the extractor over one listing, printing progress and
// logging the reason a listing is dropped.
func (s *Scraper) extract(sel *goquery.Selection, prog *progress) *models.Book {
	prog.show()

	book, err := parser.ExtractBook(sel)
	if err != nil {
		reason := skipReason(err)
		s.Metrics.IncSkipped(reason)
		s.logger.Warn("listing skipped", slog.String("reason", reason), slog.Any("error", err))
		return nil
	}

	prog.count++
	s.Metrics.IncItems()
	return book
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrInvalidPrice), errors.Is(err, models.ErrNonFinitePrice):
		return "invalid_price"
	case errors.Is(err, parser.ErrMissingRating):
		return "missing_rating"
	case errors.Is(err, models.ErrNegativePrice):
		return "negative_price"
	default:
		return "other"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
