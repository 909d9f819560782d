package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Fields is the fixed CSV column order.
var Fields = []string{"Title", "Price", "Available", "Rating"}

// Config holds scraper configuration.
type Config struct {
	BaseURL      string
	Pages        int
	Delay        time.Duration
	Timeout      time.Duration
	OutputFile   string
	OutputFormat string // csv or dual
	LogFile      string
	LoggerName   string
	UserAgent    string
	MetricsAddr  string
	Verbose      bool
	Fields       []string
}

// DefaultConfig returns the defaults for the demo catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://books.toscrape.com/catalogue",
		Pages:        5,
		Delay:        400 * time.Millisecond,
		Timeout:      10 * time.Second,
		OutputFile:   "books.csv",
		OutputFormat: "csv",
		LogFile:      "books_scraper_errors.log",
		LoggerName:   "BookScraper",
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:      false,
		Fields:       append([]string(nil), Fields...),
	}
}

// New builds a configuration from the command line values and validates it.
func New(pages int, outputFile, logFile string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Pages = pages
	cfg.OutputFile = outputFile
	cfg.LogFile = logFile
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Pages < 0 {
		return fmt.Errorf("invalid pages: %d", c.Pages)
	}
	if c.Delay <= 0 || c.Delay >= 5*time.Second {
		return fmt.Errorf("delay must be between 0 and 5 seconds, got %s", c.Delay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if !strings.HasSuffix(c.OutputFile, ".csv") {
		return fmt.Errorf("invalid CSV file name: %q", c.OutputFile)
	}
	if !strings.HasSuffix(c.LogFile, ".log") {
		return fmt.Errorf("invalid log file name: %q", c.LogFile)
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if len(c.Fields) != len(Fields) {
		return fmt.Errorf("fields must be %v", Fields)
	}
	for i, f := range Fields {
		if c.Fields[i] != f {
			return fmt.Errorf("fields must be %v", Fields)
		}
	}

	return nil
}

// PageURL returns the catalog URL of page n.
func (c *Config) PageURL(n int) string {
	return fmt.Sprintf("%s/page-%d.html", strings.TrimSuffix(c.BaseURL, "/"), n)
}
