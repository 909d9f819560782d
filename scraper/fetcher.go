package scraper

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-books-catalog/config"
)

const (
	ctxStart    = "start"
	ctxDocument = "document"
	ctxStatus   = "status"
	ctxParseErr = "parse_error"
)

// Fetcher issues one GET per catalog page over a single reused collector.
type Fetcher struct {
	collector *colly.Collector
	transport *http.Transport
	metrics   *Metrics
	logger    *slog.Logger
}

// NewFetcher builds a synchronous collector configured from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	collector.SetRequestTimeout(cfg.Timeout)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	collector.WithTransport(transport)

	f := &Fetcher{
		collector: collector,
		transport: transport,
		metrics:   metrics,
		logger:    logger.With("component", "fetcher"),
	}
	f.configureHandlers()
	return f
}

func (f *Fetcher) configureHandlers() {
	f.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		f.metrics.IncRequest("started")
		f.logger.Debug("fetching page", slog.String("url", r.URL.String()))
	})

	f.collector.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
		if r.StatusCode != http.StatusOK {
			r.Ctx.Put(ctxStatus, r.StatusCode)
			return
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			r.Ctx.Put(ctxParseErr, err)
			return
		}
		r.Ctx.Put(ctxDocument, doc)
	})
}

// Fetch requests pageURL once. A 200 response yields its parsed document.
// Any other status, transport failure or unparseable body is logged and
// returned as a classified error; the page carries no data.
func (f *Fetcher) Fetch(pageURL string) (*goquery.Document, error) {
	ctx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, pageURL, nil, ctx, nil); err != nil {
		classified := classifyError(err, 0)
		f.record(classified)
		f.logger.Error("request error",
			slog.String("url", pageURL),
			slog.String("category", errorTypeLabel(classified)),
			slog.Any("error", err),
		)
		return nil, classified
	}

	if status, ok := ctx.GetAny(ctxStatus).(int); ok {
		classified := classifyError(nil, status)
		f.record(classified)
		f.logger.Warn("request failed",
			slog.Int("status", status),
			slog.String("url", pageURL),
		)
		return nil, classified
	}

	if err, ok := ctx.GetAny(ctxParseErr).(error); ok {
		wrapped := fmt.Errorf("parse document: %w", err)
		f.record(wrapped)
		f.logger.Error("unparseable page", slog.String("url", pageURL), slog.Any("error", err))
		return nil, wrapped
	}

	doc, ok := ctx.GetAny(ctxDocument).(*goquery.Document)
	if !ok {
		err := fmt.Errorf("no response for %s", pageURL)
		f.record(err)
		f.logger.Error("empty response", slog.String("url", pageURL))
		return nil, err
	}

	f.metrics.IncRequest("succeeded")
	return doc, nil
}

// Close releases idle connections held by the transport.
func (f *Fetcher) Close() {
	f.transport.CloseIdleConnections()
}

func (f *Fetcher) record(err error) {
	f.metrics.IncRequest("failed")
	f.metrics.IncError(errorTypeLabel(err))
}
