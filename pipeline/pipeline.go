package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aluiziolira/go-scrape-books-catalog/config"
	"github.com/aluiziolira/go-scrape-books-catalog/models"
	"github.com/aluiziolira/go-scrape-books-catalog/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after Close.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

const defaultBatchSize = 64

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(books []*models.Book) error
	Close() error
	Validate() error
}

// Pipeline validates books and writes them out in batches.
type Pipeline struct {
	writer    OutputWriter
	batch     []*models.Book
	batchSize int
	logger    *slog.Logger

	written  int
	rejected int
	closed   bool
}

// NewPipeline builds a pipeline over writer.
func NewPipeline(writer OutputWriter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		writer:    writer,
		batchSize: defaultBatchSize,
		batch:     make([]*models.Book, 0, defaultBatchSize),
		logger:    logger.With("component", "pipeline"),
	}
}

// Process validates books in order and writes full batches.
func (p *Pipeline) Process(books ...*models.Book) error {
	if p.closed {
		return ErrPipelineClosed
	}
	for _, book := range books {
		if err := parser.ValidateBook(book); err != nil {
			p.rejected++
			p.logger.Warn("book rejected", slog.Any("error", err))
			continue
		}
		p.batch = append(p.batch, book)
		if len(p.batch) >= p.batchSize {
			if err := p.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close writes the pending batch and closes the writer.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	flushErr := p.flush()
	if err := p.writer.Close(); err != nil {
		return errors.Join(flushErr, fmt.Errorf("close writer: %w", err))
	}
	return flushErr
}

// Written returns how many books reached the writer.
func (p *Pipeline) Written() int {
	return p.written
}

// Rejected returns how many books failed validation.
func (p *Pipeline) Rejected() int {
	return p.rejected
}

func (p *Pipeline) flush() error {
	if len(p.batch) == 0 {
		return nil
	}
	if err := p.writer.Write(p.batch); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	p.written += len(p.batch)
	p.batch = p.batch[:0]
	return nil
}

// NewWriter creates the output writer for format.
func NewWriter(format, filename string) (OutputWriter, error) {
	switch format {
	case "csv":
		return NewCSVWriter(filename)
	case "dual":
		return NewDualWriter(filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// SaveBooks writes books to cfg.OutputFile. An empty collection writes
// nothing and is not an error.
func SaveBooks(books []*models.Book, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books to save")
		return nil
	}

	writer, err := NewWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}

	p := NewPipeline(writer, logger)
	if err := p.Process(books...); err != nil {
		p.Close()
		return err
	}
	if err := p.Close(); err != nil {
		return err
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("validate output: %w", err)
	}

	p.logger.Info("books saved",
		slog.String("file", cfg.OutputFile),
		slog.Int("written", p.Written()),
		slog.Int("rejected", p.Rejected()),
	)
	fmt.Fprintf(out, "Saved %d books to %s\n", p.Written(), cfg.OutputFile)
	return nil
}
