package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/aluiziolira/go-scrape-books-catalog/config"
	"github.com/aluiziolira/go-scrape-books-catalog/models"
)

// CSVWriter writes books as rows under the config.Fields header.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVWriter creates filename and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	f, err := createOutput(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	cw := &CSVWriter{file: f, writer: csv.NewWriter(f)}
	if err := cw.writeRows(config.Fields); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return cw, nil
}

// Write appends one row per book.
func (cw *CSVWriter) Write(books []*models.Book) error {
	rows := make([][]string, 0, len(books))
	for _, book := range books {
		rows = append(rows, csvRecord(book))
	}
	if err := cw.writeRows(rows...); err != nil {
		return fmt.Errorf("write csv records: %w", err)
	}
	cw.rows += len(books)
	return nil
}

func (cw *CSVWriter) writeRows(rows ...[]string) error {
	if err := cw.writer.WriteAll(rows); err != nil {
		return err
	}
	return cw.writer.Error()
}

// Close flushes and closes the file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate re-reads the closed file and checks the header and that it holds
// exactly one row per book written.
func (cw *CSVWriter) Validate() error {
	f, err := os.Open(cw.file.Name())
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read csv file: %w", err)
	}
	if len(records) == 0 || !slices.Equal(records[0], config.Fields) {
		return fmt.Errorf("csv header missing from %s", cw.file.Name())
	}
	if got := len(records) - 1; got != cw.rows {
		return fmt.Errorf("csv file has %d rows, wrote %d books", got, cw.rows)
	}
	return nil
}

// csvRecord lays a book out in config.Fields order.
func csvRecord(book *models.Book) []string {
	return []string{
		book.Title,
		formatPrice(book.Price),
		strconv.FormatBool(book.Available),
		strconv.Itoa(book.Rating.Int()),
	}
}

// bookRecord is one JSON Lines object; keys follow config.Fields and the
// price keeps the two decimals of the CSV column.
type bookRecord struct {
	Title     string      `json:"Title"`
	Price     json.Number `json:"Price"`
	Available bool        `json:"Available"`
	Rating    int         `json:"Rating"`
}

func newBookRecord(book *models.Book) bookRecord {
	return bookRecord{
		Title:     book.Title,
		Price:     json.Number(formatPrice(book.Price)),
		Available: book.Available,
		Rating:    book.Rating.Int(),
	}
}

// JSONWriter writes one bookRecord per line.
type JSONWriter struct {
	file    *os.File
	buf     *bufio.Writer
	encoder *json.Encoder
	lines   int
}

// NewJSONWriter creates filename for JSON Lines output.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	f, err := createOutput(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &JSONWriter{file: f, buf: buf, encoder: json.NewEncoder(buf)}, nil
}

// Write appends one line per book.
func (jw *JSONWriter) Write(books []*models.Book) error {
	for _, book := range books {
		if err := jw.encoder.Encode(newBookRecord(book)); err != nil {
			return fmt.Errorf("encode book %q: %w", book.Title, err)
		}
		jw.lines++
	}
	if err := jw.buf.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (jw *JSONWriter) Close() error {
	if err := jw.buf.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate re-reads the closed file and checks every line decodes and that
// the line count matches the books written.
func (jw *JSONWriter) Validate() error {
	f, err := os.Open(jw.file.Name())
	if err != nil {
		return fmt.Errorf("open json file: %w", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec bookRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("json line %d: %w", lines+1, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read json file: %w", err)
	}
	if lines != jw.lines {
		return fmt.Errorf("json file has %d lines, wrote %d books", lines, jw.lines)
	}
	return nil
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}

// createOutput creates filename, making its parent directory if needed.
func createOutput(filename string) (*os.File, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return os.Create(filename)
}
