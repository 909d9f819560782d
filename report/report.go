// Package report computes and prints price statistics over scraped books.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aluiziolira/go-scrape-books-catalog/models"
)

// BannerWidth is the width of the analysis banner.
const BannerWidth = 100

// Summary holds the overview statistics of one run.
type Summary struct {
	Total         int
	AveragePrice  float64
	Cheapest      *models.Book
	MostExpensive *models.Book
}

// Summarize folds books left to right. Ties keep the first book seen.
func Summarize(books []*models.Book) Summary {
	s := Summary{Total: len(books)}
	prices := make([]float64, 0, len(books))
	for _, book := range books {
		prices = append(prices, book.Price)
		if s.MostExpensive == nil || book.Price > s.MostExpensive.Price {
			s.MostExpensive = book
		}
		if s.Cheapest == nil || book.Price < s.Cheapest.Price {
			s.Cheapest = book
		}
	}
	s.AveragePrice = SafeAverage(prices)
	return s
}

// SafeAverage returns the mean of values, 0 when there are none.
func SafeAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Print writes the analysis banner and overview lines.
func Print(w io.Writer, s Summary) {
	rule := strings.Repeat("=", BannerWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, text.AlignCenter.Apply("BOOKS ANALYSIS", BannerWidth))
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "OVERVIEW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintf(w, "Total number of books: %d\n", s.Total)
	fmt.Fprintf(w, "Average price: £%.2f\n", s.AveragePrice)

	if s.Cheapest == nil || s.MostExpensive == nil {
		fmt.Fprintln(w, "Price range: n/a")
		return
	}
	fmt.Fprintf(w, "Price range: £%.2f - £%.2f\n", s.Cheapest.Price, s.MostExpensive.Price)
	fmt.Fprintf(w, "The most expensive book: '%s': £%.2f\n", s.MostExpensive.Title, s.MostExpensive.Price)
	fmt.Fprintf(w, "The cheapest book: '%s': £%.2f\n", s.Cheapest.Title, s.Cheapest.Price)
}
