// Package models defines data structures for the scraper.
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrNegativePrice is returned when a book is built with a price below zero.
	ErrNegativePrice = errors.New("price cannot be negative")
	// ErrNonFinitePrice is returned for NaN or infinite prices.
	ErrNonFinitePrice = errors.New("price must be a finite number")
	// ErrInvalidRating is returned when a book is built without a 1-5 rating.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Rating is a star rating on the closed 1-5 scale. The zero value means absent.
type Rating int

// Valid star ratings.
const (
	OneStar Rating = iota + 1
	TwoStars
	ThreeStars
	FourStars
	FiveStars
)

// ratingLabels maps the catalog's textual rating classes to ratings.
var ratingLabels = map[string]Rating{
	"One":   OneStar,
	"Two":   TwoStars,
	"Three": ThreeStars,
	"Four":  FourStars,
	"Five":  FiveStars,
}

// ParseRating converts a catalog label ("One".."Five") to a Rating.
// Any other label reports false.
func ParseRating(label string) (Rating, bool) {
	r, ok := ratingLabels[label]
	return r, ok
}

// Valid reports whether r lies on the 1-5 scale.
func (r Rating) Valid() bool {
	return r >= OneStar && r <= FiveStars
}

// Int returns the numeric value, 0 for an absent rating.
func (r Rating) Int() int {
	if !r.Valid() {
		return 0
	}
	return int(r)
}

// String renders the rating as filled and empty stars, e.g. ★★☆☆☆.
func (r Rating) String() string {
	n := r.Int()
	return strings.Repeat("★", n) + strings.Repeat("☆", int(FiveStars)-n)
}

// Book represents a book item from the scraper.
type Book struct {
	Title     string
	Price     float64
	Available bool
	Rating    Rating
}

// NewBook validates the fields and returns a book.
func NewBook(title string, price float64, available bool, rating Rating) (*Book, error) {
	if err := CheckPrice(price); err != nil {
		return nil, err
	}
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRating, int(rating))
	}
	return &Book{
		Title:     title,
		Price:     price,
		Available: available,
		Rating:    rating,
	}, nil
}

// CheckPrice rejects prices that are NaN, infinite or below zero.
func CheckPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: %v", ErrNonFinitePrice, price)
	}
	if price < 0 {
		return fmt.Errorf("%w: %.2f", ErrNegativePrice, price)
	}
	return nil
}

// ScrapeResult holds the overall result of a scraping operation
type ScrapeResult struct {
	Books        []*Book
	StartTime    time.Time
	EndTime      time.Time
	PageCount    int
	FailedPages  []string
	SkippedItems int
	ErrorsByType map[string]int
}

// Duration reports how long the run took.
func (r *ScrapeResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
