package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-books-catalog/models"
)

const (
	// UnknownTitle is used when a listing carries no image alt text.
	UnknownTitle = "Unknown"
	// InStockText is the exact availability text of an in-stock listing.
	InStockText = "In stock"
)

var (
	// ErrInvalidPrice marks a listing whose price text is not a number.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrMissingRating marks a listing without a recognisable star rating.
	ErrMissingRating = errors.New("missing rating")
)

// decimalPrice is the accepted price grammar. strconv.ParseFloat alone also
// takes NaN, Inf, exponent and hex forms.
var decimalPrice = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Selectors used inside a single listing fragment.
const (
	ListingSelector      = "article.product_pod"
	titleSelector        = "img"
	priceSelector        = "p.price_color"
	availabilitySelector = "p.instock.availability"
	ratingSelector       = "p.star-rating"
)

// ExtractBook maps one listing fragment to a book. Fragments with an
// unparseable price or no rating are rejected with ErrInvalidPrice or
// ErrMissingRating.
func ExtractBook(sel *goquery.Selection) (*models.Book, error) {
	title := UnknownTitle
	if alt, ok := sel.Find(titleSelector).First().Attr("alt"); ok {
		title = alt
	}

	price := 0.0
	if priceTag := sel.Find(priceSelector).First(); priceTag.Length() > 0 {
		var err error
		if price, err = ParsePrice(priceTag.Text()); err != nil {
			return nil, err
		}
	}

	available := IsInStock(sel.Find(availabilitySelector).First().Text())

	ratingTag := sel.Find(ratingSelector).First()
	if ratingTag.Length() == 0 {
		return nil, fmt.Errorf("%w: no rating element for %q", ErrMissingRating, title)
	}
	class, _ := ratingTag.Attr("class")
	label := RatingLabel(class)
	rating, ok := models.ParseRating(label)
	if !ok {
		return nil, fmt.Errorf("%w: unknown label %q for %q", ErrMissingRating, label, title)
	}

	return models.NewBook(title, price, available, rating)
}

// ParsePrice converts the price text of a listing to a number. Empty text
// is a zero price; anything other than a finite decimal is ErrInvalidPrice.
func ParsePrice(text string) (float64, error) {
	normalized := NormalizePrice(text)
	if normalized == "" {
		return 0, nil
	}
	if !decimalPrice.MatchString(normalized) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, normalized)
	}
	price, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, normalized)
	}
	return price, nil
}

// NormalizePrice removes the currency symbol and surrounding whitespace.
// A mis-decoded "Â£" prefix is stripped as well.
func NormalizePrice(price string) string {
	price = strings.TrimSpace(price)
	price = strings.TrimPrefix(price, "Â")
	price = strings.TrimPrefix(price, "£")
	return strings.TrimSpace(price)
}

// IsInStock reports whether the availability text means in stock.
func IsInStock(text string) bool {
	return strings.TrimSpace(text) == InStockText
}

// RatingLabel returns the textual rating from a class attribute such as
// "star-rating Three".
func RatingLabel(class string) string {
	parts := strings.Fields(class)
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// ValidateBook ensures a book is fit to be written out.
func ValidateBook(b *models.Book) error {
	if b == nil {
		return fmt.Errorf("book is nil")
	}
	if err := models.CheckPrice(b.Price); err != nil {
		return fmt.Errorf("book %q: %w", b.Title, err)
	}
	if !b.Rating.Valid() {
		return fmt.Errorf("book %q: %w", b.Title, models.ErrInvalidRating)
	}
	return nil
}
