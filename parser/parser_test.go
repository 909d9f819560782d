package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-books-catalog/models"
)

func listing(t *testing.T, body string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	sel := doc.Find(ListingSelector)
	if sel.Length() != 1 {
		t.Fatalf("fixture should contain one listing, got %d", sel.Length())
	}
	return sel
}

func TestExtractBook(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    models.Book
		wantErr error
	}{
		{
			name: "well formed",
			html: `<article class="product_pod">
				<img src="a.jpg" alt="A Light in the Attic">
				<p class="star-rating Three"></p>
				<p class="price_color">£51.77</p>
				<p class="instock availability">
					In stock
				</p>
			</article>`,
			want: models.Book{Title: "A Light in the Attic", Price: 51.77, Available: true, Rating: models.ThreeStars},
		},
		{
			name: "mis-decoded currency",
			html: `<article class="product_pod">
				<img alt="Tipping the Velvet">
				<p class="star-rating One"></p>
				<p class="price_color">Â£53.74</p>
				<p class="instock availability">In stock</p>
			</article>`,
			want: models.Book{Title: "Tipping the Velvet", Price: 53.74, Available: true, Rating: models.OneStar},
		},
		{
			name: "missing image",
			html: `<article class="product_pod">
				<p class="star-rating Five"></p>
				<p class="price_color">£12.34</p>
				<p class="instock availability">In stock</p>
			</article>`,
			want: models.Book{Title: UnknownTitle, Price: 12.34, Available: true, Rating: models.FiveStars},
		},
		{
			name: "missing price",
			html: `<article class="product_pod">
				<img alt="Soumission">
				<p class="star-rating Two"></p>
				<p class="instock availability">In stock</p>
			</article>`,
			want: models.Book{Title: "Soumission", Price: 0, Available: true, Rating: models.TwoStars},
		},
		{
			name: "out of stock",
			html: `<article class="product_pod">
				<img alt="Sharp Objects">
				<p class="star-rating Four"></p>
				<p class="price_color">£47.82</p>
				<p class="instock availability">Out of stock</p>
			</article>`,
			want: models.Book{Title: "Sharp Objects", Price: 47.82, Available: false, Rating: models.FourStars},
		},
		{
			name: "missing availability",
			html: `<article class="product_pod">
				<img alt="Sapiens">
				<p class="star-rating Five"></p>
				<p class="price_color">£54.23</p>
			</article>`,
			want: models.Book{Title: "Sapiens", Price: 54.23, Available: false, Rating: models.FiveStars},
		},
		{
			name: "unparseable price",
			html: `<article class="product_pod">
				<img alt="Broken">
				<p class="star-rating Five"></p>
				<p class="price_color">£abc</p>
			</article>`,
			wantErr: ErrInvalidPrice,
		},
		{
			name: "missing rating",
			html: `<article class="product_pod">
				<img alt="Unrated">
				<p class="price_color">£10.00</p>
			</article>`,
			wantErr: ErrMissingRating,
		},
		{
			name: "unknown rating label",
			html: `<article class="product_pod">
				<img alt="Odd">
				<p class="star-rating Zero"></p>
				<p class="price_color">£10.00</p>
			</article>`,
			wantErr: ErrMissingRating,
		},
		{
			name: "nan price",
			html: `<article class="product_pod">
				<img alt="X">
				<p class="star-rating Two"></p>
				<p class="price_color">£NaN</p>
			</article>`,
			wantErr: ErrInvalidPrice,
		},
		{
			name: "negative price",
			html: `<article class="product_pod">
				<img alt="Refund">
				<p class="star-rating Two"></p>
				<p class="price_color">£-3.00</p>
			</article>`,
			wantErr: models.ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := ExtractBook(listing(t, tt.html))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExtractBook() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractBook() unexpected error: %v", err)
			}
			if *book != tt.want {
				t.Fatalf("ExtractBook() = %+v, want %+v", *book, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "pound prefix", input: "£12.34", want: 12.34},
		{name: "surrounding whitespace", input: "  £10.50  ", want: 10.50},
		{name: "already clean", input: "25.99", want: 25.99},
		{name: "empty", input: "", want: 0},
		{name: "letters", input: "£abc", wantErr: true},
		{name: "nan", input: "£NaN", wantErr: true},
		{name: "infinity", input: "£Inf", wantErr: true},
		{name: "signed infinity", input: "£-Infinity", wantErr: true},
		{name: "hex float", input: "£0x1p3", wantErr: true},
		{name: "exponent", input: "£1e3", wantErr: true},
		{name: "negative", input: "£-3.00", want: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "with currency symbol", input: "£51.77", expected: "51.77"},
		{name: "mis-decoded symbol", input: "Â£51.77", expected: "51.77"},
		{name: "with whitespace", input: "  £10.50  ", expected: "10.50"},
		{name: "already clean", input: "25.99", expected: "25.99"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePrice(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePrice(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsInStock(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{input: "In stock", expected: true},
		{input: "\n   In stock  \n", expected: true},
		{input: "In stock (22 available)", expected: false},
		{input: "Out of stock", expected: false},
		{input: "in stock", expected: false},
		{input: "", expected: false},
	}

	for _, tt := range tests {
		if got := IsInStock(tt.input); got != tt.expected {
			t.Errorf("IsInStock(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestRatingLabel(t *testing.T) {
	if got := RatingLabel("star-rating Three"); got != "Three" {
		t.Fatalf("RatingLabel = %q, want Three", got)
	}
	if got := RatingLabel("star-rating"); got != "" {
		t.Fatalf("RatingLabel = %q, want empty", got)
	}
}

func TestValidateBook(t *testing.T) {
	tests := []struct {
		name    string
		book    *models.Book
		wantErr bool
	}{
		{name: "valid book", book: &models.Book{Title: "Test Book", Price: 10, Rating: models.FiveStars}},
		{name: "nil book", book: nil, wantErr: true},
		{name: "negative price", book: &models.Book{Title: "Test Book", Price: -1, Rating: models.FiveStars}, wantErr: true},
		{name: "nan price", book: &models.Book{Title: "Test Book", Price: math.NaN(), Rating: models.FiveStars}, wantErr: true},
		{name: "infinite price", book: &models.Book{Title: "Test Book", Price: math.Inf(1), Rating: models.FiveStars}, wantErr: true},
		{name: "missing rating", book: &models.Book{Title: "Test Book", Price: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBook(tt.book)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBook() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
