package models

import (
	"errors"
	"math"
	"testing"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		label  string
		want   Rating
		wantOK bool
	}{
		{label: "One", want: OneStar, wantOK: true},
		{label: "Two", want: TwoStars, wantOK: true},
		{label: "Three", want: ThreeStars, wantOK: true},
		{label: "Four", want: FourStars, wantOK: true},
		{label: "Five", want: FiveStars, wantOK: true},
		{label: "Zero", want: 0, wantOK: false},
		{label: "three", want: 0, wantOK: false},
		{label: "", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseRating(tt.label)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("ParseRating(%q) = (%d, %v), want (%d, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRatingIntMatchesScale(t *testing.T) {
	for i, label := range []string{"One", "Two", "Three", "Four", "Five"} {
		r, _ := ParseRating(label)
		if r.Int() != i+1 {
			t.Fatalf("%s.Int() = %d, want %d", label, r.Int(), i+1)
		}
	}
	if Rating(0).Int() != 0 || Rating(6).Int() != 0 {
		t.Fatalf("out of range ratings should report 0")
	}
}

func TestRatingString(t *testing.T) {
	if got := TwoStars.String(); got != "★★☆☆☆" {
		t.Fatalf("TwoStars.String() = %q", got)
	}
	if got := FiveStars.String(); got != "★★★★★" {
		t.Fatalf("FiveStars.String() = %q", got)
	}
	if got := Rating(0).String(); got != "☆☆☆☆☆" {
		t.Fatalf("Rating(0).String() = %q", got)
	}
}

func TestNewBook(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		rating  Rating
		wantErr error
	}{
		{name: "positive price", price: 12.34, rating: ThreeStars},
		{name: "free book", price: 0, rating: OneStar},
		{name: "negative price", price: -0.01, rating: ThreeStars, wantErr: ErrNegativePrice},
		{name: "large negative price", price: -100, rating: FiveStars, wantErr: ErrNegativePrice},
		{name: "nan price", price: math.NaN(), rating: ThreeStars, wantErr: ErrNonFinitePrice},
		{name: "infinite price", price: math.Inf(1), rating: ThreeStars, wantErr: ErrNonFinitePrice},
		{name: "negative infinite price", price: math.Inf(-1), rating: ThreeStars, wantErr: ErrNonFinitePrice},
		{name: "absent rating", price: 10, rating: 0, wantErr: ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := NewBook("Sharp Objects", tt.price, true, tt.rating)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewBook() error = %v, want %v", err, tt.wantErr)
				}
				if book != nil {
					t.Fatalf("NewBook() returned a book alongside an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBook() unexpected error: %v", err)
			}
			if book.Price != tt.price || book.Rating != tt.rating || !book.Available {
				t.Fatalf("NewBook() = %+v", book)
			}
		})
	}
}
