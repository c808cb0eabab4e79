// Package catalog holds the shopper side product listing helpers: category
// filter, price sort and display formatting.
package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	CategoryAll  = "all"
	SortLowHigh  = "low-high"
	SortHighLow  = "high-low"
	DefaultImage = "assets/images/default.jpg"

	defaultRating = 5
	maxStars      = 5
)

// FilterByCategory keeps products in category. Empty or "all" keeps everything.
func FilterByCategory(products []domain.Product, category string) []domain.Product {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return append([]domain.Product(nil), products...)
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// SortByPrice returns a sorted copy. Unknown orders keep the input order.
func SortByPrice(products []domain.Product, order string) []domain.Product {
	out := append([]domain.Product(nil), products...)
	switch order {
	case SortLowHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortHighLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}

func Categories(products []domain.Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// Stars renders a rating as five filled or hollow stars. A missing rating shows as five.
func Stars(rating *float64) string {
	r := float64(defaultRating)
	if rating != nil {
		r = *rating
	}
	filled := int(math.Round(r))
	if filled < 0 {
		filled = 0
	}
	if filled > maxStars {
		filled = maxStars
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", maxStars-filled)
}

func ImageOrDefault(p domain.Product) string {
	if strings.TrimSpace(p.Image) == "" {
		return DefaultImage
	}
	return p.Image
}

// FormatPeso renders an amount for display, rounded to centavos.
func FormatPeso(amount decimal.Decimal) string {
	return "₱" + amount.StringFixed(2)
}
