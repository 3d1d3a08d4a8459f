package services

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

// InfiniteStockQuantity is the concrete quantity written to the store for
// feed items flagged as infinitely stocked.
const InfiniteStockQuantity = 1_000_000

var markupReplacer = strings.NewReplacer("<p>", "", "</p>", "", "<br/>", "")

// NormalizeStock maps the feed's infinite-stock sentinel onto a fixed large
// quantity; finite stock passes through unchanged. Both sides of any stock
// comparison must go through this mapping.
func NormalizeStock(stock domain.Stock) int64 {
	if stock.Infinite {
		return InfiniteStockQuantity
	}
	return stock.Quantity
}

// NormalizeDescription reduces a description to a comparable canonical form:
// paragraph and line-break markup is dropped and all whitespace removed, so
// the store's HTML wrapping and incidental formatting never read as changes.
func NormalizeDescription(text string) string {
	text = markupReplacer.Replace(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WrapDescription produces the canonical form written to the store: CRLF
// sequences become line-break markup and the whole text is wrapped in a
// paragraph.
func WrapDescription(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "<br/>")
	return "<p>" + text + "</p>"
}

// ImageIdentity extracts the stable token of an image URL: the filename part
// before the first hyphen or plus, which is where the store's media pipeline
// appends resize and dedup suffixes. A URL without such a separator yields
// the bare filename stem; an empty URL yields an empty identity.
func ImageIdentity(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	base := rawURL
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.IndexAny(base, "-+"); idx >= 0 {
		return base[:idx]
	}
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		return base[:idx]
	}
	return base
}

// FormatPrice renders a feed price the way the store serialises prices.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// FormatWeight renders a feed weight the way the store serialises weights.
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}
