package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Catalog is the full source feed: category name -> item key -> item.
// It is fetched fresh each run and never mutated by the engine.
type Catalog map[string]map[string]Item

// Item is a single entry of the source feed. Code is the business key:
// it is unique across the catalog and the only identity that survives
// between runs.
type Item struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Stock       Stock    `json:"stock"`
	Weight      *float64 `json:"weight"`
	Vendor      string   `json:"vendor"`
	Tags        []string `json:"tags"`
	Photo       *Photo   `json:"photo"`
}

// Photo wraps the optional image attachment of a feed item.
type Photo struct {
	Image PhotoImage `json:"image"`
}

// PhotoImage carries the primary image URL plus an optional named variant.
type PhotoImage struct {
	URL   string `json:"url"`
	Thumb string `json:"thumb,omitempty"`
}

// PhotoURL returns the primary image URL or "" when the item has no photo.
func (i Item) PhotoURL() string {
	if i.Photo == nil {
		return ""
	}
	return i.Photo.Image.URL
}

// Stock models the feed's stock field, which is either a quantity or the
// literal string "infinite".
type Stock struct {
	Quantity int64
	Infinite bool
}

// UnmarshalJSON accepts a JSON number, a numeric string, or the sentinel
// string "infinite". null decodes to a zero quantity.
func (s *Stock) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Stock{}
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("domain: decode stock: %w", err)
		}
		if raw == "infinite" {
			*s = Stock{Infinite: true}
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("domain: unrecognised stock value %q", raw)
		}
		*s = Stock{Quantity: int64(parsed)}
		return nil
	}

	var quantity float64
	if err := json.Unmarshal(data, &quantity); err != nil {
		return fmt.Errorf("domain: decode stock: %w", err)
	}
	*s = Stock{Quantity: int64(quantity)}
	return nil
}
