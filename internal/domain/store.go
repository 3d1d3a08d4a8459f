package domain

// Product is a storefront item as persisted by the store. ID is issued by
// the store and must be preserved across runs; SKU carries the feed item's
// business code.
type Product struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	RegularPrice  string         `json:"regular_price"`
	Description   string         `json:"description"`
	SKU           string         `json:"sku"`
	StockQuantity int64          `json:"stock_quantity"`
	Weight        string         `json:"weight"`
	Categories    []CategoryRef  `json:"categories"`
	Images        []ProductImage `json:"images"`
}

// ProductInput is the payload shape the store accepts for product
// creation and updates. Absent price/weight are omitted so partial feed
// data never clears fields the store already holds.
type ProductInput struct {
	Name          string         `json:"name"`
	RegularPrice  string         `json:"regular_price,omitempty"`
	Description   string         `json:"description"`
	SKU           string         `json:"sku"`
	StockQuantity int64          `json:"stock_quantity"`
	Weight        string         `json:"weight,omitempty"`
	Categories    []CategoryRef  `json:"categories"`
	Images        []ProductImage `json:"images"`
}

// CategoryRef links a product to a category by id.
type CategoryRef struct {
	ID int64 `json:"id"`
}

// ProductImage holds one image source URL. Src stays addressable so a
// product without a photo serialises as an explicit null src.
type ProductImage struct {
	Src *string `json:"src"`
}

// FirstImageSrc returns the first image URL of the product, or "" when the
// product has no images or a null src.
func (p Product) FirstImageSrc() string {
	if len(p.Images) == 0 || p.Images[0].Src == nil {
		return ""
	}
	return *p.Images[0].Src
}

// Category is a taxonomy node in the store: categories, vendors and tags
// all live in one tree, partitioned by fixed parent ids.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent int64  `json:"parent"`
}
