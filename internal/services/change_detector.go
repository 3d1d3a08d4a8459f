package services

import "github.com/mercala-commerce/catalog-sync/internal/domain"

// NeedsUpdate reports whether the stored product is stale relative to the
// feed item. Every dimension is evaluated; an update is required when any
// of them differs:
//
//   - name (exact)
//   - price, only when the feed carries one
//   - description, after canonicalisation on both sides
//   - sku vs business code
//   - stock quantity, after sentinel normalization
//   - weight, only when the feed carries one (an explicit 0 counts)
//   - image identity of the first stored image vs the feed photo
func NeedsUpdate(product domain.Product, item domain.Item) bool {
	nameChanged := item.Name != product.Name
	priceChanged := item.Price != nil && FormatPrice(*item.Price) != product.RegularPrice
	descriptionChanged := NormalizeDescription(item.Description) != NormalizeDescription(product.Description)
	codeChanged := item.Code != product.SKU
	stockChanged := NormalizeStock(item.Stock) != product.StockQuantity
	weightChanged := item.Weight != nil && FormatWeight(*item.Weight) != product.Weight
	photoChanged := imageChanged(product, item)

	return nameChanged || priceChanged || descriptionChanged || codeChanged || stockChanged || weightChanged || photoChanged
}

func imageChanged(product domain.Product, item domain.Item) bool {
	sourceURL := item.PhotoURL()
	if len(product.Images) == 0 {
		return sourceURL != ""
	}
	return ImageIdentity(product.FirstImageSrc()) != ImageIdentity(sourceURL)
}
