package services

import "github.com/mercala-commerce/catalog-sync/internal/domain"

// BuildProduct projects a feed item plus its resolved category ids into the
// payload the store accepts for creates and updates. Unresolved ids (zero)
// are dropped and duplicates removed, first occurrence winning. A missing
// photo yields a single image with an explicit null src.
func BuildProduct(item domain.Item, categoryID, vendorID int64, tagIDs []int64) domain.ProductInput {
	input := domain.ProductInput{
		Name:          item.Name,
		Description:   WrapDescription(item.Description),
		SKU:           item.Code,
		StockQuantity: NormalizeStock(item.Stock),
		Categories:    categoryRefs(categoryID, vendorID, tagIDs),
		Images:        []domain.ProductImage{{Src: photoSrc(item)}},
	}

	if item.Price != nil {
		input.RegularPrice = FormatPrice(*item.Price)
	}
	if item.Weight != nil {
		input.Weight = FormatWeight(*item.Weight)
	}

	return input
}

func categoryRefs(categoryID, vendorID int64, tagIDs []int64) []domain.CategoryRef {
	ids := make([]int64, 0, 2+len(tagIDs))
	ids = append(ids, categoryID, vendorID)
	ids = append(ids, tagIDs...)

	refs := make([]domain.CategoryRef, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, domain.CategoryRef{ID: id})
	}
	return refs
}

func photoSrc(item domain.Item) *string {
	if item.Photo == nil || item.Photo.Image.URL == "" {
		return nil
	}
	url := item.Photo.Image.URL
	return &url
}
