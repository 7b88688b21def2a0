// Package catalog holds the product reference data shared by the cart,
// wishlist and checkout. Products are owned by the catalog service; this
// code only reads them.
package catalog

// Product is a catalog entry as the storefront receives it.
type Product struct {
	ID         string  `json:"id" validate:"required"`
	Title      string  `json:"title"`
	Price      float64 `json:"price" validate:"gte=0"`
	ImageCover string  `json:"imageCover"`
}
