package cart

import "github.com/freshcart/storefront/internal/catalog"

// DefaultTitle names lines whose product arrived without a title.
const DefaultTitle = "Untitled Product"

// LineProduct is the slice of product data a cart line keeps.
type LineProduct struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ImageCover string `json:"imageCover"`
}

// Line is one product in the cart. Price is the unit price.
type Line struct {
	Product LineProduct `json:"product"`
	Price   float64     `json:"price"`
	Count   int         `json:"count"`
}

// Snapshot is the full cart state. TotalCartPrice always equals the sum of
// Price*Count over Products; it is recomputed from scratch on every change.
type Snapshot struct {
	Products       []Line  `json:"products"`
	TotalCartPrice float64 `json:"totalCartPrice"`
}

// ProductInput is a product offered to AddProduct. Optional fields are
// pointers so a missing value can be told apart from a zero one.
type ProductInput struct {
	ID         string   `json:"id" validate:"required"`
	Title      *string  `json:"title"`
	Price      *float64 `json:"price" validate:"required,gte=0"`
	ImageCover *string  `json:"imageCover"`
}

// FromProduct converts catalog reference data into an AddProduct input.
func FromProduct(p catalog.Product) ProductInput {
	price := p.Price
	in := ProductInput{ID: p.ID, Price: &price}
	if p.Title != "" {
		title := p.Title
		in.Title = &title
	}
	if p.ImageCover != "" {
		cover := p.ImageCover
		in.ImageCover = &cover
	}
	return in
}

// Empty returns the empty cart.
func Empty() Snapshot {
	return Snapshot{Products: []Line{}, TotalCartPrice: 0}
}

// Total sums price times count over lines.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += float64(l.Count) * l.Price
	}
	return total
}

// Find returns the index of the line for productID, or -1.
func (s Snapshot) Find(productID string) int {
	for i, l := range s.Products {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Products) == 0
}

// Titles lists the product titles in cart order.
func (s Snapshot) Titles() []string {
	titles := make([]string, 0, len(s.Products))
	for _, l := range s.Products {
		titles = append(titles, l.Product.Title)
	}
	return titles
}

// Clone returns a deep copy so callers cannot alias store state.
func (s Snapshot) Clone() Snapshot {
	lines := make([]Line, len(s.Products))
	copy(lines, s.Products)
	return Snapshot{Products: lines, TotalCartPrice: s.TotalCartPrice}
}

func withLines(lines []Line) Snapshot {
	if lines == nil {
		lines = []Line{}
	}
	return Snapshot{Products: lines, TotalCartPrice: Total(lines)}
}
