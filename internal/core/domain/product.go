package domain

// ProductInfo is the resolved pricing view of a purchasable product.
// Products live in per-category tables addressed by a table tag; the resolver
// maps (table tag, product id) to this snapshot.
type ProductInfo struct {
	Table    string `json:"table"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"` // smallest unit of Currency
	Currency string `json:"currency"`
}
