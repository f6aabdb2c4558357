package models

// Product mirrors a document of the "products" collection.
type Product struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Link         string              `json:"link"`
	Price        *float64            `json:"price,omitempty"`
	TargetPrice  *float64            `json:"targetPrice,omitempty"`
	Image        string              `json:"image"`
	PriceHistory []PriceHistoryEntry `json:"priceHistory"`
}

type PriceHistoryEntry struct {
	Price float64 `json:"price" firestore:"price"`
	Date  string  `json:"date" firestore:"date"`
}

// ScrapeResult is what a fetcher found on a product page. An empty Image
// means no image was found.
type ScrapeResult struct {
	Price *float64 `json:"price,omitempty"`
	Image string   `json:"image,omitempty"`
}

// Empty reports whether neither field was found.
func (r *ScrapeResult) Empty() bool {
	return r.Price == nil && r.Image == ""
}

// ScrapedFields are the only fields the refresh pass writes back. Stores
// append Entry to the history they hold; PriceHistory is the decoded view
// with Entry already appended.
type ScrapedFields struct {
	Price        float64
	Image        string
	Entry        PriceHistoryEntry
	PriceHistory []PriceHistoryEntry
}

// PriceUpdate is published after a product has been refreshed.
type PriceUpdate struct {
	RunID       string   `json:"run_id"`
	ProductID   string   `json:"product_id"`
	Name        string   `json:"name"`
	Link        string   `json:"link"`
	Price       float64  `json:"price"`
	OldPrice    *float64 `json:"old_price,omitempty"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	Date        string   `json:"date"`
}
