package domain

import (
	"context"
	"time"
)

// TabStore defines the keyed per-tab record store owned by the background component
type TabStore interface {
	Put(ctx context.Context, tabID string, record *ProductRecord, ttl time.Duration) error
	Get(ctx context.Context, tabID string) (*ProductRecord, error)
	Delete(ctx context.Context, tabID string) error
}

// OpinionsClient defines the interface for the external opinions backend
type OpinionsClient interface {
	FetchOpinions(ctx context.Context, productTitle string) (*OpinionsResult, error)
}

// ScrapeClient defines the interface for the external scraping service
type ScrapeClient interface {
	Scrape(ctx context.Context, url string) (map[string]interface{}, error)
}

// Notifier delivers product records to the background component.
// Delivery is one-way and at-most-once; failures are never reported to the caller.
type Notifier interface {
	Notify(tabID string, record *ProductRecord)
}
