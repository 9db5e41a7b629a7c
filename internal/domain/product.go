package domain

import (
	"fmt"
	"strings"
)

// SiteID identifies a recognized e-commerce site
type SiteID string

const (
	SiteUnknown SiteID = ""
	SiteAmazon  SiteID = "amazon"
	SiteBestBuy SiteID = "bestbuy"
)

// Known reports whether the site is a recognized retailer
func (s SiteID) Known() bool {
	return s != SiteUnknown
}

func (s SiteID) String() string {
	if s == SiteUnknown {
		return "unknown"
	}
	return string(s)
}

// ProductRecord represents product attributes extracted from a retailer page.
// Title and Price are always non-empty; use NewProductRecord to build one.
type ProductRecord struct {
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Description  string   `json:"description,omitempty"`
	Rating       string   `json:"rating,omitempty"`
	Reviews      string   `json:"reviews,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Features     []string `json:"features"`
	URL          string   `json:"url"`
	Site         SiteID   `json:"site"`
}

// NewProductRecord validates the record invariants and returns a normalized copy
func NewProductRecord(r ProductRecord) (*ProductRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	features := make([]string, len(r.Features))
	copy(features, r.Features)
	r.Features = features
	return &r, nil
}

// Validate checks the invariants of a record received across a trust boundary
func (r *ProductRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: missing payload", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Price) == "" {
		return fmt.Errorf("%w: empty price", ErrInvalidRecord)
	}
	if !r.Site.Known() {
		return fmt.Errorf("%w: unknown site", ErrInvalidRecord)
	}
	return nil
}

// Indicator is the glyph and color shown on the extension toolbar icon for a tab
type Indicator struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// ProductDetectedIndicator is set on a tab once a product record arrives
var ProductDetectedIndicator = Indicator{Text: "✓", Color: "#0ea5e9"}
