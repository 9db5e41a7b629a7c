package usecase

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/productlens/backend/internal/domain"
)

// SelectorSet holds the CSS selectors used to extract a product from one site.
// Optional selectors are left empty when the site does not offer the attribute.
type SelectorSet struct {
	Container    string
	Title        string
	Price        string
	Description  string
	Rating       string
	Reviews      string
	Availability string
	Features     string
}

// compiledSelectors mirrors SelectorSet with parsed matchers; nil means not offered
type compiledSelectors struct {
	container    cascadia.Selector
	title        cascadia.Selector
	price        cascadia.Selector
	description  cascadia.Selector
	rating       cascadia.Selector
	reviews      cascadia.Selector
	availability cascadia.Selector
	features     cascadia.Selector
}

// siteOrder is the order in which hostnames are matched against site identifiers
var siteOrder = []domain.SiteID{domain.SiteAmazon, domain.SiteBestBuy}

var selectorTable = map[domain.SiteID]SelectorSet{
	domain.SiteAmazon: {
		Container:    "#dp-container",
		Title:        "#productTitle",
		Price:        ".a-price .a-offscreen",
		Description:  "#productDescription",
		Rating:       "#acrPopover .a-icon-alt",
		Reviews:      "#acrCustomerReviewText",
		Availability: "#availability",
		Features:     "#feature-bullets",
	},
	domain.SiteBestBuy: {
		Container:    ".shop-product-page",
		Title:        ".heading-5.v-fw-regular",
		Price:        ".priceView-customer-price span",
		Rating:       ".c-review-average",
		Reviews:      ".c-review-count",
		Availability: ".fulfillment-add-to-cart-button",
	},
}

// compiledTable is built once at package init; a bad selector is a programming error
var compiledTable = mustCompileTable(selectorTable)

func mustCompileTable(table map[domain.SiteID]SelectorSet) map[domain.SiteID]*compiledSelectors {
	out := make(map[domain.SiteID]*compiledSelectors, len(table))
	for site, set := range table {
		compiled, err := compileSelectorSet(set)
		if err != nil {
			panic(fmt.Sprintf("selector registry: site %s: %v", site, err))
		}
		out[site] = compiled
	}
	return out
}

func compileSelectorSet(set SelectorSet) (*compiledSelectors, error) {
	if set.Container == "" || set.Title == "" || set.Price == "" {
		return nil, fmt.Errorf("container, title and price selectors are required")
	}

	var c compiledSelectors
	fields := []struct {
		expr string
		dst  *cascadia.Selector
	}{
		{set.Container, &c.container},
		{set.Title, &c.title},
		{set.Price, &c.price},
		{set.Description, &c.description},
		{set.Rating, &c.rating},
		{set.Reviews, &c.reviews},
		{set.Availability, &c.availability},
		{set.Features, &c.features},
	}
	for _, f := range fields {
		if f.expr == "" {
			continue
		}
		sel, err := cascadia.Compile(f.expr)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", f.expr, err)
		}
		*f.dst = sel
	}
	return &c, nil
}

// LookupSelectors returns a copy of the selector set for a site
func LookupSelectors(site domain.SiteID) (SelectorSet, bool) {
	set, ok := selectorTable[site]
	return set, ok
}

// SupportedSites returns the recognized sites in matching order
func SupportedSites() []domain.SiteID {
	sites := make([]domain.SiteID, len(siteOrder))
	copy(sites, siteOrder)
	return sites
}
