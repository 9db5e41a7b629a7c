package usecase

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/productlens/backend/internal/domain"
	"golang.org/x/net/html"
)

// featureNoise marks feature bullets that are UI controls ("Click to hide") rather than content
const featureNoise = "hide"

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// ParseDocument parses an HTML page into a queryable document
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Extract applies the site's selectors to the document and builds a product record.
// It returns domain.ErrExtractionMiss when the page is not a product page or when
// the title or price is missing. Extract only reads the document.
func Extract(site domain.SiteID, doc *goquery.Document, pageURL string) (*domain.ProductRecord, error) {
	sels, ok := compiledTable[site]
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionMiss, domain.ErrUnknownSite)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrExtractionMiss)
	}

	if doc.FindMatcher(sels.container).Length() == 0 {
		log.Printf("[Extractor] No product container found (site=%s)", site)
		return nil, fmt.Errorf("%w: no product container", domain.ErrExtractionMiss)
	}

	title := firstText(doc, sels.title)
	price := firstText(doc, sels.price)
	if title == "" || price == "" {
		log.Printf("[Extractor] Missing required product information (site=%s)", site)
		return nil, fmt.Errorf("%w: missing title or price", domain.ErrExtractionMiss)
	}

	return domain.NewProductRecord(domain.ProductRecord{
		Title:        title,
		Price:        price,
		Description:  firstText(doc, sels.description),
		Rating:       firstText(doc, sels.rating),
		Reviews:      firstText(doc, sels.reviews),
		Availability: firstText(doc, sels.availability),
		Features:     extractFeatures(doc, sels.features),
		URL:          pageURL,
		Site:         site,
	})
}

// firstText returns the normalized text of the first match, or "" when the
// selector is not offered for the site or nothing matches
func firstText(doc *goquery.Document, sel cascadia.Selector) string {
	if sel == nil {
		return ""
	}
	match := doc.FindMatcher(sel).First()
	if match.Length() == 0 {
		return ""
	}
	return cleanText(match.Text())
}

// extractFeatures collects the list items under the first features element,
// dropping blank entries and UI noise
func extractFeatures(doc *goquery.Document, sel cascadia.Selector) []string {
	features := []string{}
	if sel == nil {
		return features
	}

	doc.FindMatcher(sel).First().Find("li").Each(func(_ int, li *goquery.Selection) {
		text := cleanText(li.Text())
		if text == "" || strings.Contains(text, featureNoise) {
			return
		}
		features = append(features, text)
	})
	return features
}

func cleanText(s string) string {
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(s, " "))
}
