package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/productlens/backend/internal/domain"
)

// PageFetcher downloads and parses a product page, returning the final URL after redirects
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, string, error)
}

// Page is a document observed in one browser tab
type Page struct {
	URL   string
	TabID string
	Doc   *goquery.Document
}

// Detection is the outcome of a successful pipeline run
type Detection struct {
	Record *domain.ProductRecord
	Badge  *Badge
}

// DetectionService runs site identification, extraction, notification and badge rendering
type DetectionService struct {
	notifier domain.Notifier
	fetcher  PageFetcher
}

// NewDetectionService creates a new detection pipeline. fetcher may be nil when
// pages are always supplied by the caller.
func NewDetectionService(notifier domain.Notifier, fetcher PageFetcher) *DetectionService {
	return &DetectionService{
		notifier: notifier,
		fetcher:  fetcher,
	}
}

// Detect runs the pipeline on a page. Unknown sites short-circuit before
// extraction. Misses are returned as domain.ErrExtractionMiss.
func (s *DetectionService) Detect(ctx context.Context, page Page) (*Detection, error) {
	site := IdentifySiteFromURL(page.URL)
	log.Printf("[Detect] Checking for product on: %s", page.URL)
	if !site.Known() {
		log.Printf("[Detect] Not a known product site")
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionMiss, domain.ErrUnknownSite)
	}

	record, err := Extract(site, page.Doc, page.URL)
	if err != nil {
		return nil, err
	}

	log.Printf("[Detect] Product detected: site=%s title=%q price=%q", record.Site, record.Title, record.Price)
	if s.notifier != nil {
		s.notifier.Notify(page.TabID, record)
	}

	return &Detection{
		Record: record,
		Badge:  RenderBadge(record),
	}, nil
}

// DetectHTML parses the given markup and runs the pipeline on it
func (s *DetectionService) DetectHTML(ctx context.Context, pageURL, tabID, markup string) (*Detection, error) {
	if !IdentifySiteFromURL(pageURL).Known() {
		return s.Detect(ctx, Page{URL: pageURL, TabID: tabID})
	}
	doc, err := ParseDocument(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return s.Detect(ctx, Page{URL: pageURL, TabID: tabID, Doc: doc})
}

// DetectURL downloads the page and runs the pipeline on it
func (s *DetectionService) DetectURL(ctx context.Context, pageURL, tabID string) (*Detection, error) {
	if !IdentifySiteFromURL(pageURL).Known() {
		return s.Detect(ctx, Page{URL: pageURL, TabID: tabID})
	}
	if s.fetcher == nil {
		return nil, errors.New("page fetching is not configured")
	}

	doc, finalURL, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return s.Detect(ctx, Page{URL: finalURL, TabID: tabID, Doc: doc})
}
