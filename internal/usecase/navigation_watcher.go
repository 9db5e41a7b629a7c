package usecase

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/productlens/backend/internal/domain"
)

// Detector runs the detection pipeline on a page
type Detector interface {
	Detect(ctx context.Context, page Page) (*Detection, error)
}

// Mutation is one batch of structural DOM changes, with the tab's address at that time
type Mutation struct {
	URL string
	Doc *goquery.Document
}

// NavigationWatcher re-runs detection when a client-side navigation changes the
// tab's address. Mutations that leave the address unchanged are ignored.
type NavigationWatcher struct {
	detector Detector
	tabID    string
	onDetect func(*Detection)

	mu      sync.Mutex
	lastURL string
}

// NewNavigationWatcher creates a watcher for one tab. onDetect may be nil.
func NewNavigationWatcher(detector Detector, tabID string, onDetect func(*Detection)) *NavigationWatcher {
	return &NavigationWatcher{
		detector: detector,
		tabID:    tabID,
		onDetect: onDetect,
	}
}

// LastURL returns the last address seen
func (w *NavigationWatcher) LastURL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastURL
}

// Observe handles a mutation batch and reports whether detection ran. The
// detection is returned when the new address holds a product.
func (w *NavigationWatcher) Observe(ctx context.Context, m Mutation) (*Detection, bool) {
	w.mu.Lock()
	if m.URL == w.lastURL {
		w.mu.Unlock()
		return nil, false
	}
	w.lastURL = m.URL
	w.mu.Unlock()

	detection, err := w.detector.Detect(ctx, Page{URL: m.URL, TabID: w.tabID, Doc: m.Doc})
	switch {
	case err == nil:
		if w.onDetect != nil {
			w.onDetect(detection)
		}
		return detection, true
	case errors.Is(err, domain.ErrExtractionMiss):
		log.Printf("[Navigation] No product at %s: %v", m.URL, err)
	default:
		log.Printf("[Navigation] Detection failed at %s: %v", m.URL, err)
	}
	return nil, true
}

// Run observes mutations until the channel is closed or ctx is done
func (w *NavigationWatcher) Run(ctx context.Context, mutations <-chan Mutation) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-mutations:
			if !ok {
				return nil
			}
			w.Observe(ctx, m)
		}
	}
}

// NavigationTracker keeps one watcher per tab
type NavigationTracker struct {
	detector Detector
	onDetect func(tabID string, d *Detection)

	mu       sync.Mutex
	watchers map[string]*NavigationWatcher
}

// NewNavigationTracker creates a tracker; onDetect may be nil
func NewNavigationTracker(detector Detector, onDetect func(tabID string, d *Detection)) *NavigationTracker {
	return &NavigationTracker{
		detector: detector,
		onDetect: onDetect,
		watchers: make(map[string]*NavigationWatcher),
	}
}

// Observe routes a mutation to the tab's watcher, creating it on first use
func (t *NavigationTracker) Observe(ctx context.Context, tabID string, m Mutation) (*Detection, bool) {
	return t.watcher(tabID).Observe(ctx, m)
}

// Forget drops the watcher of a closed tab
func (t *NavigationTracker) Forget(tabID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.watchers, tabID)
}

func (t *NavigationTracker) watcher(tabID string) *NavigationWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.watchers[tabID]
	if !ok {
		var cb func(*Detection)
		if t.onDetect != nil {
			cb = func(d *Detection) { t.onDetect(tabID, d) }
		}
		w = NewNavigationWatcher(t.detector, tabID, cb)
		t.watchers[tabID] = w
	}
	return w
}
