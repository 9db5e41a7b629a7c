package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/productlens/backend/internal/domain"
)

// MessageSender delivers a message to the content side of a tab
type MessageSender interface {
	Send(msg domain.Message) error
}

// BackgroundServiceConfig holds configuration for the background service
type BackgroundServiceConfig struct {
	// RecordTTL bounds how long a record outlives its last notification; zero keeps it until the tab closes
	RecordTTL time.Duration
}

// BackgroundService receives content-side messages and owns the per-tab state:
// the last product record and the toolbar indicator of each tab
type BackgroundService struct {
	store     domain.TabStore
	scraper   domain.ScrapeClient
	replies   MessageSender
	recordTTL time.Duration

	mu         sync.RWMutex
	indicators map[string]domain.Indicator
}

// NewBackgroundService creates a background service. scraper and replies may be nil.
func NewBackgroundService(
	store domain.TabStore,
	scraper domain.ScrapeClient,
	replies MessageSender,
	config BackgroundServiceConfig,
) *BackgroundService {
	return &BackgroundService{
		store:      store,
		scraper:    scraper,
		replies:    replies,
		recordTTL:  config.RecordTTL,
		indicators: make(map[string]domain.Indicator),
	}
}

// Run drains the message channel until it is closed or ctx is done.
// Replies are sent back through the reply channel, best effort.
func (s *BackgroundService) Run(ctx context.Context, messages <-chan domain.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			reply, err := s.HandleMessage(ctx, msg)
			if err != nil {
				log.Printf("[Background] %s from tab %q: %v", msg.Type, msg.TabID, err)
				continue
			}
			if reply != nil && s.replies != nil {
				if err := s.replies.Send(*reply); err != nil {
					log.Printf("[Background] Dropped %s for tab %q: %v", reply.Type, reply.TabID, err)
				}
			}
		}
	}
}

// HandleMessage applies one message and returns the reply for the tab, if any
func (s *BackgroundService) HandleMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	switch msg.Type {
	case domain.MessageProductDetected:
		return nil, s.productDetected(ctx, msg)
	case domain.MessageScrapeRequest:
		return s.scrapeRequest(ctx, msg)
	default:
		log.Printf("[Background] Ignoring message type %q", msg.Type)
		return nil, nil
	}
}

func (s *BackgroundService) productDetected(ctx context.Context, msg domain.Message) error {
	if msg.TabID == "" {
		return fmt.Errorf("%w: missing tab id", domain.ErrInvalidRequest)
	}
	record, err := msg.ProductPayload()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, msg.TabID, record, s.recordTTL); err != nil {
		return err
	}

	s.mu.Lock()
	s.indicators[msg.TabID] = domain.ProductDetectedIndicator
	s.mu.Unlock()

	log.Printf("[Background] Tab %s: product detected on %s", msg.TabID, record.Site)
	return nil
}

func (s *BackgroundService) scrapeRequest(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	log.Printf("[Background] Received scrape request for URL: %s", msg.URL)
	if msg.TabID == "" {
		log.Printf("[Background] No tab ID found")
		return nil, nil
	}
	if msg.URL == "" {
		return nil, fmt.Errorf("%w: missing url", domain.ErrInvalidRequest)
	}
	if s.scraper == nil {
		return scrapeError(msg.TabID, "scraping service is not configured"), nil
	}

	data, err := s.scraper.Scrape(ctx, msg.URL)
	if err != nil {
		log.Printf("[Background] Fetch error: %v", err)
		return scrapeError(msg.TabID, err.Error()), nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return scrapeError(msg.TabID, err.Error()), nil
	}
	return &domain.Message{Type: domain.MessageScrapeResponse, TabID: msg.TabID, Payload: payload}, nil
}

func scrapeError(tabID, message string) *domain.Message {
	payload, _ := json.Marshal(message)
	return &domain.Message{Type: domain.MessageScrapeError, TabID: tabID, Payload: payload}
}

// TabClosed clears everything recorded for a tab
func (s *BackgroundService) TabClosed(ctx context.Context, tabID string) error {
	s.mu.Lock()
	delete(s.indicators, tabID)
	s.mu.Unlock()

	return s.store.Delete(ctx, tabID)
}

// Product returns the last record seen on a tab
func (s *BackgroundService) Product(ctx context.Context, tabID string) (*domain.ProductRecord, error) {
	return s.store.Get(ctx, tabID)
}

// Indicator returns the toolbar indicator of a tab
func (s *BackgroundService) Indicator(tabID string) (domain.Indicator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ind, ok := s.indicators[tabID]
	return ind, ok
}
