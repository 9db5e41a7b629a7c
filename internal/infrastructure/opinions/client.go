package opinions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/productlens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds how much of an opinions response is read
const maxResponseBytes = 4 << 20

// Client talks to the opinions backend (POST /opinions)
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new opinions backend client.
// requestsPerMinute <= 0 disables client-side rate limiting.
func NewClient(baseURL string, timeout time.Duration, requestsPerMinute int) *Client {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60)
		burst = requestsPerMinute
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

// SetDebug enables logging of raw response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// response is the envelope returned by the opinions backend
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// FetchOpinions issues a single request keyed by the product title and returns
// normalized results. Any failure is an *domain.OpinionsFetchError; nothing is retried.
func (c *Client) FetchOpinions(ctx context.Context, productTitle string) (*domain.OpinionsResult, error) {
	if strings.TrimSpace(productTitle) == "" {
		return nil, domain.NewOpinionsFetchError("Product name is required", 0, domain.ErrInvalidRequest)
	}
	log.Printf("[Opinions] FetchOpinions called with title: %q", productTitle)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, domain.NewOpinionsFetchError("", 0, fmt.Errorf("%w: %v", domain.ErrRateLimited, err))
	}

	body, err := json.Marshal(domain.OpinionsRequest{ProductName: productTitle})
	if err != nil {
		return nil, domain.NewOpinionsFetchError("", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/opinions", bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewOpinionsFetchError("", 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ProductLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Opinions] Request error: %v", err)
		return nil, domain.NewOpinionsFetchError("", 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewOpinionsFetchError("", resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	if c.debug {
		log.Printf("[Opinions] Status: %d, Body: %s", resp.StatusCode, string(raw))
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("[Opinions] JSON decode error (status %d): %v", resp.StatusCode, err)
		return nil, domain.NewOpinionsFetchError("", resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !envelope.Success {
		log.Printf("[Opinions] Backend error - Status: %d, Error: %q", resp.StatusCode, envelope.Error)
		return nil, domain.NewOpinionsFetchError(envelope.Error, resp.StatusCode, nil)
	}

	result := NormalizeOpinions(envelope.Data)
	log.Printf("[Opinions] Found %d discussions and %d articles for %q",
		len(result.DiscussionPosts), len(result.ArticleResults), productTitle)
	return result, nil
}
