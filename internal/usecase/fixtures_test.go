package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/productlens/backend/internal/domain"
)

const amazonProductHTML = `<html><body>
<div id="dp-container">
  <span id="productTitle">
      Sony WH-1000XM4 Wireless Noise Canceling
      Overhead Headphones
  </span>
  <span class="a-price"><span class="a-offscreen">$278.00</span></span>
  <span class="a-price"><span class="a-offscreen">$349.99</span></span>
  <div id="productDescription"><p> Industry-leading noise canceling. </p></div>
  <div id="acrPopover"><span class="a-icon-alt">4.7 out of 5 stars</span></div>
  <span id="acrCustomerReviewText">52,113 ratings</span>
  <div id="availability"><span> In Stock </span></div>
  <div id="feature-bullets">
    <ul>
      <li><span> Durable </span></li>
      <li><span>Click to hide</span></li>
      <li>   </li>
      <li><span>30-hour battery</span></li>
    </ul>
  </div>
</div>
</body></html>`

const bestBuyProductHTML = `<html><body>
<div class="shop-product-page">
  <h1 class="heading-5 v-fw-regular">Apple - MacBook Air 13-inch</h1>
  <div class="priceView-customer-price"><span>$999.00</span><span>Your price</span></div>
  <div class="c-review-average">4.8</div>
  <span class="c-review-count">(2,345 Reviews)</span>
  <button class="fulfillment-add-to-cart-button">Add to Cart</button>
</div>
</body></html>`

const (
	amazonURL  = "https://www.amazon.com/dp/B0863TXGM3"
	bestBuyURL = "https://www.bestbuy.com/site/apple-macbook-air/6509650.p"
)

func mustDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return doc
}

// recordingNotifier captures notifications
type recordingNotifier struct {
	mu      sync.Mutex
	tabs    []string
	records []*domain.ProductRecord
}

func (n *recordingNotifier) Notify(tabID string, record *domain.ProductRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tabs = append(n.tabs, tabID)
	n.records = append(n.records, record)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.records)
}

// stubOpinionsClient is a mock implementation of domain.OpinionsClient
type stubOpinionsClient struct {
	result *domain.OpinionsResult
	err    error
	titles []string
	block  chan struct{}
}

func (c *stubOpinionsClient) FetchOpinions(ctx context.Context, productTitle string) (*domain.OpinionsResult, error) {
	c.titles = append(c.titles, productTitle)
	if c.block != nil {
		<-c.block
	}
	return c.result, c.err
}
