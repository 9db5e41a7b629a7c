package usecase

import (
	"testing"

	"github.com/productlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIdentifySite(t *testing.T) {
	tests := []struct {
		hostname string
		want     domain.SiteID
	}{
		{"www.amazon.com", domain.SiteAmazon},
		{"smile.amazon.co.uk", domain.SiteAmazon},
		{"WWW.AMAZON.DE", domain.SiteAmazon},
		{"www.bestbuy.com", domain.SiteBestBuy},
		{"bestbuy.ca", domain.SiteBestBuy},
		{"example.com", domain.SiteUnknown},
		{"", domain.SiteUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifySite(tt.hostname))
		})
	}
}

func TestIdentifySiteFromURL(t *testing.T) {
	tests := []struct {
		rawURL string
		want   domain.SiteID
	}{
		{amazonURL, domain.SiteAmazon},
		{bestBuyURL, domain.SiteBestBuy},
		{"https://example.com/amazon-deals", domain.SiteUnknown},
		{"not a url", domain.SiteUnknown},
		{"://broken", domain.SiteUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifySiteFromURL(tt.rawURL))
		})
	}
}
