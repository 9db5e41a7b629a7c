package usecase

import (
	"testing"

	"github.com/productlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSelectors(t *testing.T) {
	amazon, ok := LookupSelectors(domain.SiteAmazon)
	require.True(t, ok)
	assert.Equal(t, "#dp-container", amazon.Container)
	assert.Equal(t, "#feature-bullets", amazon.Features)

	bestBuy, ok := LookupSelectors(domain.SiteBestBuy)
	require.True(t, ok)
	assert.Equal(t, ".shop-product-page", bestBuy.Container)
	assert.Empty(t, bestBuy.Description)
	assert.Empty(t, bestBuy.Features)

	_, ok = LookupSelectors(domain.SiteUnknown)
	assert.False(t, ok)
}

func TestLookupSelectorsReturnsCopy(t *testing.T) {
	set, _ := LookupSelectors(domain.SiteAmazon)
	set.Title = "#changed"

	again, _ := LookupSelectors(domain.SiteAmazon)
	assert.Equal(t, "#productTitle", again.Title)
}

func TestSupportedSites(t *testing.T) {
	sites := SupportedSites()
	assert.Equal(t, []domain.SiteID{domain.SiteAmazon, domain.SiteBestBuy}, sites)

	sites[0] = domain.SiteUnknown
	assert.Equal(t, domain.SiteAmazon, SupportedSites()[0])
}

func TestCompileSelectorSet(t *testing.T) {
	tests := []struct {
		name    string
		set     SelectorSet
		wantErr bool
	}{
		{"all registered sites compile", selectorTable[domain.SiteBestBuy], false},
		{"optional selectors may be empty", SelectorSet{Container: "main", Title: "h1", Price: ".price"}, false},
		{"missing required selector", SelectorSet{Container: "main", Title: "h1"}, true},
		{"malformed selector", SelectorSet{Container: "main", Title: "h1[", Price: ".price"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := compileSelectorSet(tt.set)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, compiled.container)
			assert.NotNil(t, compiled.price)
		})
	}
}

func TestCompiledTableCoversSupportedSites(t *testing.T) {
	for _, site := range SupportedSites() {
		compiled := compiledTable[site]
		if assert.NotNil(t, compiled, "site %s", site) {
			assert.NotNil(t, compiled.title)
		}
	}

	optional, err := compileSelectorSet(SelectorSet{Container: "div", Title: "h1", Price: "p"})
	assert.NoError(t, err)
	assert.Nil(t, optional.features, "optional selectors stay nil when not offered")
	assert.Nil(t, optional.description)
}

func TestMustCompileTablePanicsOnBadSelector(t *testing.T) {
	assert.Panics(t, func() {
		mustCompileTable(map[domain.SiteID]SelectorSet{
			domain.SiteAmazon: {Container: "#dp-container", Title: ">>", Price: ".a-price"},
		})
	})
}
