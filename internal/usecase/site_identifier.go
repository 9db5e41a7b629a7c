package usecase

import (
	"net/url"
	"strings"

	"github.com/productlens/backend/internal/domain"
)

// IdentifySite maps a hostname to a site by ordered substring containment.
// The first matching site wins; no match yields domain.SiteUnknown.
func IdentifySite(hostname string) domain.SiteID {
	host := strings.ToLower(hostname)
	for _, site := range siteOrder {
		if strings.Contains(host, string(site)) {
			return site
		}
	}
	return domain.SiteUnknown
}

// IdentifySiteFromURL identifies the site of a page address
func IdentifySiteFromURL(rawURL string) domain.SiteID {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return domain.SiteUnknown
	}
	return IdentifySite(u.Hostname())
}
