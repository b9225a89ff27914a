package sites

import "net/url"

// Registry is the ordered, immutable list of supported platforms.
type Registry struct {
	sites []SiteConfig
}

// NewRegistry keeps the given order; earlier entries win on overlap.
func NewRegistry(sites ...SiteConfig) *Registry {
	return &Registry{sites: append([]SiteConfig(nil), sites...)}
}

// Sites returns a copy of the entries in match order.
func (r *Registry) Sites() []SiteConfig {
	return append([]SiteConfig(nil), r.sites...)
}

// Match returns the first site whose IsPageImageRequest accepts the request.
func (r *Registry) Match(req Request, u *url.URL) (*SiteConfig, bool) {
	for i := range r.sites {
		if r.sites[i].IsPageImageRequest(req, u) {
			return &r.sites[i], true
		}
	}
	return nil, false
}

// ForHost returns the first site configured for exactly this host.
func (r *Registry) ForHost(host string) (*SiteConfig, bool) {
	for i := range r.sites {
		if r.sites[i].Host == host {
			return &r.sites[i], true
		}
	}
	return nil, false
}

// BookKey derives the book key for a reader page URL.
func (r *Registry) BookKey(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", ErrMalformedURL
	}
	site, ok := r.ForHost(u.Host)
	if !ok {
		return "", ErrUnknownSite
	}
	return site.BookKey(u), nil
}

// IsReaderPage reports whether the page action should be enabled for pageURL.
func (r *Registry) IsReaderPage(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	for _, s := range r.sites {
		if s.ReaderDomain.Match(u) {
			return true
		}
	}
	return false
}

// InScope reports whether any site's resource filter covers u, i.e. whether
// the request would have been delivered to the listener at all.
func (r *Registry) InScope(u *url.URL) bool {
	for _, s := range r.sites {
		if s.ResourceFilter.Match(u) {
			return true
		}
	}
	return false
}

// IsPageReference reports whether any site accepts ref as a page image.
func (r *Registry) IsPageReference(ref string) bool {
	for _, s := range r.sites {
		if s.IsPageReference(ref) {
			return true
		}
	}
	return false
}

// SiteInfo is the serialisable part of a SiteConfig.
type SiteInfo struct {
	Name           string `json:"name" yaml:"name"`
	Host           string `json:"host" yaml:"host"`
	URLScope       string `json:"url_scope" yaml:"url_scope"`
	ResourceFilter string `json:"resource_filter" yaml:"resource_filter"`
	ReaderMatches  string `json:"reader_matches,omitempty" yaml:"reader_matches,omitempty"`
	ReaderContains string `json:"reader_contains,omitempty" yaml:"reader_contains,omitempty"`
}

// Info describes the registry in match order.
func (r *Registry) Info() []SiteInfo {
	out := make([]SiteInfo, 0, len(r.sites))
	for _, s := range r.sites {
		info := SiteInfo{
			Name:           s.Name,
			Host:           s.Host,
			URLScope:       s.URLScope.String(),
			ResourceFilter: s.ResourceFilter.String(),
			ReaderContains: s.ReaderDomain.URLContains,
		}
		if s.ReaderDomain.URLMatches != nil {
			info.ReaderMatches = s.ReaderDomain.URLMatches.String()
		}
		out = append(out, info)
	}
	return out
}
