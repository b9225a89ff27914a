package sites

import (
	"net/url"
)

// Capture is a classified page-image request.
type Capture struct {
	BookKey       string
	PageReference string
	Site          string
}

// Classifier maps observed requests onto (book key, page reference) pairs.
type Classifier struct {
	registry *Registry
}

func NewClassifier(registry *Registry) *Classifier {
	return &Classifier{registry: registry}
}

// PageReference classifies the request alone and returns the page reference
// to store. The book key is not involved: image endpoints rarely carry the
// book's canonical ID.
func (c *Classifier) PageReference(req Request) (string, *SiteConfig, error) {
	u, err := url.Parse(req.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", nil, ErrMalformedURL
	}

	site, ok := c.registry.Match(req, u)
	if !ok {
		return "", nil, ErrNotAPage
	}
	ref, ok := site.PageReference(u)
	if !ok || ref == "" {
		return "", site, ErrNotAPage
	}
	return ref, site, nil
}

// Classify derives the page reference from the request and the book key from
// tabURL, the URL of the reader page currently in front of the user.
func (c *Classifier) Classify(req Request, tabURL string) (Capture, error) {
	ref, site, err := c.PageReference(req)
	if err != nil {
		return Capture{}, err
	}
	if tabURL == "" {
		return Capture{}, ErrNoActiveTab
	}
	key, err := c.registry.BookKey(tabURL)
	if err != nil {
		return Capture{}, err
	}
	return Capture{BookKey: key, PageReference: ref, Site: site.Name}, nil
}

// Registry exposes the registry the classifier matches against.
func (c *Classifier) Registry() *Registry {
	return c.registry
}
