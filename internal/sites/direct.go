package sites

import (
	"net/url"
	"strings"
)

// directImageScope is where page images are recorded as soon as the request
// starts, before any response is seen.
var directImageScope = MustCompilePattern("*://ebookcentral.proquest.com/*/docImage.action*")

// IsDirectPageImage reports whether u is an Ebook Central page image that is
// recorded on request start regardless of resource type.
func IsDirectPageImage(u *url.URL) bool {
	return u != nil &&
		directImageScope.Match(u) &&
		strings.Contains(u.Path, "/docImage.action") &&
		u.Query().Has("encrypted")
}
