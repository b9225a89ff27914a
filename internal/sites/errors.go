package sites

import (
	"errors"

	"github.com/mrlokans/pagescraper/internal/tabs"
)

// Classification failures. All of them mean "drop the event"; none is
// user-visible.
var (
	ErrMalformedURL = errors.New("malformed URL")
	ErrNotAPage     = errors.New("request is not a page image")
	ErrUnknownSite  = errors.New("active tab is not a supported reader site")
	ErrNoActiveTab  = tabs.ErrNoActiveTab
)
