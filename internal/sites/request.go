package sites

import "strings"

// ResourceType is the browser's category for an observed request, using the
// webRequest vocabulary ("image", "xmlhttprequest", ...).
type ResourceType string

const (
	ResourceTypeImage     ResourceType = "image"
	ResourceTypeXHR       ResourceType = "xmlhttprequest"
	ResourceTypeMainFrame ResourceType = "main_frame"
	ResourceTypeSubFrame  ResourceType = "sub_frame"
	ResourceTypeScript    ResourceType = "script"
	ResourceTypeStyle     ResourceType = "stylesheet"
	ResourceTypeFont      ResourceType = "font"
	ResourceTypeMedia     ResourceType = "media"
	ResourceTypeOther     ResourceType = "other"
)

// Request is one observed network request at the interception boundary.
type Request struct {
	URL       string       `json:"url" binding:"required"`
	Type      ResourceType `json:"type"`
	Method    string       `json:"method,omitempty"`
	Initiator string       `json:"initiator,omitempty"`
}

var extensionSchemes = []string{"chrome-extension://", "moz-extension://", "safari-web-extension://"}

// FromExtension reports whether the request was started by a browser
// extension, including our own page fetches.
func (r Request) FromExtension() bool {
	for _, s := range extensionSchemes {
		if strings.Contains(r.Initiator, s) {
			return true
		}
	}
	return false
}
