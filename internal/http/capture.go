package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagescraper/internal/capture"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// RequestHandler consumes observed network requests.
type RequestHandler interface {
	HandleRequest(ctx context.Context, req sites.Request) capture.Outcome
	HandleDirectImage(ctx context.Context, req sites.Request) capture.Outcome
}

// TabSetter records the tab an external client reports as active.
type TabSetter interface {
	Set(tab tabs.Tab)
}

// Request stages accepted by POST /api/requests.
const (
	StageCompleted = "completed"
	StageBefore    = "before"
)

type ingestRequest struct {
	sites.Request
	// Stage is "completed" (default) for a finished request or "before" for
	// one that is about to be sent.
	Stage string `json:"stage"`
	// Tab optionally reports the active tab along with the request.
	Tab *tabs.Tab `json:"tab,omitempty"`
}

// BadgeReader exposes the page-count badge of the active tab.
type BadgeReader interface {
	Text() string
}

// CaptureController lets external clients, such as a thin browser extension,
// feed the capture pipeline.
type CaptureController struct {
	handler  RequestHandler
	tabs     tabs.Provider
	setter   TabSetter
	registry *sites.Registry
	badge    BadgeReader
}

func NewCaptureController(handler RequestHandler, provider tabs.Provider, setter TabSetter, registry *sites.Registry, badge BadgeReader) *CaptureController {
	return &CaptureController{
		handler:  handler,
		tabs:     provider,
		setter:   setter,
		registry: registry,
		badge:    badge,
	}
}

// IngestRequest handles POST /api/requests
func (cc *CaptureController) IngestRequest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request event: "+err.Error())
		return
	}
	if req.Tab != nil && cc.setter != nil {
		cc.setter.Set(*req.Tab)
	}

	var out capture.Outcome
	switch req.Stage {
	case "", StageCompleted:
		out = cc.handler.HandleRequest(c.Request.Context(), req.Request)
	case StageBefore:
		out = cc.handler.HandleDirectImage(c.Request.Context(), req.Request)
	default:
		respondBadRequest(c, "unknown stage: "+req.Stage)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ActiveTabResponse describes the active tab and whether it is a reader.
type ActiveTabResponse struct {
	Tab     tabs.Tab `json:"tab"`
	Reader  bool     `json:"reader"`
	BookKey string   `json:"book_key,omitempty"`
	Badge   string   `json:"badge,omitempty"`
}

// GetActiveTab handles GET /api/tabs/active
func (cc *CaptureController) GetActiveTab(c *gin.Context) {
	tab, err := cc.tabs.ActiveTab(c.Request.Context())
	if errors.Is(err, tabs.ErrNoActiveTab) {
		respondNotFound(c, "active tab")
		return
	}
	if err != nil {
		respondInternalError(c, err, "active tab")
		return
	}
	c.JSON(http.StatusOK, cc.describe(tab))
}

// SetActiveTab handles POST /api/tabs/active
func (cc *CaptureController) SetActiveTab(c *gin.Context) {
	if !cc.ownsTabs(c) {
		return
	}
	var tab tabs.Tab
	if err := c.ShouldBindJSON(&tab); err != nil {
		respondBadRequest(c, "url is required")
		return
	}
	cc.setter.Set(tab)
	c.JSON(http.StatusOK, cc.describe(tab))
}

// ClearActiveTab handles DELETE /api/tabs/active
func (cc *CaptureController) ClearActiveTab(c *gin.Context) {
	if !cc.ownsTabs(c) {
		return
	}
	cc.setter.Set(tabs.Tab{})
	c.Status(http.StatusNoContent)
}

// ownsTabs answers 409 when the capture browser tracks the active tab.
func (cc *CaptureController) ownsTabs(c *gin.Context) bool {
	if cc.setter == nil {
		respondError(c, http.StatusConflict, "tabs_managed", "active tab is tracked by the capture browser")
		return false
	}
	return true
}

func (cc *CaptureController) describe(tab tabs.Tab) ActiveTabResponse {
	resp := ActiveTabResponse{Tab: tab, Reader: cc.registry.IsReaderPage(tab.URL)}
	if key, err := cc.registry.BookKey(tab.URL); err == nil {
		resp.BookKey = key
	}
	if cc.badge != nil {
		resp.Badge = cc.badge.Text()
	}
	return resp
}
