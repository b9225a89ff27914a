package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagescraper/internal/sites"
)

type SitesController struct {
	registry *sites.Registry
}

func NewSitesController(registry *sites.Registry) *SitesController {
	return &SitesController{registry: registry}
}

// ListSites handles GET /api/sites
func (sc *SitesController) ListSites(c *gin.Context) {
	info := sc.registry.Info()
	c.JSON(http.StatusOK, gin.H{"sites": info, "count": len(info)})
}

// ReaderStatus handles GET /api/sites/reader?url=, the check that decides
// whether the page action is enabled for a tab.
func (sc *SitesController) ReaderStatus(c *gin.Context) {
	pageURL, ok := requireBookURL(c)
	if !ok {
		return
	}
	resp := gin.H{
		"url":    pageURL,
		"reader": sc.registry.IsReaderPage(pageURL),
	}
	if key, err := sc.registry.BookKey(pageURL); err == nil {
		resp["book_key"] = key
	}
	c.JSON(http.StatusOK, resp)
}
