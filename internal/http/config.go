package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/services"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books    BookService
	Registry *sites.Registry
	Events   EventSource

	// Capture ingestion. TabSetter is nil when the capture browser owns the
	// active tab.
	Requests  RequestHandler
	Tabs      tabs.Provider
	TabSetter TabSetter
	Badge     BadgeReader // optional

	// PDF export
	Exports     *services.ExportService
	ExportQueue ExportEnqueuer

	// Task queue inspection (optional)
	TaskStatus TaskStatusReader

	// Health checks by name
	HealthChecks map[string]Pinger

	// SSE keepalive interval; zero selects DefaultKeepalive
	Keepalive time.Duration

	// Application info
	Version string

	Logger *zap.Logger
}
