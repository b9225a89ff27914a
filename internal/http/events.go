package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/events"
)

// DefaultKeepalive is how often an idle event stream sends a comment line.
const DefaultKeepalive = 30 * time.Second

// EventSource hands out book update subscriptions.
type EventSource interface {
	Subscribe() (<-chan events.BookUpdateEvent, func())
}

// EventsController pushes BookWasUpdated notifications to the UI over
// server-sent events.
type EventsController struct {
	source    EventSource
	keepalive time.Duration
	logger    *zap.Logger
}

func NewEventsController(source EventSource, keepalive time.Duration, logger *zap.Logger) *EventsController {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsController{source: source, keepalive: keepalive, logger: logger}
}

// Stream handles GET /api/events
func (ec *EventsController) Stream(c *gin.Context) {
	ch, unsubscribe := ec.source.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ec.logger.Debug("event stream opened", zap.String("remote", c.ClientIP()))
	defer ec.logger.Debug("event stream closed", zap.String("remote", c.ClientIP()))

	c.SSEvent("connected", gin.H{"message": "subscribed to book updates"})
	c.Writer.Flush()

	ticker := time.NewTicker(ec.keepalive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(events.ActionBookWasUpdated, evt)
			return true
		case <-ticker.C:
			_, err := fmt.Fprint(w, ": keepalive\n\n")
			return err == nil
		}
	})
}
