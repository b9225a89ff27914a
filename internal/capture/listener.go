// Package capture feeds observed network traffic into the library.
//
// A Listener receives request events from any source (the chromedp browser in
// this package, or clients posting to the HTTP API), filters and classifies
// them, and records page captures. Nothing a Listener does can fail the event
// source: every error is logged and the event dropped.
package capture

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/events"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// Recorder persists a classified capture.
type Recorder interface {
	RecordCapture(ctx context.Context, c sites.Capture) (bool, error)
}

// Status is what happened to one event.
type Status string

const (
	StatusRecorded  Status = "recorded"
	StatusKnown     Status = "known"     // page already in the book
	StatusDuplicate Status = "duplicate" // suppressed burst repeat
	StatusIgnored   Status = "ignored"
	StatusFailed    Status = "failed"
)

// Outcome describes how an event was handled.
type Outcome struct {
	Status        Status `json:"status"`
	Reason        string `json:"reason,omitempty"`
	BookKey       string `json:"book_key,omitempty"`
	PageReference string `json:"page_reference,omitempty"`
}

// Auditor keeps a copy of events that failed unexpectedly.
type Auditor interface {
	SaveJSON(data any) (string, error)
}

// AuditEntry is what an Auditor receives.
type AuditEntry struct {
	Time    time.Time     `json:"time"`
	Request sites.Request `json:"request"`
	Outcome Outcome       `json:"outcome"`
}

type Listener struct {
	classifier *sites.Classifier
	recorder   Recorder
	tabs       tabs.Provider
	recent     *sites.RecentURLs
	auditor    Auditor
	logger     *zap.Logger
}

func NewListener(classifier *sites.Classifier, recorder Recorder, tabProvider tabs.Provider, recent *sites.RecentURLs, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		classifier: classifier,
		recorder:   recorder,
		tabs:       tabProvider,
		recent:     recent,
		logger:     logger,
	}
}

// SetAuditor enables auditing of failed and unexpectedly dropped events.
func (l *Listener) SetAuditor(a Auditor) {
	l.auditor = a
}

// HandleRequest processes a completed request.
func (l *Listener) HandleRequest(ctx context.Context, req sites.Request) (out Outcome) {
	defer l.recoverInto(&out, req)

	if req.FromExtension() {
		return Outcome{Status: StatusIgnored, Reason: "extension initiator"}
	}
	u, err := url.Parse(req.URL)
	if err != nil || !l.classifier.Registry().InScope(u) {
		return Outcome{Status: StatusIgnored, Reason: "out of scope"}
	}
	// Only requests that could be pages enter the burst cache.
	if l.recent != nil && l.recent.Seen(req.URL) {
		return Outcome{Status: StatusDuplicate}
	}

	tab, err := l.activeTab(ctx)
	if err != nil {
		return l.drop(req, err)
	}
	c, err := l.classifier.Classify(req, tab.URL)
	if err != nil {
		return l.drop(req, err)
	}
	return l.record(ctx, req, c)
}

// HandleDirectImage processes a request as it starts. Only Ebook Central
// page images are recorded at this point; everything else waits for
// HandleRequest.
func (l *Listener) HandleDirectImage(ctx context.Context, req sites.Request) (out Outcome) {
	defer l.recoverInto(&out, req)

	u, err := url.Parse(req.URL)
	if err != nil || !sites.IsDirectPageImage(u) {
		return Outcome{Status: StatusIgnored, Reason: "not a direct page image"}
	}
	tab, err := l.activeTab(ctx)
	if err != nil {
		return l.drop(req, err)
	}
	key, err := l.classifier.Registry().BookKey(tab.URL)
	if err != nil {
		return l.drop(req, err)
	}
	return l.record(ctx, req, sites.Capture{BookKey: key, PageReference: req.URL, Site: "ProQuest Ebook Central"})
}

// Forget clears the burst-suppression cache.
func (l *Listener) Forget() {
	if l.recent != nil {
		l.recent.Forget()
	}
}

// WatchDeletions clears the burst cache whenever a book is deleted, so a
// freshly reset book can recapture the page currently on screen.
func (l *Listener) WatchDeletions(ctx context.Context, ch <-chan events.BookUpdateEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Deleted() {
				l.Forget()
			}
		}
	}
}

func (l *Listener) activeTab(ctx context.Context) (tabs.Tab, error) {
	if l.tabs == nil {
		return tabs.Tab{}, tabs.ErrNoActiveTab
	}
	return l.tabs.ActiveTab(ctx)
}

func (l *Listener) record(ctx context.Context, req sites.Request, c sites.Capture) Outcome {
	out := Outcome{BookKey: c.BookKey, PageReference: c.PageReference}
	changed, err := l.recorder.RecordCapture(ctx, c)
	if err != nil {
		l.logger.Error("failed to record page",
			zap.String("book", c.BookKey),
			zap.String("page", c.PageReference),
			zap.Error(err))
		out.Status = StatusFailed
		out.Reason = err.Error()
		l.audit(req, out)
		return out
	}
	out.Status = StatusKnown
	if changed {
		out.Status = StatusRecorded
		l.logger.Debug("page recorded", zap.String("book", c.BookKey), zap.String("site", c.Site))
	}
	return out
}

// drop logs a classification failure. These are expected while browsing
// non-reader pages, so only unexpected ones are logged above debug.
func (l *Listener) drop(req sites.Request, err error) Outcome {
	level := zap.DebugLevel
	if !errors.Is(err, sites.ErrNotAPage) && !errors.Is(err, sites.ErrNoActiveTab) &&
		!errors.Is(err, sites.ErrUnknownSite) && !errors.Is(err, sites.ErrMalformedURL) {
		level = zap.WarnLevel
	}
	l.logger.Log(level, "request dropped", zap.String("url", req.URL), zap.Error(err))
	out := Outcome{Status: StatusIgnored, Reason: err.Error()}
	if level == zap.WarnLevel {
		l.audit(req, out)
	}
	return out
}

func (l *Listener) recoverInto(out *Outcome, req sites.Request) {
	if rec := recover(); rec != nil {
		l.logger.Error("panic while handling request", zap.String("url", req.URL), zap.Any("panic", rec))
		*out = Outcome{Status: StatusFailed, Reason: "internal error"}
		l.audit(req, *out)
	}
}

func (l *Listener) audit(req sites.Request, out Outcome) {
	if l.auditor == nil {
		return
	}
	name, err := l.auditor.SaveJSON(AuditEntry{Time: time.Now().UTC(), Request: req, Outcome: out})
	if err != nil {
		l.logger.Warn("failed to save audit entry", zap.String("url", req.URL), zap.Error(err))
		return
	}
	l.logger.Debug("audit entry saved", zap.String("file", name))
}
