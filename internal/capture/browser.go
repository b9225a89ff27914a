package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// selfInitiator marks requests the browser makes on our behalf so the
// listener ignores them like an extension's own fetches.
const selfInitiator = "chrome-extension://pagescraper"

// maxPending bounds the in-flight request table; Chrome normally reports
// every request as finished or failed, this only guards against leaks.
const maxPending = 4096

type BrowserConfig struct {
	Headless    bool
	StartURL    string
	UserDataDir string
	UserAgent   string
}

type pendingRequest struct {
	url       string
	method    string
	initiator string
	typ       sites.ResourceType
}

// Browser is a Chrome window driven over the DevTools protocol. The user
// reads in it; its network traffic feeds a Listener and its main frame is the
// active tab.
type Browser struct {
	cfg      BrowserConfig
	listener *Listener
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// dispatch runs event handlers off the protocol goroutine.
	dispatch func(func())

	mu          sync.RWMutex
	tab         tabs.Tab
	mainFrameID cdp.FrameID
	pending     map[network.RequestID]*pendingRequest
	selfFetches map[string]int
}

func NewBrowser(listener *Listener, cfg BrowserConfig, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "about:blank"
	}
	return &Browser{
		cfg:         cfg,
		listener:    listener,
		logger:      logger,
		dispatch:    func(f func()) { go f() },
		pending:     make(map[network.RequestID]*pendingRequest),
		selfFetches: make(map[string]int),
	}
}

// SetListener wires the listener fed by this browser's traffic. The listener
// usually takes the browser as its tab provider, so it is created afterwards.
// Call it before Start.
func (b *Browser) SetListener(l *Listener) {
	b.listener = l
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("hide-scrollbars", b.cfg.Headless),
		chromedp.Flag("mute-audio", b.cfg.Headless),
		chromedp.DisableGPU,
	)
	if b.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.cfg.UserAgent))
	}
	if b.cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(b.cfg.UserDataDir))
	}
	return opts
}

// Start launches Chrome and begins listening. The browser lives until ctx is
// cancelled or Close is called.
func (b *Browser) Start(ctx context.Context) error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.logger.Sugar().Infof),
		chromedp.WithErrorf(b.logger.Sugar().Errorf),
	)
	b.ctx = taskCtx
	b.cancel = func() {
		taskCancel()
		allocCancel()
	}

	chromedp.ListenTarget(taskCtx, b.handleEvent)

	b.logger.Info("starting capture browser",
		zap.Bool("headless", b.cfg.Headless),
		zap.String("url", b.cfg.StartURL))

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(b.cfg.StartURL),
	); err != nil {
		b.cancel()
		return fmt.Errorf("start browser: %w", err)
	}
	return nil
}

// Done is closed when the browser exits.
func (b *Browser) Done() <-chan struct{} {
	return b.ctx.Done()
}

func (b *Browser) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// ActiveTab implements tabs.Provider.
func (b *Browser) ActiveTab(_ context.Context) (tabs.Tab, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.tab.URL == "" || strings.HasPrefix(b.tab.URL, "about:") {
		return tabs.Tab{}, tabs.ErrNoActiveTab
	}
	return b.tab, nil
}

// Fetch loads ref from inside the reading page so the request carries the
// user's session cookies. It implements the assembler's Fetcher.
func (b *Browser) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if b.ctx == nil {
		return nil, fmt.Errorf("browser not started")
	}
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	b.markSelfFetch(ref, 1)
	defer b.markSelfFetch(ref, -1)

	var encoded string
	err := chromedp.Run(runCtx, chromedp.Evaluate(fetchScript(ref), &encoded,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func fetchScript(ref string) string {
	return fmt.Sprintf(`fetch(%q, {credentials: "include"})
		.then(r => { if (!r.ok) throw new Error("failed to fetch page: status " + r.status); return r.arrayBuffer(); })
		.then(buf => {
			const bytes = new Uint8Array(buf);
			let s = "";
			for (let i = 0; i < bytes.length; i += 0x8000) {
				s += String.fromCharCode.apply(null, bytes.subarray(i, i + 0x8000));
			}
			return btoa(s);
		})`, ref)
}

func (b *Browser) markSelfFetch(ref string, delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selfFetches[ref] += delta
	if b.selfFetches[ref] <= 0 {
		delete(b.selfFetches, ref)
	}
}

// handleEvent runs on chromedp's event goroutine. It must not block or call
// chromedp.Run directly.
func (b *Browser) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		b.onRequestWillBeSent(e)
	case *network.EventResponseReceived:
		b.onResponseReceived(e)
	case *network.EventLoadingFinished:
		b.onLoadingFinished(e)
	case *network.EventLoadingFailed:
		b.mu.Lock()
		delete(b.pending, e.RequestID)
		b.mu.Unlock()
	case *page.EventFrameNavigated:
		if e.Frame != nil && e.Frame.ParentID == "" {
			b.setMainFrame(e.Frame.ID, e.Frame.URL+e.Frame.URLFragment)
		}
	case *page.EventNavigatedWithinDocument:
		b.mu.RLock()
		main := b.mainFrameID
		b.mu.RUnlock()
		if main == "" || e.FrameID == main {
			b.setMainFrame(e.FrameID, e.URL)
		}
	case *page.EventLoadEventFired:
		b.dispatch(b.refreshTitle)
	}
}

func (b *Browser) onRequestWillBeSent(e *network.EventRequestWillBeSent) {
	if e.Request == nil {
		return
	}
	req := sites.Request{
		URL:    e.Request.URL,
		Method: e.Request.Method,
		Type:   resourceType(e.Type),
	}
	if e.Initiator != nil {
		req.Initiator = e.Initiator.URL
	}

	b.mu.Lock()
	if b.selfFetches[req.URL] > 0 {
		req.Initiator = selfInitiator
	}
	if len(b.pending) >= maxPending {
		b.logger.Warn("pending request table full, resetting", zap.Int("size", len(b.pending)))
		b.pending = make(map[network.RequestID]*pendingRequest)
	}
	b.pending[e.RequestID] = &pendingRequest{url: req.URL, method: req.Method, initiator: req.Initiator, typ: req.Type}
	b.mu.Unlock()

	if req.Initiator == selfInitiator {
		return
	}
	b.dispatch(func() { b.listener.HandleDirectImage(b.ctx, req) })
}

func (b *Browser) onResponseReceived(e *network.EventResponseReceived) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[e.RequestID]
	if !ok {
		p = &pendingRequest{}
		b.pending[e.RequestID] = p
	}
	if e.Response != nil && e.Response.URL != "" {
		p.url = e.Response.URL
	}
	if e.Type != "" {
		p.typ = resourceType(e.Type)
	}
}

// onLoadingFinished is the equivalent of a completed request.
func (b *Browser) onLoadingFinished(e *network.EventLoadingFinished) {
	b.mu.Lock()
	p, ok := b.pending[e.RequestID]
	delete(b.pending, e.RequestID)
	b.mu.Unlock()
	if !ok || p.url == "" {
		return
	}

	req := sites.Request{URL: p.url, Type: p.typ, Method: p.method, Initiator: p.initiator}
	b.dispatch(func() { b.listener.HandleRequest(b.ctx, req) })
}

func (b *Browser) setMainFrame(id cdp.FrameID, url string) {
	b.mu.Lock()
	changed := b.tab.URL != url
	b.mainFrameID = id
	b.tab.URL = url
	b.mu.Unlock()

	if changed {
		b.logger.Debug("active tab changed", zap.String("url", url))
		b.dispatch(b.refreshTitle)
	}
}

func (b *Browser) refreshTitle() {
	if b.ctx == nil {
		return
	}
	var title string
	if err := chromedp.Run(b.ctx, chromedp.Title(&title)); err != nil {
		b.logger.Debug("failed to read title", zap.Error(err))
		return
	}
	b.mu.Lock()
	b.tab.Title = title
	b.mu.Unlock()
}

// resourceType maps DevTools resource types to webRequest types.
func resourceType(t network.ResourceType) sites.ResourceType {
	switch t {
	case network.ResourceTypeImage:
		return sites.ResourceTypeImage
	case network.ResourceTypeXHR, network.ResourceTypeFetch:
		return sites.ResourceTypeXHR
	case network.ResourceTypeDocument:
		return sites.ResourceTypeMainFrame
	case network.ResourceTypeScript:
		return sites.ResourceTypeScript
	case network.ResourceTypeStylesheet:
		return sites.ResourceTypeStyle
	case network.ResourceTypeFont:
		return sites.ResourceTypeFont
	case network.ResourceTypeMedia:
		return sites.ResourceTypeMedia
	default:
		return sites.ResourceTypeOther
	}
}
