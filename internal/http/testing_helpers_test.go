package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/capture"
	"github.com/mrlokans/pagescraper/internal/events"
	"github.com/mrlokans/pagescraper/internal/library"
	"github.com/mrlokans/pagescraper/internal/services"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

const (
	jstorTab   = "https://www.jstor.org/stable/41857568?read-now=1&seq=1"
	jstorKey   = "www.jstor.org/stable/41857568"
	jstorPage1 = "https://www.jstor.org/stable/get_image/41857568?path=p1"
	jstorPage2 = "https://www.jstor.org/stable/get_image/41857568?path=p2"
	jstorPage3 = "https://www.jstor.org/stable/get_image/41857568?path=p3"
)

type pageFetcher map[string][]byte

func (f pageFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := f[ref]
	if !ok {
		return nil, errors.New("status 403")
	}
	return data, nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		img.Set(x, x, color.RGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type testServer struct {
	router     *gin.Engine
	store      *library.MemoryStore
	reconciler *library.Reconciler
	tab        *tabs.Static
	bus        *events.Bus
	exports    *services.ExportService
	exportDir  string
}

func setupServer(t *testing.T, mutate ...func(*RouterConfig)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := sites.Default()
	store := library.NewMemoryStore()
	tab := tabs.NewStatic()
	bus := events.NewBus(zap.NewNop(), 16)
	t.Cleanup(bus.Close)

	reconciler := library.NewReconciler(store, registry, tab, bus, zap.NewNop())
	listener := capture.NewListener(sites.NewClassifier(registry), reconciler, tab, sites.NewRecentURLs(16, 0), zap.NewNop())

	img := testPNG(t)
	fetcher := pageFetcher{jstorPage1: img, jstorPage3: img}
	asm := assembler.New(registry, fetcher, zap.NewNop(), assembler.Options{SpoolDir: t.TempDir()})
	exportDir := t.TempDir()
	exports := services.NewExportService(reconciler, asm, nil, exportDir, zap.NewNop())

	cfg := RouterConfig{
		Books:     reconciler,
		Registry:  registry,
		Events:    bus,
		Requests:  listener,
		Tabs:      tab,
		TabSetter: tab,
		Exports:   exports,
		Version:   "test",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	return &testServer{
		router:     NewRouter(cfg),
		store:      store,
		reconciler: reconciler,
		tab:        tab,
		bus:        bus,
		exports:    exports,
		exportDir:  exportDir,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
