// Package assembler turns a book's captured page list into a single PDF.
//
// Pages are processed strictly in list order, one at a time: each reference
// is fetched, decoded and placed on a fixed A4 portrait page, scaled to fit
// and anchored top-left. A page that fails to load is reported and skipped;
// only an empty book, a book with no recognisable page images, or an
// unexpected failure aborts the job. Progress counts attempts, not
// successes.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/utils"
)

// DefaultPageTimeout bounds one page's fetch and decode.
const DefaultPageTimeout = 60 * time.Second

// Options tune an Assembler. Zero values select the defaults.
type Options struct {
	PageTimeout          time.Duration
	FailOnAllPagesFailed bool
	SpoolDir             string
	Decoder              Decoder
	NewWriter            WriterFactory
}

type Assembler struct {
	registry  *sites.Registry
	fetcher   Fetcher
	decoder   Decoder
	newWriter WriterFactory
	logger    *zap.Logger

	pageTimeout          time.Duration
	failOnAllPagesFailed bool
	spoolDir             string
}

func New(registry *sites.Registry, fetcher Fetcher, logger *zap.Logger, opts Options) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assembler{
		registry:             registry,
		fetcher:              fetcher,
		decoder:              opts.Decoder,
		newWriter:            opts.NewWriter,
		logger:               logger,
		pageTimeout:          opts.PageTimeout,
		failOnAllPagesFailed: opts.FailOnAllPagesFailed,
		spoolDir:             opts.SpoolDir,
	}
	if a.decoder == nil {
		a.decoder = ImageDecoder{}
	}
	if a.newWriter == nil {
		a.newWriter = PDFWriterFactory(opts.SpoolDir)
	}
	if a.pageTimeout <= 0 {
		a.pageTimeout = DefaultPageTimeout
	}
	return a
}

// Document describes a finished export.
type Document struct {
	Filename   string
	Location   string // where Output put it, if anywhere addressable
	BookURL    string
	Attempted  int
	Placed     int
	Placements []Placement
	PageErrors []*PageError
	Size       int64
}

// ValidPages returns the references the registry recognises as page images,
// in order.
func (a *Assembler) ValidPages(pages []string) []string {
	valid := make([]string, 0, len(pages))
	for _, ref := range pages {
		if a.registry.IsPageReference(ref) {
			valid = append(valid, ref)
		}
	}
	return valid
}

// Assemble builds the PDF for book and hands it to out. title names the file;
// the book key is used when it is empty. The page list is snapshotted on
// entry, so concurrent edits to the book do not affect a running job.
func (a *Assembler) Assemble(ctx context.Context, book *entities.Book, title string, out Output, r Reporter) (doc *Document, err error) {
	if r == nil {
		r = NopReporter{}
	}
	log := a.logger
	if book != nil {
		log = log.With(zap.String("book", book.URL))
	}

	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("unexpected failure: %v", rec)
		}
		if err != nil {
			r.OnError("Fatal error: " + err.Error())
			log.Error("assembly failed", zap.Error(err))
		}
	}()

	if book == nil || len(book.Pages) == 0 {
		return nil, ErrEmptyBook
	}
	pages := a.ValidPages(book.Pages)
	if len(pages) == 0 {
		return nil, ErrNoValidPages
	}

	w, err := a.newWriter()
	if err != nil {
		return nil, err
	}
	defer w.Close()

	doc = &Document{BookURL: book.URL, Attempted: len(pages)}
	total := len(pages)
	var prev *Page

	for i, ref := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.OnLog(fmt.Sprintf("Processing page %d of %d", i+1, total))

		page, perr := a.loadPage(ctx, i+1, ref)
		if perr != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if perr == nil {
			placement, err := w.AddPage(page)
			if err != nil {
				perr = &PageError{Index: i + 1, Ref: ref, Stage: StagePlace, Err: err}
			} else {
				doc.Placed++
				doc.Placements = append(doc.Placements, placement)
				// The previous page is released only once the current one
				// is placed.
				if prev != nil {
					prev.Release()
				}
				prev = page
			}
		}
		if perr != nil {
			doc.PageErrors = append(doc.PageErrors, perr)
			r.OnLog(perr.Error())
			r.OnError(perr.Error())
			log.Warn("page skipped", zap.Int("page", i+1), zap.String("ref", ref), zap.Error(perr.Err))
			a.forget(ref, log)
		}

		r.OnProgress(int(math.Round(float64(i+1) / float64(total) * 100)))
	}
	if prev != nil {
		prev.Release()
	}

	if doc.Placed == 0 && a.failOnAllPagesFailed {
		return nil, ErrAllPagesFailed
	}

	doc.Filename = utils.DocumentFilename(title, book.URL, doc.Attempted)

	if a.spoolDir != "" {
		if err := os.MkdirAll(a.spoolDir, 0755); err != nil {
			return nil, err
		}
	}
	spooled, err := os.CreateTemp(a.spoolDir, "document-*.pdf")
	if err != nil {
		return nil, err
	}
	defer func() {
		spooled.Close()
		os.Remove(spooled.Name())
	}()
	if err := w.Finalize(spooled); err != nil {
		return nil, err
	}
	r.OnLog("PDF generation complete.")

	r.OnLog("Starting PDF download.")
	if err := a.deliver(spooled, out, doc); err != nil {
		return nil, err
	}
	r.OnLog("PDF download complete.")

	log.Info("assembly complete",
		zap.Int("attempted", doc.Attempted),
		zap.Int("placed", doc.Placed),
		zap.String("filename", doc.Filename))
	return doc, nil
}

// forget drops a cached copy of a page that failed, so a retry refetches it.
func (a *Assembler) forget(ref string, log *zap.Logger) {
	inv, ok := a.fetcher.(Invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ref); err != nil {
		log.Warn("failed to drop cached page", zap.String("ref", ref), zap.Error(err))
	}
}

func (a *Assembler) loadPage(ctx context.Context, index int, ref string) (*Page, *PageError) {
	pctx, cancel := context.WithTimeout(ctx, a.pageTimeout)
	defer cancel()

	type result struct {
		page *Page
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := a.fetcher.Fetch(pctx, ref)
		if err != nil {
			done <- result{err: err}
			return
		}
		page, err := a.decoder.Decode(index, ref, data)
		done <- result{page: page, err: err}
	}()

	// A fetcher that ignores its context still cannot stall the job past
	// the page timeout.
	select {
	case res := <-done:
		if res.err != nil {
			return nil, &PageError{Index: index, Ref: ref, Stage: StageLoad, Err: res.err}
		}
		return res.page, nil
	case <-pctx.Done():
		err := pctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", a.pageTimeout)
		}
		return nil, &PageError{Index: index, Ref: ref, Stage: StageLoad, Err: err}
	}
}

func (a *Assembler) deliver(spooled *os.File, out Output, doc *Document) error {
	if out == nil {
		return nil
	}
	if _, err := spooled.Seek(0, io.SeekStart); err != nil {
		return err
	}
	dst, location, err := out.Create(doc.Filename)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	n, err := io.Copy(dst, spooled)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	doc.Location = location
	doc.Size = n
	return nil
}
