package assembler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// DocumentWriter accumulates placed pages and renders the final document.
type DocumentWriter interface {
	// AddPage places p on a new document page. The writer must not keep a
	// reference to p's data after returning.
	AddPage(p *Page) (Placement, error)
	Pages() int
	Finalize(w io.Writer) error
	Close() error
}

// WriterFactory opens a fresh writer per assembly.
type WriterFactory func() (DocumentWriter, error)

// PaperSize is the fixed portrait page every image is fitted to.
const PaperSize = "A4"

// PDFWriter spools page images to a private temp directory and builds the
// PDF with pdfcpu when finalized, so at most one decoded page is held in
// memory while the document grows.
type PDFWriter struct {
	dir   string
	files []string
	dim   types.Dim
	conf  *model.Configuration
}

// NewPDFWriter creates a spool directory under spoolDir (os.TempDir when
// empty).
func NewPDFWriter(spoolDir string) (*PDFWriter, error) {
	if spoolDir != "" {
		if err := os.MkdirAll(spoolDir, 0755); err != nil {
			return nil, fmt.Errorf("create spool dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(spoolDir, "assembly-")
	if err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &PDFWriter{
		dir:  dir,
		dim:  *types.PaperSize[PaperSize],
		conf: model.NewDefaultConfiguration(),
	}, nil
}

// PDFWriterFactory returns a WriterFactory spooling under spoolDir.
func PDFWriterFactory(spoolDir string) WriterFactory {
	return func() (DocumentWriter, error) {
		return NewPDFWriter(spoolDir)
	}
}

func (w *PDFWriter) AddPage(p *Page) (Placement, error) {
	ext := "png"
	if p.Format == "jpeg" {
		ext = "jpg"
	}
	name := filepath.Join(w.dir, fmt.Sprintf("%05d.%s", len(w.files)+1, ext))
	if err := os.WriteFile(name, p.Data(), 0600); err != nil {
		return Placement{}, fmt.Errorf("spool page: %w", err)
	}
	w.files = append(w.files, name)
	return Fit(w.dim.Width, w.dim.Height, p.Width, p.Height), nil
}

func (w *PDFWriter) Pages() int {
	return len(w.files)
}

// Finalize writes the PDF. With no pages placed the document holds a single
// blank page.
func (w *PDFWriter) Finalize(out io.Writer) error {
	files := w.files
	if len(files) == 0 {
		blank, err := blankPage(int(w.dim.Width), int(w.dim.Height))
		if err != nil {
			return fmt.Errorf("render blank page: %w", err)
		}
		name := filepath.Join(w.dir, "blank.jpg")
		if err := os.WriteFile(name, blank, 0600); err != nil {
			return err
		}
		files = []string{name}
	}

	readers := make([]io.Reader, 0, len(files))
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		readers = append(readers, f)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &w.dim
	imp.PageSize = PaperSize
	imp.Pos = types.TopLeft
	imp.Scale = 1.0
	imp.ScaleAbs = false

	if err := api.ImportImages(nil, out, readers, imp, w.conf); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return nil
}

// Close removes the spool directory.
func (w *PDFWriter) Close() error {
	return os.RemoveAll(w.dir)
}
