package assembler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Page is one decoded page image ready to be placed. Data is held until
// Release is called.
type Page struct {
	Index  int
	Ref    string
	Format string // "jpeg" or "png"; other sources are re-encoded
	Width  int
	Height int

	data     []byte
	released bool
}

func (p *Page) Data() []byte {
	return p.data
}

// Release drops the image bytes.
func (p *Page) Release() {
	p.data = nil
	p.released = true
}

func (p *Page) Released() bool {
	return p.released
}

// Decoder turns fetched bytes into a placeable page.
type Decoder interface {
	Decode(index int, ref string, data []byte) (*Page, error)
}

// ImageDecoder fully decodes every image to reject truncated or corrupt
// downloads before they reach the document. JPEG and PNG are kept as
// fetched; anything else is re-encoded as PNG.
type ImageDecoder struct{}

func (ImageDecoder) Decode(index int, ref string, data []byte) (*Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image has no area")
	}

	page := &Page{Index: index, Ref: ref, Width: b.Dx(), Height: b.Dy()}
	switch format {
	case "jpeg", "png":
		page.Format = format
		page.data = data
	default:
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("re-encode %s image: %w", format, err)
		}
		page.Format = "png"
		page.data = buf.Bytes()
	}
	return page, nil
}

// Placement is where an image lands on its document page, in points.
type Placement struct {
	X, Y          float64
	Width, Height float64
}

// Fit scales an image to fit inside the page, preserving aspect ratio and
// anchoring it at the top-left corner.
func Fit(pageWidth, pageHeight float64, imgWidth, imgHeight int) Placement {
	if imgWidth <= 0 || imgHeight <= 0 {
		return Placement{}
	}
	ratio := min(pageWidth/float64(imgWidth), pageHeight/float64(imgHeight))
	return Placement{
		Width:  float64(imgWidth) * ratio,
		Height: float64(imgHeight) * ratio,
	}
}

// blankPage renders an empty white page image, used when no page could be
// placed so the document is still valid.
func blankPage(width, height int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
