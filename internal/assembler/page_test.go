package assembler

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDecoder(t *testing.T) {
	d := ImageDecoder{}

	t.Run("png kept as is", func(t *testing.T) {
		data := pngBytes(t, 30, 40)
		p, err := d.Decode(1, "ref", data)
		require.NoError(t, err)
		assert.Equal(t, "png", p.Format)
		assert.Equal(t, 30, p.Width)
		assert.Equal(t, 40, p.Height)
		assert.Equal(t, data, p.Data())
	})

	t.Run("gif re-encoded to png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 8, 8), []color.Color{color.White}), nil))

		p, err := d.Decode(1, "ref", buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "png", p.Format)
		_, format, err := image.DecodeConfig(bytes.NewReader(p.Data()))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
	})

	t.Run("html error page rejected", func(t *testing.T) {
		_, err := d.Decode(1, "ref", []byte("<html>Session expired</html>"))
		assert.Error(t, err)
	})

	t.Run("truncated png rejected", func(t *testing.T) {
		data := pngBytes(t, 50, 50)
		_, err := d.Decode(1, "ref", data[:len(data)/2])
		assert.Error(t, err)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := d.Decode(1, "ref", nil)
		assert.Error(t, err)
	})
}

func TestPage_Release(t *testing.T) {
	p, err := ImageDecoder{}.Decode(1, "ref", pngBytes(t, 2, 2))
	require.NoError(t, err)

	p.Release()
	assert.True(t, p.Released())
	assert.Nil(t, p.Data())
}

func TestFit(t *testing.T) {
	tall := Fit(595, 842, 1000, 2000)
	assert.InDelta(t, 421, tall.Width, 0.01)
	assert.InDelta(t, 842, tall.Height, 0.01)

	wide := Fit(595, 842, 2000, 1000)
	assert.InDelta(t, 595, wide.Width, 0.01)
	assert.InDelta(t, 297.5, wide.Height, 0.01)

	small := Fit(595, 842, 100, 100)
	assert.InDelta(t, 595, small.Width, 0.01, "small images are scaled up")

	assert.Zero(t, Fit(595, 842, 0, 10))
	assert.Equal(t, 0.0, tall.X)
	assert.Equal(t, 0.0, tall.Y)
}
