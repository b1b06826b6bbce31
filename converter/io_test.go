package converter

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(h, w int) *Image {
	img := NewImage(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(y, x, 0, uint8(x*255/max(w-1, 1)))
			img.Set(y, x, 1, uint8(y*255/max(h-1, 1)))
			img.Set(y, x, 2, uint8((x+y)%256))
		}
	}
	return img
}

func TestSaveLoadLossless(t *testing.T) {
	dir := t.TempDir()
	img := gradient(17, 23)
	for _, name := range []string{"a.png", "b.bmp", "c.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, img), name)

		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, img, got, name)
	}
}

func TestSaveRejectsLossy(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "x.jpg"), gradient(4, 4))
	assert.ErrorIs(t, err, ErrLossyFormat)
}

func TestFromImageDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(6, 5, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	img := FromImage(src)
	require.Equal(t, 1, img.Height)
	require.Equal(t, 2, img.Width)
	assert.Equal(t, []uint8{10, 20, 30, 200, 100, 50}, img.Pix)
}
