package imageutil

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownscaleSmallImageUnchanged(t *testing.T) {
	original := encodePNG(t, 100, 50)

	result, err := Downscale(original, nil)
	require.NoError(t, err)
	assert.Equal(t, original, result)
}

func TestDownscaleShrinksWideImage(t *testing.T) {
	original := encodePNG(t, 200, 100)

	result, err := Downscale(original, &Config{MaxDimension: 50, Quality: 85})
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(result))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestDownscaleShrinksTallImage(t *testing.T) {
	original := encodePNG(t, 100, 400)

	result, err := Downscale(original, &Config{MaxDimension: 100, Quality: 85})
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(result))
	require.NoError(t, err)
	assert.Equal(t, 25, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestDownscaleRejectsUndecodableData(t *testing.T) {
	_, err := Downscale([]byte("not an image"), nil)
	assert.Error(t, err)
}
