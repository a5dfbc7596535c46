package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestDecodeResizeAndPad_Success(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "thumb")

	input := sampleJPEG(t, 400, 300)
	err := DecodeResizeAndPad(input, DefaultWidth, DefaultHeight, DefaultOutSize, cachePath)
	require.NoError(t, err)

	data, err := os.ReadFile(cachePath + ".pad")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), DefaultOutSize)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, DefaultWidth, bounds.Dx())
	assert.Equal(t, DefaultHeight, bounds.Dy())
}

func TestDecodeResizeAndPad_InvalidImage(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "thumb")

	err := DecodeResizeAndPad([]byte("not an image"), DefaultWidth, DefaultHeight, DefaultOutSize, cachePath)
	assert.Error(t, err)

	_, statErr := os.Stat(cachePath + ".pad")
	assert.Error(t, statErr)
}

func TestEncodeUnderBudget_TightBudgetFails(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, DefaultWidth, DefaultHeight))
	_, err := encodeUnderBudget(img, 10)
	assert.Error(t, err)
}
