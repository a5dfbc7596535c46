// Package thumbnail resizes and pads source images to a fixed output
// geometry for the feed's thumbnail slot, running the actual decode in
// an isolated child process (see cmd/thumbnailworker) so that a
// malformed or hostile image can only crash that child.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
)

// DefaultWidth, DefaultHeight and DefaultOutSize are the pipeline's
// fixed thumbnail geometry and byte budget.
const (
	DefaultWidth   = 1168
	DefaultHeight  = 657
	DefaultOutSize = 250_000
)

// DecodeResizeAndPad decodes input, resizes it to fit within width x
// height preserving aspect ratio, pads the result to exactly width x
// height on a black canvas, and JPEG-encodes it under outSize bytes,
// writing the result to cachePath+".pad". It returns an error on any
// decode or encode failure; the caller is responsible for writing the
// ".failed" artifact.
func DecodeResizeAndPad(input []byte, width, height, outSize int, cachePath string) error {
	img, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	fitted := imaging.Fit(img, width, height, imaging.Lanczos)
	padded := imaging.PasteCenter(imaging.New(width, height, color.NRGBA{0, 0, 0, 255}), fitted)

	encoded, err := encodeUnderBudget(padded, outSize)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cachePath+".pad", encoded, 0o644); err != nil {
		return fmt.Errorf("write pad artifact: %w", err)
	}
	return nil
}

// encodeUnderBudget JPEG-encodes img, stepping quality down until the
// result fits within outSize bytes or the quality floor is reached.
func encodeUnderBudget(img image.Image, outSize int) ([]byte, error) {
	for quality := 90; quality >= 20; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg at quality %d: %w", quality, err)
		}
		if buf.Len() <= outSize {
			return buf.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("could not encode under %d byte budget", outSize)
}
