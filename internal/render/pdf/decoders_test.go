package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10">
  <rect x="0" y="0" width="20" height="10" fill="#0e7490"/>
</svg>`

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestTranscodeSVG(t *testing.T) {
	out, err := transcode([]byte(squareSVG), "image/svg+xml")
	require.NoError(t, err)

	img := decodePNG(t, out)
	assert.Equal(t, svgRasterSize, img.Bounds().Dx())
	assert.Equal(t, svgRasterSize/2, img.Bounds().Dy())
	_, _, _, a := img.At(svgRasterSize/2, svgRasterSize/4).RGBA()
	assert.NotZero(t, a)
}

func TestTranscodeSniffsSVG(t *testing.T) {
	out, err := transcode([]byte(squareSVG), "application/octet-stream")
	require.NoError(t, err)
	decodePNG(t, out)
}

func TestTranscodeBMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	out, err := transcode(buf.Bytes(), "image/bmp")
	require.NoError(t, err)
	img := decodePNG(t, out)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestTranscodeRejectsGarbage(t *testing.T) {
	_, err := transcode([]byte("not an image"), "image/webp")
	assert.Error(t, err)
}
