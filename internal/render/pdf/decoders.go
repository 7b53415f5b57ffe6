package pdf

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// svgRasterSize is the longest side, in pixels, of a rasterized SVG.
const svgRasterSize = 1024

// transcode re-encodes an image fpdf cannot embed directly as PNG. SVG is
// rasterized; bitmap formats go through image.Decode.
func transcode(data []byte, mime string) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	if mime == "image/svg+xml" || isSVG(data) {
		img, err = rasterizeSVG(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = svgRasterSize, svgRasterSize
	}
	scale := svgRasterSize / math.Max(w, h)
	pw, ph := int(math.Ceil(w*scale)), int(math.Ceil(h*scale))

	icon.SetTarget(0, 0, float64(pw), float64(ph))
	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return rgba, nil
}
