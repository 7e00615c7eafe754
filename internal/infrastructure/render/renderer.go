// Package render produces the PNG charts the bot attaches to stats
// replies: a per-day activity bar chart and a simulated rating trend
// line. Chart geometry is emitted as an SVG document and rasterized;
// axis labels are drawn on top with a bitmap font.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Chart dimensions. Telegram compresses photos anyway, so a modest
// canvas keeps uploads fast.
const (
	chartWidth  = 800
	chartHeight = 440
)

// Palette shared by both charts.
var (
	colorBackground = color.NRGBA{R: 23, G: 26, B: 33, A: 255}
	colorGrid       = color.NRGBA{R: 58, G: 64, B: 78, A: 255}
	colorAxisText   = color.NRGBA{R: 170, G: 178, B: 195, A: 255}
	colorTitleText  = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	colorWin        = color.NRGBA{R: 84, G: 186, B: 110, A: 255}
	colorLoss       = color.NRGBA{R: 214, G: 88, B: 88, A: 255}
	colorTrendLine  = color.NRGBA{R: 94, G: 160, B: 242, A: 255}
	colorTrendFill  = color.NRGBA{R: 94, G: 160, B: 242, A: 46}
)

// rasterizeSVG parses an SVG document and rasterizes it onto a fresh
// RGBA canvas of the given size.
func rasterizeSVG(svg []byte, width, height int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse chart svg: %w", err)
	}

	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(width)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(height)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// encodePNG serializes the canvas.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// labelFace returns the face used for all chart text. A bitmap font
// avoids shipping font assets for what Telegram shows at thumbnail size.
func labelFace() font.Face {
	return basicfont.Face7x13
}

func drawLabel(img *image.RGBA, text string, x, y int, clr color.Color) {
	if text == "" {
		return
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: labelFace(),
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// drawLabelCentered draws text horizontally centered on x.
func drawLabelCentered(img *image.RGBA, text string, centerX, baseline int, clr color.Color) {
	if text == "" {
		return
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: labelFace(),
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

// drawLabelRight draws text right-aligned against x.
func drawLabelRight(img *image.RGBA, text string, rightX, baseline int, clr color.Color) {
	if text == "" {
		return
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: labelFace(),
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(rightX-width, baseline)
	drawer.DrawString(text)
}

func rgbHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255.0
}
