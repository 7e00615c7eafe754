package render

import (
	"fmt"
	"strings"
)

// RatingTrend renders the simulated rating walk as a line chart. Points
// are ordered oldest to newest; the first point is the rating before the
// window's first match.
func RatingTrend(title string, points []int) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("rating trend needs at least two points")
	}

	const (
		marginLeft   = 72
		marginRight  = 28
		marginTop    = 56
		marginBottom = 44
	)

	plotWidth := chartWidth - marginLeft - marginRight
	plotHeight := chartHeight - marginTop - marginBottom

	minV, maxV := points[0], points[0]
	for _, p := range points {
		if p < minV {
			minV = p
		}
		if p > maxV {
			maxV = p
		}
	}
	// Pad the value range so the line never hugs the frame. A flat walk
	// still gets a visible band.
	pad := (maxV - minV) / 10
	if pad < 30 {
		pad = 30
	}
	minV -= pad
	maxV += pad

	toX := func(i int) float64 {
		return float64(marginLeft) + float64(plotWidth)*float64(i)/float64(len(points)-1)
	}
	toY := func(v int) float64 {
		return float64(marginTop) + float64(plotHeight)*(1-float64(v-minV)/float64(maxV-minV))
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		chartWidth, chartHeight, chartWidth, chartHeight)

	// Gridlines at quarter heights.
	gridValues := trendGridValues(minV, maxV)
	for _, v := range gridValues {
		y := toY(v)
		fmt.Fprintf(&svg, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			marginLeft, y, chartWidth-marginRight, y, rgbHex(colorGrid))
	}

	// Filled area under the line.
	var area strings.Builder
	fmt.Fprintf(&area, "M %.1f %.1f", toX(0), float64(chartHeight-marginBottom))
	for i, p := range points {
		fmt.Fprintf(&area, " L %.1f %.1f", toX(i), toY(p))
	}
	fmt.Fprintf(&area, " L %.1f %.1f Z", toX(len(points)-1), float64(chartHeight-marginBottom))
	fmt.Fprintf(&svg, `<path d="%s" fill="%s" fill-opacity="%.2f"/>`,
		area.String(), rgbHex(colorTrendFill), opacity(colorTrendFill))

	// The line itself.
	var line strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&line, "%s %.1f %.1f ", cmd, toX(i), toY(p))
	}
	fmt.Fprintf(&svg, `<path d="%s" fill="none" stroke="%s" stroke-width="3"/>`,
		strings.TrimSpace(line.String()), rgbHex(colorTrendLine))

	// End-point marker.
	fmt.Fprintf(&svg, `<circle cx="%.1f" cy="%.1f" r="5" fill="%s"/>`,
		toX(len(points)-1), toY(points[len(points)-1]), rgbHex(colorTrendLine))

	svg.WriteString(`</svg>`)

	img, err := rasterizeSVG([]byte(svg.String()), chartWidth, chartHeight)
	if err != nil {
		return nil, err
	}

	drawLabel(img, title, marginLeft, 30, colorTitleText)

	for _, v := range gridValues {
		drawLabelRight(img, fmt.Sprintf("%d", v), marginLeft-10, int(toY(v))+4, colorAxisText)
	}

	last := points[len(points)-1]
	drawLabelRight(img, fmt.Sprintf("%d", last), chartWidth-marginRight, int(toY(last))-10, colorTitleText)

	return encodePNG(img)
}

// trendGridValues picks round rating values inside the padded range.
func trendGridValues(minV, maxV int) []int {
	span := maxV - minV
	step := 50
	switch {
	case span > 2000:
		step = 500
	case span > 800:
		step = 200
	case span > 400:
		step = 100
	}

	start := (minV/step + 1) * step
	values := make([]int, 0, span/step+1)
	for v := start; v < maxV; v += step {
		values = append(values, v)
	}
	return values
}
