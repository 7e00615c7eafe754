package render

import (
	"fmt"
	"strings"
)

// ActivityDay is one bar of the activity chart: matches played on one
// calendar day, split into wins and losses.
type ActivityDay struct {
	// Label is the short day caption shown under the bar (e.g. "25.08").
	Label  string
	Wins   int
	Losses int
}

// Total returns the number of matches played that day.
func (d ActivityDay) Total() int {
	return d.Wins + d.Losses
}

// ActivityChart renders a stacked bar chart of daily activity. Wins
// stack on top of losses; days with no matches keep their slot so the
// week reads left to right without gaps.
func ActivityChart(title string, days []ActivityDay) ([]byte, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("activity chart needs at least one day")
	}

	const (
		marginLeft   = 64
		marginRight  = 28
		marginTop    = 56
		marginBottom = 48
	)

	plotWidth := chartWidth - marginLeft - marginRight
	plotHeight := chartHeight - marginTop - marginBottom

	maxTotal := 0
	for _, d := range days {
		if d.Total() > maxTotal {
			maxTotal = d.Total()
		}
	}
	// Keep the axis meaningful on an empty week.
	if maxTotal < 4 {
		maxTotal = 4
	}

	slot := float64(plotWidth) / float64(len(days))
	barWidth := slot * 0.56

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		chartWidth, chartHeight, chartWidth, chartHeight)

	// Horizontal gridlines at each axis step.
	steps := gridSteps(maxTotal)
	for _, v := range steps {
		y := float64(marginTop) + float64(plotHeight)*(1-float64(v)/float64(maxTotal))
		fmt.Fprintf(&svg, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			marginLeft, y, chartWidth-marginRight, y, rgbHex(colorGrid))
	}

	// Baseline.
	fmt.Fprintf(&svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
		marginLeft, chartHeight-marginBottom, chartWidth-marginRight, chartHeight-marginBottom, rgbHex(colorGrid))

	for i, d := range days {
		if d.Total() == 0 {
			continue
		}
		cx := float64(marginLeft) + slot*float64(i) + slot/2
		x := cx - barWidth/2

		lossHeight := float64(plotHeight) * float64(d.Losses) / float64(maxTotal)
		winHeight := float64(plotHeight) * float64(d.Wins) / float64(maxTotal)

		baseY := float64(chartHeight - marginBottom)
		if d.Losses > 0 {
			fmt.Fprintf(&svg, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
				x, baseY-lossHeight, barWidth, lossHeight, rgbHex(colorLoss))
		}
		if d.Wins > 0 {
			fmt.Fprintf(&svg, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
				x, baseY-lossHeight-winHeight, barWidth, winHeight, rgbHex(colorWin))
		}
	}

	svg.WriteString(`</svg>`)

	img, err := rasterizeSVG([]byte(svg.String()), chartWidth, chartHeight)
	if err != nil {
		return nil, err
	}

	// Text goes on top of the rasterized geometry.
	drawLabel(img, title, marginLeft, 30, colorTitleText)

	for _, v := range steps {
		y := marginTop + int(float64(plotHeight)*(1-float64(v)/float64(maxTotal)))
		drawLabelRight(img, fmt.Sprintf("%d", v), marginLeft-10, y+4, colorAxisText)
	}

	for i, d := range days {
		cx := marginLeft + int(slot*float64(i)+slot/2)
		drawLabelCentered(img, d.Label, cx, chartHeight-marginBottom+20, colorAxisText)
		if d.Total() > 0 {
			barTop := marginTop + int(float64(plotHeight)*(1-float64(d.Total())/float64(maxTotal)))
			drawLabelCentered(img, fmt.Sprintf("%d", d.Total()), cx, barTop-6, colorTitleText)
		}
	}

	return encodePNG(img)
}

// gridSteps picks round-numbered horizontal gridlines for a 0..max axis.
func gridSteps(max int) []int {
	step := 1
	switch {
	case max > 40:
		step = 10
	case max > 16:
		step = 5
	case max > 8:
		step = 2
	}

	steps := make([]int, 0, max/step)
	for v := step; v <= max; v += step {
		steps = append(steps, v)
	}
	return steps
}
