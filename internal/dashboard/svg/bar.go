package svg

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// Bars renders grouped vertical bars, one group per label and one bar per
// series. Values below zero are drawn as zero-height bars.
func Bars(width, height int, labels []string, series []Series, opts BarOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", errors.New("svg: labels required")
	}
	if len(series) == 0 {
		return "", errors.New("svg: at least one series required")
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Name)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#64748b")
	gridColor := fallback(opts.GridColor, "#e2e8f0")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", errors.New("svg: viewport too small")
	}

	values := make([]float64, 0, len(labels)*len(series))
	for _, s := range series {
		values = append(values, s.Values...)
	}
	minVal, maxVal := axisBounds(values)
	minVal = 0
	scale := chartHeight / (maxVal - minVal)
	base := padding + chartHeight

	groupWidth := chartWidth / float64(len(labels))
	barWidth := groupWidth * 0.8 / float64(len(series))

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	openSVG(&b, width, height, titleID, descID, fallback(opts.Title, "Bar chart"), fallback(opts.Description, "Grouped comparison"))
	grid(&b, padding, chartWidth, chartHeight, tickCount, minVal, maxVal, axisColor, gridColor)
	axes(&b, padding, chartWidth, chartHeight, base, axisColor)

	for i, label := range labels {
		groupX := padding + float64(i)*groupWidth + groupWidth*0.1
		for si, s := range series {
			color := fallback(s.Color, seriesColors[si%len(seriesColors)])
			h := s.Values[i] * scale
			if h < 0 {
				h = 0
			}
			if h > chartHeight {
				h = chartHeight
			}
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" rx=\"2\"><title>%s %s: %s</title></rect>",
				groupX+float64(si)*barWidth, base-h, barWidth, h, color,
				template.HTMLEscapeString(label), template.HTMLEscapeString(s.Name), template.HTMLEscapeString(formatTick(s.Values[i])))
		}
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", padding+float64(i)*groupWidth+groupWidth/2, base+16, axisColor, template.HTMLEscapeString(label))
	}

	legendX := padding
	for si, s := range series {
		legend(&b, legendX, padding-14, fallback(s.Color, seriesColors[si%len(seriesColors)]), axisColor, s.Name)
		legendX += 110
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
