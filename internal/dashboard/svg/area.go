package svg

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

var seriesColors = []string{"#6366f1", "#ec4899", "#f59e0b", "#10b981"}

// Area renders one or more series as overlaid area lines sharing a value axis.
func Area(width, height int, labels []string, series []Series, opts AreaOpts) (template.HTML, error) {
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
	scale := chartHeight / (maxVal - minVal)
	base := padding + chartHeight

	x := func(i int) float64 {
		if len(labels) == 1 {
			return padding + chartWidth/2
		}
		return padding + float64(i)*chartWidth/float64(len(labels)-1)
	}
	y := func(v float64) float64 {
		return base - (v-minVal)*scale
	}

	titleID := makeID(opts.Title, "area-title")
	descID := makeID(opts.Title, "area-desc")

	var b strings.Builder
	openSVG(&b, width, height, titleID, descID, fallback(opts.Title, "Area chart"), fallback(opts.Description, "Values over time"))
	grid(&b, padding, chartWidth, chartHeight, tickCount, minVal, maxVal, axisColor, gridColor)
	axes(&b, padding, chartWidth, chartHeight, base, axisColor)

	for si, s := range series {
		color := fallback(s.Color, seriesColors[si%len(seriesColors)])
		var path strings.Builder
		for i, v := range s.Values {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, x(i), y(v))
		}
		line := strings.TrimSpace(path.String())
		if opts.FillOpacity > 0 {
			area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", line, x(len(labels)-1), base, x(0), base)
			fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" fill-opacity=\"%.2f\" stroke=\"none\" aria-hidden=\"true\"></path>", area, color, opts.FillOpacity)
		}
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\" aria-label=\"%s\"></path>", line, color, template.HTMLEscapeString(s.Name))
		if opts.ShowDots {
			for i, v := range s.Values {
				fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"><title>%s: %s</title></circle>", x(i), y(v), color, template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(v)))
			}
		}
	}

	for i, label := range labels {
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x(i), base+16, axisColor, template.HTMLEscapeString(label))
	}

	legendX := padding
	for si, s := range series {
		color := fallback(s.Color, seriesColors[si%len(seriesColors)])
		legend(&b, legendX, padding-14, color, axisColor, s.Name)
		legendX += 110
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
