package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Donut renders segments as a ring. Segments with non-positive values are
// skipped; when nothing remains an empty ring is drawn.
func Donut(size int, segments []Segment, opts DonutOpts) template.HTML {
	if size <= 0 {
		size = DefaultSize
	}
	thickness := opts.Thickness
	if thickness <= 0 || thickness >= 1 {
		thickness = 0.38
	}
	c := float64(size) / 2
	outer := c - 4
	inner := outer * (1 - thickness)

	total := 0.0
	for _, s := range segments {
		if s.Value > 0 && !math.IsInf(s.Value, 0) {
			total += s.Value
		}
	}

	titleID := makeID(opts.Title, "donut-title")
	descID := makeID(opts.Title, "donut-desc")

	var b strings.Builder
	openSVG(&b, size, size, titleID, descID, fallback(opts.Title, "Donut chart"), fallback(opts.Description, "Share of total"))

	if total <= 0 {
		fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\"></circle>",
			c, c, (outer+inner)/2, fallback(opts.EmptyColor, "#e2e8f0"), outer-inner)
		b.WriteString("</svg>")
		return template.HTML(b.String())
	}

	angle := -math.Pi / 2
	for i, s := range segments {
		if s.Value <= 0 || math.IsInf(s.Value, 0) {
			continue
		}
		color := fallback(s.Color, seriesColors[i%len(seriesColors)])
		share := s.Value / total
		tooltip := fmt.Sprintf("%s: %.0f%%", s.Label, share*100)
		if share >= 0.9999 {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\"><title>%s</title></circle>",
				c, c, (outer+inner)/2, color, outer-inner, template.HTMLEscapeString(tooltip))
			break
		}
		sweep := share * 2 * math.Pi
		end := angle + sweep
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		fmt.Fprintf(&b, "<path d=\"M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z\" fill=\"%s\"><title>%s</title></path>",
			c+outer*math.Cos(angle), c+outer*math.Sin(angle),
			outer, outer, large, c+outer*math.Cos(end), c+outer*math.Sin(end),
			c+inner*math.Cos(end), c+inner*math.Sin(end),
			inner, inner, large, c+inner*math.Cos(angle), c+inner*math.Sin(angle),
			color, template.HTMLEscapeString(tooltip))
		angle = end
	}

	b.WriteString("</svg>")
	return template.HTML(b.String())
}
