// Package svg renders the dashboard charts as inline, script-free SVG.
package svg

// Series is one named sequence of values plotted against shared labels.
type Series struct {
	Name   string
	Values []float64
	Color  string
}

// AreaOpts customises the area chart renderer.
type AreaOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
	// FillOpacity of the area under each line; zero draws lines only.
	FillOpacity float64
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// DonutOpts customises the donut chart renderer.
type DonutOpts struct {
	Title       string
	Description string
	// Thickness of the ring as a fraction of the radius.
	Thickness  float64
	EmptyColor string
}

// Segment is one slice of a donut chart.
type Segment struct {
	Label string
	Value float64
	Color string
}

// Default chart geometry.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 32.0
	DefaultTicks   = 5
	DefaultSize    = 220
)
