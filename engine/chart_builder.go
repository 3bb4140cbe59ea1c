package engine

import (
	"strings"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// CHART BUILDER: Produces ChartConfig from a pivot result
// ============================================================================

// Bar colours, assigned per bucket in order and cycled.
var defaultColors = []string{
	"rgba(5, 150, 105, 0.7)",   // green
	"rgba(30, 58, 138, 0.7)",   // blue
	"rgba(245, 158, 11, 0.7)",  // orange
	"rgba(220, 38, 38, 0.7)",   // red
	"rgba(107, 114, 128, 0.7)", // gray
	"rgba(147, 51, 234, 0.7)",  // purple
	"rgba(217, 119, 6, 0.7)",   // dark orange
	"rgba(4, 120, 87, 0.7)",    // dark green
	"rgba(59, 130, 246, 0.7)",  // light blue
	"rgba(202, 138, 4, 0.7)",   // dark yellow
}

// BuildChart produces a bar chart of a pivot result. A missing result or one
// without buckets gets a single N/A bar of zero so the chart is never blank.
func BuildChart(result *PivotResult) *ChartConfig {
	axis := "Category"
	var points []ChartPoint
	if result != nil {
		axis = result.Axis.Name
		points = make([]ChartPoint, 0, len(result.Buckets))
		for _, g := range result.Buckets {
			points = append(points, ChartPoint{Label: g.Key, Value: float64(g.Count)})
		}
	}
	if len(points) == 0 {
		points = []ChartPoint{{Label: roster.NotAvailable, Value: 0}}
	}

	colors := assignColors(len(points))
	return &ChartConfig{
		ChartType: "bar",
		XAxis:     axis,
		YAxis:     "Count",
		Series: []ChartSeries{{
			Name: "Count",
			Data: points,
		}},
		Colors:       colors,
		BorderColors: borderColors(colors),
		ShowLegend:   false,
		ShowGrid:     true,
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// borderColors are the fill colours at full opacity.
func borderColors(fill []string) []string {
	out := make([]string, len(fill))
	for i, c := range fill {
		out[i] = strings.Replace(c, "0.7", "1", 1)
	}
	return out
}
