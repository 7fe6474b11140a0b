package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// ProfilePlot draws ys against evenly spaced xs with asciigraph. The caption
// names the component and the x range.
func ProfilePlot(xs, ys []float64, component, along string, width, height int) string {
	if len(ys) == 0 {
		return ""
	}
	caption := fmt.Sprintf("%s vs %s in [%g, %g]", component, along, xs[0], xs[len(xs)-1])
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.Precision(4),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.Plot(ys, opts...)
}
