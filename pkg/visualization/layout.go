// Package visualization renders electrode layouts as they are seen by the
// interpolation kernels, to check a projection by eye.
package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Layout is one named set of positions to draw
type Layout struct {
	// Name appears in the legend
	Name string

	// Positions are drawn by their X and Y coordinates
	Positions []r3.Vec

	// Labels, when given, are printed next to each position
	Labels []string
}

// SaveLayoutPlot draws the layouts seen from the top (X/Y) into path.
// The image format follows the extension (png, svg, pdf...).
func SaveLayoutPlot(path, title string, layouts ...Layout) error {
	if len(layouts) == 0 {
		return fmt.Errorf("no layout to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Legend.Top = true

	for i, layout := range layouts {
		xys := make(plotter.XYs, len(layout.Positions))
		for j, pos := range layout.Positions {
			xys[j].X = pos.X
			xys[j].Y = pos.Y
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", layout.Name, err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		scatter.GlyphStyle.Shape = plotutil.Shape(i)
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add(layout.Name, scatter)

		if len(layout.Labels) == len(layout.Positions) && len(layout.Labels) > 0 {
			labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: layout.Labels})
			if err != nil {
				return fmt.Errorf("labelling %s: %w", layout.Name, err)
			}
			for k := range labels.TextStyle {
				labels.TextStyle[k].XAlign = draw.XCenter
				labels.TextStyle[k].Color = plotutil.Color(i)
			}
			labels.Offset = vg.Point{Y: vg.Points(4)}
			p.Add(labels)
		}
	}

	// Keep circles round
	xmin, xmax := p.X.Min, p.X.Max
	ymin, ymax := p.Y.Min, p.Y.Max
	lo, hi := min(xmin, ymin), max(xmax, ymax)
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating plot directory: %w", err)
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}
