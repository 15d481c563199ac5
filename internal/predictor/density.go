package predictor

import (
	"fmt"

	"github.com/banshee-data/cellscatter/internal/model"
	"github.com/banshee-data/cellscatter/internal/monitoring"
	"github.com/banshee-data/cellscatter/internal/normalize"
)

// PredictDensity estimates the electron-density profile as d.Points
// (z, density) samples. Positions are in nm, densities in e/nm³.
func (p *Predictor) PredictDensity(curve []float64, opts Options) ([]Point, error) {
	d := p.density

	x, err := normalize.Curve(curve, opts.Mode, d.FormFactor)
	if err != nil {
		return nil, err
	}

	out, err := d.Model.Predict(x)
	if err != nil {
		return nil, err
	}
	if len(out) != 2*d.Points {
		return nil, fmt.Errorf("%w: density network returned %d values, want %d",
			model.ErrShapeMismatch, len(out), 2*d.Points)
	}

	points := make([]Point, d.Points)
	for i := range points {
		points[i] = Point{
			X: normalize.Denormalize(out[i], 0, d.XStd),
			Y: d.Y.Denormalize(out[d.Points+i]) + d.Offset,
		}
	}

	if opts.Verbose {
		fmt.Fprintf(p.report, "Predicted density:\t %d points, z from %.4f to %.4f nm\n\n",
			len(points), points[0].X, points[len(points)-1].X)
	}
	if opts.Plot {
		if err := p.plotDensity(points, opts.Label); err != nil {
			return nil, fmt.Errorf("failed to plot density: %w", err)
		}
	}
	return points, nil
}

func (p *Predictor) plotDensity(points []Point, label string) error {
	if p.plotter == nil {
		monitoring.Logf("density plot requested but no plotter is configured")
		return nil
	}
	return p.plotter.Plot(DensityFigure(points, label))
}

// DensityFigure lays out a density profile as a line plot with the x
// axis fixed to the first and last position.
func DensityFigure(points []Point, label string) Figure {
	fig := Figure{
		Title:  "Predicted density",
		Label:  label,
		XLabel: "z (nm)",
		YLabel: "e / nm³",
		X:      make([]float64, len(points)),
		Y:      make([]float64, len(points)),
	}
	if label != "" {
		fig.Title = "Predicted density of " + label
	}
	for i, pt := range points {
		fig.X[i] = pt.X
		fig.Y[i] = pt.Y
	}
	if len(points) > 0 {
		fig.XMin = points[0].X
		fig.XMax = points[len(points)-1].X
	}
	return fig
}
