package predictor

import (
	"fmt"
	"io"

	"github.com/banshee-data/cellscatter/internal/normalize"
)

// PredictThickness estimates membrane thickness with prediction
// intervals at each of the predictor's alphas.
func (p *Predictor) PredictThickness(curve []float64, opts Options) (Estimate, error) {
	return p.predictTarget("thickness:", p.thickness, curve, opts)
}

// PredictAPL estimates the area per lipid with prediction intervals at
// each of the predictor's alphas.
func (p *Predictor) PredictAPL(curve []float64, opts Options) (Estimate, error) {
	return p.predictTarget("APL:\t", p.apl, curve, opts)
}

func (p *Predictor) predictTarget(label string, t Target, curve []float64, opts Options) (Estimate, error) {
	x, err := normalize.Curve(curve, opts.Mode, t.FormFactor)
	if err != nil {
		return Estimate{}, err
	}

	point, iv, err := t.Model.Predict(x, p.alphas)
	if err != nil {
		return Estimate{}, err
	}
	if len(iv.Lower) != len(p.alphas) || len(iv.Upper) != len(p.alphas) {
		return Estimate{}, fmt.Errorf("regressor returned %d/%d bounds for %d alphas",
			len(iv.Lower), len(iv.Upper), len(p.alphas))
	}

	lower := normalize.DenormalizeSlice(iv.Lower, t.Output.Mean, t.Output.Std)
	upper := normalize.DenormalizeSlice(iv.Upper, t.Output.Mean, t.Output.Std)
	est := Estimate{
		Value:     t.Output.Denormalize(point),
		Intervals: make([]Interval, len(p.alphas)),
	}
	for i, a := range p.alphas {
		est.Intervals[i] = Interval{Alpha: a, Lower: lower[i], Upper: upper[i]}
	}

	if opts.Verbose {
		writeEstimate(p.report, label, est)
	}
	return est, nil
}

// writeEstimate prints the point estimate followed by one line per
// interval, e.g. "  95% pred. interval:\t(4.1000, 5.9000)".
func writeEstimate(w io.Writer, label string, est Estimate) {
	fmt.Fprintf(w, "Predicted %s\t %.6f\n", label, est.Value)
	for _, iv := range est.Intervals {
		fmt.Fprintf(w, "  %d%% pred. interval:\t(%.4f, %.4f)\n", iv.Percent(), iv.Lower, iv.Upper)
	}
	fmt.Fprintln(w)
}
