// Package predictor estimates membrane properties from a measured
// scattering form-factor curve.
//
// Three pretrained models are composed behind one Predictor: thickness
// and area per lipid (APL), which report conformal prediction intervals,
// and the electron-density (TD) profile. Each follows the same pattern:
// normalize the curve with the statistics the model was trained with,
// run the model, and map its output back to physical units.
//
// A Predictor is immutable after New and holds no mutable state, so
// calls are pure functions of the loaded models and the input curve.
package predictor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/cellscatter/internal/config"
	"github.com/banshee-data/cellscatter/internal/model"
	"github.com/banshee-data/cellscatter/internal/normalize"
)

// Target is a scalar property backed by an interval regressor.
type Target struct {
	// FormFactor normalizes the input curve in constant mode.
	FormFactor normalize.Vector
	// Output maps the regressor's normalized output to physical units.
	Output normalize.Stats
	Model  model.IntervalRegressor
}

// Density is the electron-density profile network and its statistics.
type Density struct {
	FormFactor normalize.Vector
	// XStd scales the profile positions. Positions are not shifted.
	XStd float64
	// Y maps the normalized density values back to e/nm³, before Offset.
	Y normalize.Stats
	// Offset is the instrument offset added to every density value.
	Offset float64
	// Points is the number of (x, y) samples; the network emits 2*Points
	// values, positions first.
	Points int
	Model  model.Network
}

// Models is everything a Predictor needs, typically built by
// artifact.Load.
type Models struct {
	Thickness Target
	APL       Target
	Density   Density
	// Alphas are the miscoverage rates reported for the scalar targets.
	Alphas []float64
}

// Validate checks that every model is present and the density layout is
// usable.
func (m Models) Validate() error {
	if m.Thickness.Model == nil {
		return errors.New("thickness model is required")
	}
	if m.APL.Model == nil {
		return errors.New("APL model is required")
	}
	if m.Density.Model == nil {
		return errors.New("density model is required")
	}
	if m.Density.Points <= 0 {
		return fmt.Errorf("density points must be positive, got %d", m.Density.Points)
	}
	for _, a := range m.Alphas {
		if a <= 0 || a >= 1 {
			return fmt.Errorf("alpha must be in (0, 1), got %v", a)
		}
	}
	return nil
}

// Plotter renders a density figure. See densityplot for implementations.
type Plotter interface {
	Plot(fig Figure) error
}

// Predictor wraps the thickness, APL and density models.
type Predictor struct {
	thickness Target
	apl       Target
	density   Density
	alphas    []float64

	report  io.Writer
	plotter Plotter
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithReport sets where verbose reports are written. Defaults to stdout.
func WithReport(w io.Writer) Option {
	return func(p *Predictor) { p.report = w }
}

// WithPlotter sets the renderer used when a density plot is requested.
// Without one, plot requests are logged and skipped.
func WithPlotter(pl Plotter) Option {
	return func(p *Predictor) { p.plotter = pl }
}

// New builds a Predictor from loaded models. Nil Alphas fall back to
// config.DefaultAlphas.
func New(m Models, opts ...Option) (*Predictor, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid models: %w", err)
	}

	alphas := m.Alphas
	if len(alphas) == 0 {
		alphas = config.DefaultAlphas
	}

	p := &Predictor{
		thickness: m.Thickness,
		apl:       m.APL,
		density:   m.Density,
		alphas:    append([]float64(nil), alphas...),
		report:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.report == nil {
		p.report = io.Discard
	}
	return p, nil
}

// Alphas returns a copy of the miscoverage rates reported for thickness
// and APL.
func (p *Predictor) Alphas() []float64 {
	return append([]float64(nil), p.alphas...)
}

// Options control a single prediction call.
type Options struct {
	// Mode selects constant (training-time) or adaptive (per-curve)
	// form-factor normalization.
	Mode normalize.Mode
	// Verbose writes a text report to the predictor's report writer.
	Verbose bool
	// Plot renders the density profile with the configured Plotter.
	Plot bool
	// Label names the curve in plot titles.
	Label string
}

// Predict runs the density, thickness and APL predictions in that order
// and returns them together. The first failure aborts the call.
func (p *Predictor) Predict(curve []float64, opts Options) (Result, error) {
	density, err := p.PredictDensity(curve, opts)
	if err != nil {
		return Result{}, fmt.Errorf("density: %w", err)
	}
	thickness, err := p.PredictThickness(curve, opts)
	if err != nil {
		return Result{}, fmt.Errorf("thickness: %w", err)
	}
	apl, err := p.PredictAPL(curve, opts)
	if err != nil {
		return Result{}, fmt.Errorf("APL: %w", err)
	}
	return Result{Density: density, Thickness: thickness, APL: apl}, nil
}
