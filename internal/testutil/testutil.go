// Package testutil provides shared test fixtures: a small, fully
// specified artifact set that loads into a working predictor.
package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/banshee-data/cellscatter/internal/config"
	"github.com/banshee-data/cellscatter/internal/fsutil"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ArtifactSet describes fixture artifacts. The regressors are linear
// with equal weights, so a curve's normalized sum drives the estimate,
// and the density network ignores its input: positions run linearly
// from -XStd to +XStd and every normalized density is 1.
type ArtifactSet struct {
	InputDim int
	Points   int

	ThicknessMean, ThicknessStd float64
	APLMean, APLStd             float64
	XStd, YMean, YStd           float64

	Residuals []float64
}

// DefaultArtifacts returns the fixture used across package tests.
func DefaultArtifacts() ArtifactSet {
	return ArtifactSet{
		InputDim:      4,
		Points:        200,
		ThicknessMean: 4.0,
		ThicknessStd:  0.5,
		APLMean:       65.0,
		APLStd:        5.0,
		XStd:          2.0,
		YMean:         0.0,
		YStd:          1.0,
		Residuals:     []float64{0.2, 0.4, 0.6, 0.8, 1.0},
	}
}

// Curve returns a form-factor curve of the fixture's input length:
// 1, 2, 3, ...
func (a ArtifactSet) Curve() []float64 {
	c := make([]float64, a.InputDim)
	for i := range c {
		c[i] = float64(i + 1)
	}
	return c
}

// Write stores the four artifact files under dir with the default file
// names and returns a config pointing at them.
func (a ArtifactSet) Write(t testing.TB, fsys fsutil.FileSystem, dir string) *config.PredictorConfig {
	t.Helper()

	files := map[string]any{
		config.DefaultThicknessBundle: a.regressionBundle("thickness", a.ThicknessMean, a.ThicknessStd),
		config.DefaultAPLBundle:       a.regressionBundle("apl", a.APLMean, a.APLStd),
		config.DefaultDensityStats: map[string]any{
			"formfactor_mean": 0.0,
			"formfactor_std":  1.0,
			"TD_y_mean":       a.YMean,
			"TD_y_std":        a.YStd,
			"TD_x_std":        a.XStd,
		},
		config.DefaultDensityModel: a.densityNetwork(),
	}

	AssertNoError(t, fsys.MkdirAll(dir, 0755))
	for name, doc := range files {
		WriteJSON(t, fsys, filepath.Join(dir, name), doc)
	}

	cfg := config.EmptyPredictorConfig()
	cfg.ArtifactDir = &dir
	points := a.Points
	cfg.DensityPoints = &points
	return cfg
}

// WriteJSON marshals doc into path.
func WriteJSON(t testing.TB, fsys fsutil.FileSystem, path string, doc any) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	AssertNoError(t, err)
	AssertNoError(t, fsys.WriteFile(path, data, 0644))
}

func (a ArtifactSet) regressionBundle(target string, mean, std float64) map[string]any {
	weights := make([]float64, a.InputDim)
	for i := range weights {
		weights[i] = 1 / float64(a.InputDim)
	}
	return map[string]any{
		"formfactor_mean": 0.0,
		"formfactor_std":  1.0,
		target + "_mean":  mean,
		target + "_std":   std,
		"model": map[string]any{
			"kind":      "linear_conformal",
			"weights":   weights,
			"intercept": 0.0,
			"residuals": a.Residuals,
		},
	}
}

func (a ArtifactSet) densityNetwork() map[string]any {
	weights := make([][]float64, a.InputDim)
	for i := range weights {
		weights[i] = make([]float64, 2*a.Points)
	}
	bias := make([]float64, 2*a.Points)
	for i := 0; i < a.Points; i++ {
		if a.Points > 1 {
			bias[i] = -1 + 2*float64(i)/float64(a.Points-1)
		}
		bias[a.Points+i] = 1
	}
	return map[string]any{
		"layers": []any{
			map[string]any{"weights": weights, "bias": bias, "activation": "linear"},
		},
	}
}
