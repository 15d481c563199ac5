// Package artifact loads the pretrained models and their normalization
// statistics from an artifact directory.
//
// A regression bundle (thickness, APL) is a JSON object:
//
//	{
//	  "formfactor_mean": 0.12,          // number or per-q array
//	  "formfactor_std":  [0.5, ...],
//	  "thickness_mean":  4.1,           // "<target>_mean"
//	  "thickness_std":   0.3,           // "<target>_std"
//	  "model":           {"kind": "linear_conformal", ...}
//	}
//
// The density statistics file carries formfactor_mean, formfactor_std,
// TD_y_mean, TD_y_std and TD_x_std; the density network lives in its own
// file (see model.DecodeNetwork).
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/cellscatter/internal/config"
	"github.com/banshee-data/cellscatter/internal/fsutil"
	"github.com/banshee-data/cellscatter/internal/model"
	"github.com/banshee-data/cellscatter/internal/monitoring"
	"github.com/banshee-data/cellscatter/internal/normalize"
	"github.com/banshee-data/cellscatter/internal/predictor"
)

// MaxArtifactSize bounds every artifact file read.
const MaxArtifactSize = 256 * 1024 * 1024

// ErrMissingField is returned when a bundle lacks a required key.
var ErrMissingField = errors.New("artifact: missing field")

// Load reads all four artifacts named by cfg and assembles the models a
// Predictor needs. Any missing or malformed artifact is an error naming
// the file.
func Load(fsys fsutil.FileSystem, cfg *config.PredictorConfig) (predictor.Models, error) {
	if cfg == nil {
		cfg = config.EmptyPredictorConfig()
	}
	if err := cfg.Validate(); err != nil {
		return predictor.Models{}, fmt.Errorf("invalid configuration: %w", err)
	}

	thickness, err := LoadTarget(fsys, cfg.ResolvePath(cfg.GetThicknessBundle()), "thickness")
	if err != nil {
		return predictor.Models{}, err
	}
	apl, err := LoadTarget(fsys, cfg.ResolvePath(cfg.GetAPLBundle()), "apl")
	if err != nil {
		return predictor.Models{}, err
	}
	density, err := LoadDensity(fsys,
		cfg.ResolvePath(cfg.GetDensityStats()),
		cfg.ResolvePath(cfg.GetDensityModel()),
		cfg.GetDensityPoints(),
	)
	if err != nil {
		return predictor.Models{}, err
	}
	density.Offset = cfg.GetDensityOffset()

	return predictor.Models{
		Thickness: thickness,
		APL:       apl,
		Density:   density,
		Alphas:    cfg.GetAlphas(),
	}, nil
}

// LoadTarget reads a regression bundle whose target statistics are
// stored under "<target>_mean" and "<target>_std".
func LoadTarget(fsys fsutil.FileSystem, path, target string) (predictor.Target, error) {
	fields, err := readObject(fsys, path)
	if err != nil {
		return predictor.Target{}, err
	}

	var t predictor.Target
	if t.FormFactor, err = formFactorStats(fields); err != nil {
		return predictor.Target{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := decodeField(fields, target+"_mean", &t.Output.Mean); err != nil {
		return predictor.Target{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := decodeField(fields, target+"_std", &t.Output.Std); err != nil {
		return predictor.Target{}, fmt.Errorf("%s: %w", path, err)
	}

	raw, ok := fields["model"]
	if !ok {
		return predictor.Target{}, fmt.Errorf("%s: %w %q", path, ErrMissingField, "model")
	}
	if t.Model, err = model.DecodeRegressor(raw); err != nil {
		return predictor.Target{}, fmt.Errorf("%s: %w", path, err)
	}

	monitoring.Logf("loaded %s bundle from %s", target, path)
	return t, nil
}

// LoadDensity reads the density statistics and network. The network must
// emit 2*points values.
func LoadDensity(fsys fsutil.FileSystem, statsPath, modelPath string, points int) (predictor.Density, error) {
	fields, err := readObject(fsys, statsPath)
	if err != nil {
		return predictor.Density{}, err
	}

	d := predictor.Density{Points: points}
	if d.FormFactor, err = formFactorStats(fields); err != nil {
		return predictor.Density{}, fmt.Errorf("%s: %w", statsPath, err)
	}
	for key, dst := range map[string]*float64{
		"TD_y_mean": &d.Y.Mean,
		"TD_y_std":  &d.Y.Std,
		"TD_x_std":  &d.XStd,
	} {
		if err := decodeField(fields, key, dst); err != nil {
			return predictor.Density{}, fmt.Errorf("%s: %w", statsPath, err)
		}
	}

	data, err := fsutil.ReadFileLimit(fsys, modelPath, MaxArtifactSize)
	if err != nil {
		return predictor.Density{}, fmt.Errorf("failed to read density model: %w", err)
	}
	net, err := model.DecodeNetwork(data)
	if err != nil {
		return predictor.Density{}, fmt.Errorf("%s: %w", modelPath, err)
	}
	if out := net.OutputDim(); out != 2*points {
		return predictor.Density{}, fmt.Errorf("%s: %w: network outputs %d values, want %d",
			modelPath, model.ErrShapeMismatch, out, 2*points)
	}
	if n := len(d.FormFactor.Mean); n > 1 && n != net.InputDim() {
		return predictor.Density{}, fmt.Errorf("%s: %w: %d form-factor statistics for %d network inputs",
			statsPath, model.ErrShapeMismatch, n, net.InputDim())
	}
	d.Model = net

	monitoring.Logf("loaded density statistics from %s and network from %s", statsPath, modelPath)
	return d, nil
}

func readObject(fsys fsutil.FileSystem, path string) (map[string]json.RawMessage, error) {
	data, err := fsutil.ReadFileLimit(fsys, path, MaxArtifactSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%s: failed to parse artifact: %w", path, err)
	}
	return fields, nil
}

func formFactorStats(fields map[string]json.RawMessage) (normalize.Vector, error) {
	var v normalize.Vector
	if err := decodeField(fields, "formfactor_mean", &v.Mean); err != nil {
		return v, err
	}
	if err := decodeField(fields, "formfactor_std", &v.Std); err != nil {
		return v, err
	}
	if len(v.Mean) == 0 || len(v.Std) == 0 {
		return v, fmt.Errorf("%w: form-factor statistics are empty", ErrMissingField)
	}
	return v, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w %q", ErrMissingField, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}
