// Package model holds the pretrained predictors used by the scattering
// property predictor and decodes them from their serialized JSON form.
//
// Two capabilities are exposed. An IntervalRegressor maps a normalized
// form-factor curve to a point estimate plus conformal prediction
// intervals, one per requested alpha. A Network maps a normalized curve
// to a fixed-length output vector and carries no interval estimator.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when an input or parameter has a
	// length the model cannot accept.
	ErrShapeMismatch = errors.New("model: shape mismatch")
	// ErrUnknownKind is returned when a serialized regressor names a
	// kind this package does not implement.
	ErrUnknownKind = errors.New("model: unknown regressor kind")
	// ErrNoCalibration is returned when a conformal regressor has no
	// calibration residuals to build intervals from.
	ErrNoCalibration = errors.New("model: no calibration residuals")
)

// Intervals holds prediction interval bounds, index-aligned with the
// alphas passed to IntervalRegressor.Predict.
type Intervals struct {
	Lower []float64
	Upper []float64
}

// IntervalRegressor is a pretrained regressor with a conformal interval
// estimator. alpha is the miscoverage rate, so 0.05 asks for a 95%
// interval.
type IntervalRegressor interface {
	Predict(x []float64, alphas []float64) (float64, Intervals, error)
}

// Network is a pretrained network producing a fixed-length vector.
type Network interface {
	Predict(x []float64) ([]float64, error)
	InputDim() int
	OutputDim() int
}

// Kinds of serialized regressors.
const (
	KindLinearConformal = "linear_conformal"
	KindMLPConformal    = "mlp_conformal"
)

type envelope struct {
	Kind string `json:"kind"`
}

// DecodeRegressor decodes a tagged regressor object of the form
// {"kind": "...", ...}.
func DecodeRegressor(data []byte) (IntervalRegressor, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse regressor: %w", err)
	}

	switch env.Kind {
	case KindLinearConformal:
		var lc LinearConformal
		if err := json.Unmarshal(data, &lc); err != nil {
			return nil, fmt.Errorf("failed to parse %s regressor: %w", env.Kind, err)
		}
		if err := lc.Validate(); err != nil {
			return nil, err
		}
		return &lc, nil
	case KindMLPConformal:
		var mc MLPConformal
		if err := json.Unmarshal(data, &mc); err != nil {
			return nil, fmt.Errorf("failed to parse %s regressor: %w", env.Kind, err)
		}
		if err := mc.Validate(); err != nil {
			return nil, err
		}
		return &mc, nil
	case "":
		return nil, fmt.Errorf("%w: missing \"kind\"", ErrUnknownKind)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
}
