package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// LinearConformal is a linear regressor wrapped in a split-conformal
// interval estimator.
type LinearConformal struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Residuals Residuals `json:"residuals"`
}

// Validate checks the decoded parameters.
func (m *LinearConformal) Validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("%w: linear regressor has no weights", ErrShapeMismatch)
	}
	if len(m.Residuals) == 0 {
		return ErrNoCalibration
	}
	return nil
}

// Predict implements IntervalRegressor.
func (m *LinearConformal) Predict(x []float64, alphas []float64) (float64, Intervals, error) {
	if len(x) != len(m.Weights) {
		return 0, Intervals{}, fmt.Errorf("%w: linear regressor expects %d inputs, got %d",
			ErrShapeMismatch, len(m.Weights), len(x))
	}
	point := floats.Dot(m.Weights, x) + m.Intercept

	hw, err := m.Residuals.HalfWidths(alphas)
	if err != nil {
		return 0, Intervals{}, err
	}
	return point, symmetric(point, hw), nil
}
