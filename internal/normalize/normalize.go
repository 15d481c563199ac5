// Package normalize converts between raw measurement units and the
// standardized space the pretrained models were fitted in.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ErrLengthMismatch is returned when per-element statistics do not match
// the length of the curve they are applied to.
var ErrLengthMismatch = errors.New("normalize: statistics length does not match curve")

// Normalize standardizes x with the given mean and standard deviation.
// A zero std is not guarded and yields ±Inf or NaN.
func Normalize(x, mean, std float64) float64 {
	return (x - mean) / std
}

// Denormalize is the inverse of Normalize.
func Denormalize(x, mean, std float64) float64 {
	return x*std + mean
}

// NormalizeSlice returns a new slice with every element normalized.
func NormalizeSlice(xs []float64, mean, std float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Normalize(x, mean, std)
	}
	return out
}

// DenormalizeSlice returns a new slice with every element denormalized.
func DenormalizeSlice(xs []float64, mean, std float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Denormalize(x, mean, std)
	}
	return out
}

// Stats is a (mean, std) pair for a scalar target.
type Stats struct {
	Mean float64
	Std  float64
}

// Denormalize maps a normalized value back to the units s describes.
func (s Stats) Denormalize(x float64) float64 { return Denormalize(x, s.Mean, s.Std) }

// FromCurve computes adaptive statistics from the curve itself: the
// population mean and population standard deviation.
func FromCurve(curve []float64) Stats {
	mean, std := stat.PopMeanStdDev(curve, nil)
	return Stats{Mean: mean, Std: std}
}

// Vector holds form-factor statistics. A single-element Mean or Std is
// broadcast over the whole curve; otherwise lengths must match.
type Vector struct {
	Mean Values
	Std  Values
}

// Scalar builds a Vector that broadcasts one (mean, std) pair.
func Scalar(mean, std float64) Vector {
	return Vector{Mean: Values{mean}, Std: Values{std}}
}

// Apply normalizes curve elementwise and returns a new slice.
func (v Vector) Apply(curve []float64) ([]float64, error) {
	if err := v.check(len(curve)); err != nil {
		return nil, err
	}
	out := make([]float64, len(curve))
	for i, x := range curve {
		out[i] = Normalize(x, v.Mean.at(i), v.Std.at(i))
	}
	return out, nil
}

func (v Vector) check(n int) error {
	if len(v.Mean) == 0 || len(v.Std) == 0 {
		return fmt.Errorf("%w: empty statistics", ErrLengthMismatch)
	}
	if len(v.Mean) != 1 && len(v.Mean) != n {
		return fmt.Errorf("%w: mean has %d values, curve has %d", ErrLengthMismatch, len(v.Mean), n)
	}
	if len(v.Std) != 1 && len(v.Std) != n {
		return fmt.Errorf("%w: std has %d values, curve has %d", ErrLengthMismatch, len(v.Std), n)
	}
	return nil
}

// Values is a list of statistics that decodes from either a JSON number
// or a JSON array of numbers.
type Values []float64

func (v Values) at(i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

// UnmarshalJSON accepts 1.5 as well as [1.5, 2.5].
func (v *Values) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*v = Values{scalar}
		return nil
	}
	var list []float64
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected number or array of numbers: %w", err)
	}
	*v = list
	return nil
}

// Mode selects where the form-factor statistics come from.
type Mode int

const (
	// Constant uses the training-time statistics stored with the model.
	Constant Mode = iota
	// Adaptive recomputes mean and std from the input curve.
	Adaptive
)

func (m Mode) String() string {
	switch m {
	case Constant:
		return "constant"
	case Adaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "constant" or "adaptive" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "constant":
		return Constant, nil
	case "adaptive":
		return Adaptive, nil
	default:
		return Constant, fmt.Errorf("unknown normalization mode %q", s)
	}
}

// Curve normalizes curve according to mode. Constant mode uses stored;
// Adaptive mode ignores stored and uses FromCurve(curve).
func Curve(curve []float64, mode Mode, stored Vector) ([]float64, error) {
	if mode == Adaptive {
		s := FromCurve(curve)
		return NormalizeSlice(curve, s.Mean, s.Std), nil
	}
	return stored.Apply(curve)
}
