package model

import (
	"fmt"
	"math"
	"sort"
)

// Residuals are absolute calibration residuals in normalized target
// units, as produced by a split-conformal calibration pass.
type Residuals []float64

// sorted returns an ascending copy.
func (r Residuals) sorted() []float64 {
	s := make([]float64, len(r))
	copy(s, r)
	sort.Float64s(s)
	return s
}

// HalfWidths returns the split-conformal half-width for each alpha: the
// k-th smallest residual with k = ceil((n+1)(1-alpha)), capped at n.
func (r Residuals) HalfWidths(alphas []float64) ([]float64, error) {
	if len(r) == 0 {
		return nil, ErrNoCalibration
	}
	s := r.sorted()
	n := len(s)
	out := make([]float64, len(alphas))
	for i, a := range alphas {
		if a <= 0 || a >= 1 {
			return nil, fmt.Errorf("alpha must be in (0, 1), got %v", a)
		}
		// 1e-9 keeps float noise in (n+1)(1-a) from bumping the rank.
		k := int(math.Ceil(float64(n+1)*(1-a) - 1e-9))
		k = min(max(k, 1), n)
		out[i] = s[k-1]
	}
	return out, nil
}

func symmetric(point float64, halfWidths []float64) Intervals {
	iv := Intervals{
		Lower: make([]float64, len(halfWidths)),
		Upper: make([]float64, len(halfWidths)),
	}
	for i, w := range halfWidths {
		iv.Lower[i] = point - w
		iv.Upper[i] = point + w
	}
	return iv
}
