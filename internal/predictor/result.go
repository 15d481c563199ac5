package predictor

import (
	"encoding/json"
	"math"
)

// Point is one sample of the density profile.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes a point as an [x, y] pair.
func (pt Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{pt.X, pt.Y})
}

// UnmarshalJSON decodes an [x, y] pair.
func (pt *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	pt.X, pt.Y = pair[0], pair[1]
	return nil
}

// Interval is a prediction interval at miscoverage rate Alpha.
type Interval struct {
	Alpha float64 `json:"alpha"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Percent is the interval's coverage as a whole percentage, so an alpha
// of 0.05 reports 95.
func (iv Interval) Percent() int {
	return int(math.Round((1 - iv.Alpha) * 100))
}

// Estimate is a scalar prediction with its intervals, ordered as the
// predictor's alphas.
type Estimate struct {
	Value     float64    `json:"value"`
	Intervals []Interval `json:"intervals"`
}

// Result holds the output of Predictor.Predict.
type Result struct {
	Density   []Point  `json:"density"`
	Thickness Estimate `json:"thickness"`
	APL       Estimate `json:"APL"`
}

// Map returns the result keyed by "density", "thickness" and "APL".
func (r Result) Map() map[string]any {
	return map[string]any{
		"density":   r.Density,
		"thickness": r.Thickness,
		"APL":       r.APL,
	}
}

// Figure is a single-series line plot.
type Figure struct {
	Title  string
	Label  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
	// XMin and XMax fix the x axis range.
	XMin float64
	XMax float64
}
