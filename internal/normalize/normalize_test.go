package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		x, mean, std float64
	}{
		{0, 0, 1},
		{1.5, 0.2, 3.1},
		{-42, 7, 0.01},
		{1e6, -3, 250},
		{0.003, 0.004, -2},
	}
	for _, c := range cases {
		got := Denormalize(Normalize(c.x, c.mean, c.std), c.mean, c.std)
		assert.InDelta(t, c.x, got, 1e-9*math.Max(1, math.Abs(c.x)), "x=%v mean=%v std=%v", c.x, c.mean, c.std)
	}
}

func TestSliceHelpersDoNotAlias(t *testing.T) {
	t.Parallel()

	in := []float64{1, 2, 3}
	norm := NormalizeSlice(in, 2, 1)
	assert.Equal(t, []float64{-1, 0, 1}, norm)
	assert.Equal(t, []float64{1, 2, 3}, in)

	back := DenormalizeSlice(norm, 2, 1)
	assert.Equal(t, in, back)
}

func TestZeroStdIsNotGuarded(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsInf(Normalize(1, 0, 0), 1))
	assert.True(t, math.IsNaN(Normalize(0, 0, 0)))
}

func TestFromCurveUsesPopulationStd(t *testing.T) {
	t.Parallel()

	s := FromCurve([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.Std, 1e-12)
}

func TestVectorApply(t *testing.T) {
	t.Parallel()

	t.Run("broadcasts scalar statistics", func(t *testing.T) {
		got, err := Scalar(1, 2).Apply([]float64{1, 3, 5})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2}, got)
	})

	t.Run("applies per-element statistics", func(t *testing.T) {
		v := Vector{Mean: Values{1, 2, 3}, Std: Values{1, 2, 4}}
		got, err := v.Apply([]float64{2, 6, 11})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 2}, got)
	})

	t.Run("rejects length mismatch", func(t *testing.T) {
		v := Vector{Mean: Values{1, 2}, Std: Values{1}}
		_, err := v.Apply([]float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("rejects empty statistics", func(t *testing.T) {
		_, err := Vector{}.Apply([]float64{1})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})
}

func TestValuesUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		A Values `json:"a"`
		B Values `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1.5, "b": [1, 2, 3]}`), &v))
	assert.Equal(t, Values{1.5}, v.A)
	assert.Equal(t, Values{1, 2, 3}, v.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "nope"}`), &v))
}

func TestCurveModes(t *testing.T) {
	t.Parallel()

	curve := []float64{10, 20, 30}
	stored := Scalar(0, 1)

	constant, err := Curve(curve, Constant, stored)
	require.NoError(t, err)
	assert.Equal(t, curve, constant)

	adaptive, err := Curve(curve, Adaptive, stored)
	require.NoError(t, err)
	assert.NotEqual(t, constant, adaptive)
	assert.InDelta(t, 0.0, adaptive[1], 1e-12)
	assert.InDelta(t, -math.Sqrt(1.5), adaptive[0], 1e-12)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Constant, false},
		{"constant", Constant, false},
		{"Adaptive", Adaptive, false},
		{" adaptive ", Adaptive, false},
		{"median", Constant, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "adaptive", Adaptive.String())
}
