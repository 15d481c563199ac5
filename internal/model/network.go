package model

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation names accepted in serialized layers.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationTanh    = "tanh"
	ActivationSigmoid = "sigmoid"
)

// Layer is one fully connected layer: y = act(x·W + b), with W stored as
// inputs × outputs.
type Layer struct {
	W          *mat.Dense
	B          *mat.VecDense
	Activation string
}

type layerJSON struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// UnmarshalJSON decodes {"weights": [[...]], "bias": [...], "activation": "..."}.
func (l *Layer) UnmarshalJSON(data []byte) error {
	var raw layerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rows := len(raw.Weights)
	if rows == 0 {
		return fmt.Errorf("%w: layer has no weights", ErrShapeMismatch)
	}
	cols := len(raw.Weights[0])
	if cols == 0 {
		return fmt.Errorf("%w: layer has no outputs", ErrShapeMismatch)
	}
	backing := make([]float64, 0, rows*cols)
	for i, row := range raw.Weights {
		if len(row) != cols {
			return fmt.Errorf("%w: weight row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), cols)
		}
		backing = append(backing, row...)
	}
	if len(raw.Bias) != cols {
		return fmt.Errorf("%w: bias has %d values, want %d", ErrShapeMismatch, len(raw.Bias), cols)
	}
	act := raw.Activation
	if act == "" {
		act = ActivationLinear
	}
	if _, err := activation(act); err != nil {
		return err
	}

	l.W = mat.NewDense(rows, cols, backing)
	l.B = mat.NewVecDense(cols, append([]float64(nil), raw.Bias...))
	l.Activation = act
	return nil
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case ActivationLinear:
		return func(v float64) float64 { return v }, nil
	case ActivationReLU:
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case ActivationTanh:
		return math.Tanh, nil
	case ActivationSigmoid:
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

// DenseNetwork is a feed-forward network of fully connected layers.
type DenseNetwork struct {
	Layers []Layer `json:"layers"`
}

// DecodeNetwork parses a serialized DenseNetwork and checks that
// consecutive layers line up.
func DecodeNetwork(data []byte) (*DenseNetwork, error) {
	var n DenseNetwork
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse network: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Validate checks layer dimensions.
func (n *DenseNetwork) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("%w: network has no layers", ErrShapeMismatch)
	}
	for i := 1; i < len(n.Layers); i++ {
		_, prevOut := n.Layers[i-1].W.Dims()
		in, _ := n.Layers[i].W.Dims()
		if prevOut != in {
			return fmt.Errorf("%w: layer %d outputs %d values but layer %d expects %d",
				ErrShapeMismatch, i-1, prevOut, i, in)
		}
	}
	return nil
}

// InputDim is the number of inputs the first layer accepts.
func (n *DenseNetwork) InputDim() int {
	r, _ := n.Layers[0].W.Dims()
	return r
}

// OutputDim is the number of values the last layer produces.
func (n *DenseNetwork) OutputDim() int {
	_, c := n.Layers[len(n.Layers)-1].W.Dims()
	return c
}

// Predict runs a forward pass and returns a fresh output slice.
func (n *DenseNetwork) Predict(x []float64) ([]float64, error) {
	if len(x) != n.InputDim() {
		return nil, fmt.Errorf("%w: network expects %d inputs, got %d", ErrShapeMismatch, n.InputDim(), len(x))
	}

	h := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for i, l := range n.Layers {
		_, cols := l.W.Dims()
		next := mat.NewVecDense(cols, nil)
		next.MulVec(l.W.T(), h)
		next.AddVec(next, l.B)

		act, err := activation(l.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		for j := 0; j < cols; j++ {
			next.SetVec(j, act(next.AtVec(j)))
		}
		h = next
	}

	out := make([]float64, h.Len())
	copy(out, h.RawVector().Data)
	return out, nil
}

// MLPConformal is a single-output network wrapped in a split-conformal
// interval estimator.
type MLPConformal struct {
	Network   DenseNetwork `json:"network"`
	Residuals Residuals    `json:"residuals"`
}

// Validate checks the decoded parameters.
func (m *MLPConformal) Validate() error {
	if err := m.Network.Validate(); err != nil {
		return err
	}
	if out := m.Network.OutputDim(); out != 1 {
		return fmt.Errorf("%w: conformal network must have one output, has %d", ErrShapeMismatch, out)
	}
	if len(m.Residuals) == 0 {
		return ErrNoCalibration
	}
	return nil
}

// Predict implements IntervalRegressor.
func (m *MLPConformal) Predict(x []float64, alphas []float64) (float64, Intervals, error) {
	out, err := m.Network.Predict(x)
	if err != nil {
		return 0, Intervals{}, err
	}
	hw, err := m.Residuals.HalfWidths(alphas)
	if err != nil {
		return 0, Intervals{}, err
	}
	return out[0], symmetric(out[0], hw), nil
}
