package nn

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"trilayer/prng"
)

// Initial weights are drawn uniformly from [initMin, initMax). Biases start at zero.
const (
	initMin = -1.0
	initMax = 1.0
)

type Config struct {
	InputNum     int
	HiddenNum    int
	OutputNum    int
	LearningRate float64
}

// Validate reports whether c describes a network that can be built.
func (c Config) Validate() error {
	if c.InputNum <= 0 || c.HiddenNum <= 0 || c.OutputNum <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "layer sizes must be positive, got %d-%d-%d",
			c.InputNum, c.HiddenNum, c.OutputNum)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return errors.Wrapf(ErrInvalidConfig, "learning rate must be positive and finite, got %v", c.LearningRate)
	}
	return nil
}

// Sample is one labelled training example.
type Sample struct {
	Input    []float64
	Expected []float64
}

type Samples []Sample

// Network is a fully-connected input-hidden-output network with sigmoid
// activations on both the hidden and output layers.
//
// Train mutates the weights in place; a Network must not be trained while
// another goroutine is using it.
type Network struct {
	config    Config
	activator Activator

	inputWeights  *mat.Dense // InputNum × HiddenNum
	hiddenBias    *mat.VecDense
	outputWeights *mat.Dense // HiddenNum × OutputNum
	outputBias    *mat.VecDense
}

// NewNetwork builds a network with weights drawn from rng, input→hidden
// matrix first, each in row-major order.
func NewNetwork(c Config, rng *prng.Rand) (*Network, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "a random source is required to initialise weights")
	}
	gen := func() float64 {
		return rng.Next(initMin, initMax)
	}
	return &Network{
		config:        c,
		activator:     Sigmoid{},
		inputWeights:  randomDense(c.InputNum, c.HiddenNum, gen),
		hiddenBias:    mat.NewVecDense(c.HiddenNum, nil),
		outputWeights: randomDense(c.HiddenNum, c.OutputNum, gen),
		outputBias:    mat.NewVecDense(c.OutputNum, nil),
	}, nil
}

func (net *Network) Config() Config {
	return net.config
}

func (net *Network) Activator() Activator {
	return net.activator
}

// InputWeights returns a copy of the input→hidden weights.
func (net *Network) InputWeights() *mat.Dense {
	return mat.DenseCopyOf(net.inputWeights)
}

func (net *Network) HiddenBias() *mat.VecDense {
	return mat.VecDenseCopyOf(net.hiddenBias)
}

// OutputWeights returns a copy of the hidden→output weights.
func (net *Network) OutputWeights() *mat.Dense {
	return mat.DenseCopyOf(net.outputWeights)
}

func (net *Network) OutputBias() *mat.VecDense {
	return mat.VecDenseCopyOf(net.outputBias)
}

func (net *Network) checkInput(input []float64) error {
	if len(input) != net.config.InputNum {
		return errShape("input", len(input), net.config.InputNum)
	}
	return nil
}

func (net *Network) checkExpected(expected []float64) error {
	if len(expected) != net.config.OutputNum {
		return errShape("expected output", len(expected), net.config.OutputNum)
	}
	return nil
}

// feedForward returns the hidden and output activations for x.
func (net *Network) feedForward(x mat.Vector) (hidden, output *mat.VecDense) {
	hiddenSums := vecMul(x, net.inputWeights)
	hiddenSums.AddVec(hiddenSums, net.hiddenBias)
	hidden = apply(net.activator.Activate, hiddenSums)

	outputSums := vecMul(hidden, net.outputWeights)
	outputSums.AddVec(outputSums, net.outputBias)
	output = apply(net.activator.Activate, outputSums)
	return hidden, output
}

// Predict runs a forward pass. It does not modify the network.
func (net *Network) Predict(input []float64) ([]float64, error) {
	if err := net.checkInput(input); err != nil {
		return nil, err
	}
	_, output := net.feedForward(mat.NewVecDense(len(input), input))
	return toSlice(output), nil
}

// Classify returns the index of the strongest output for input.
func (net *Network) Classify(input []float64) (int, error) {
	output, err := net.Predict(input)
	if err != nil {
		return 0, err
	}
	return argMax(output), nil
}

// Train performs one step of stochastic gradient descent on s. Both vectors
// are checked before anything is touched, so a rejected sample leaves the
// network unchanged.
func (net *Network) Train(s Sample) error {
	if err := net.checkInput(s.Input); err != nil {
		return err
	}
	if err := net.checkExpected(s.Expected); err != nil {
		return err
	}
	x := mat.NewVecDense(len(s.Input), s.Input)
	targets := mat.NewVecDense(len(s.Expected), s.Expected)

	hidden, output := net.feedForward(x)

	outputErrors := subtract(targets, output)
	outputDeltas := multiply(outputErrors, apply(net.activator.Deactivate, output))

	// propagated through the output weights before they are updated
	hiddenErrors := transposeMul(outputDeltas, net.outputWeights)
	hiddenDeltas := multiply(hiddenErrors, apply(net.activator.Deactivate, hidden))

	lr := net.config.LearningRate
	addOuter(net.outputWeights, lr, hidden, outputDeltas)
	addScaled(net.outputBias, lr, outputDeltas)
	addOuter(net.inputWeights, lr, x, hiddenDeltas)
	addScaled(net.hiddenBias, lr, hiddenDeltas)
	return nil
}

// TrainOne is Train for callers holding the two vectors separately.
func (net *Network) TrainOne(input, expected []float64) error {
	return net.Train(Sample{Input: input, Expected: expected})
}

// Loss returns the mean squared error over every output of every sample.
// It is zero for an empty set.
func (net *Network) Loss(samples Samples) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	var sum float64
	diff := make([]float64, net.config.OutputNum)
	for i, s := range samples {
		if err := net.checkExpected(s.Expected); err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		output, err := net.Predict(s.Input)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		floats.SubTo(diff, s.Expected, output)
		sum += floats.Dot(diff, diff)
	}
	return sum / float64(len(samples)*net.config.OutputNum), nil
}

// Accuracy returns the percentage of samples whose strongest output matches
// the strongest expected value.
func (net *Network) Accuracy(samples Samples) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	var correct float64
	for i, s := range samples {
		if err := net.checkExpected(s.Expected); err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		prediction, err := net.Classify(s.Input)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		if prediction == argMax(s.Expected) {
			correct++
		}
	}
	return 100 * (correct / float64(len(samples))), nil
}
