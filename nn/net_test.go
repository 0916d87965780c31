package nn

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"trilayer/prng"
)

var xorSamples = Samples{
	{Input: []float64{0, 0}, Expected: []float64{0}},
	{Input: []float64{1, 0}, Expected: []float64{1}},
	{Input: []float64{0, 1}, Expected: []float64{1}},
	{Input: []float64{1, 1}, Expected: []float64{0}},
}

func newTestNetwork(t *testing.T, in, hidden, out int, lr float64, seed int64) *Network {
	t.Helper()
	net, err := NewNetwork(Config{InputNum: in, HiddenNum: hidden, OutputNum: out, LearningRate: lr}, prng.New(seed))
	require.NoError(t, err)
	return net
}

func TestNewNetworkShapes(t *testing.T) {
	net := newTestNetwork(t, 3, 5, 2, 0.1, 1)

	r, c := net.InputWeights().Dims()
	assert.Equal(t, [2]int{3, 5}, [2]int{r, c})
	r, c = net.OutputWeights().Dims()
	assert.Equal(t, [2]int{5, 2}, [2]int{r, c})
	assert.Equal(t, 5, net.HiddenBias().Len())
	assert.Equal(t, 2, net.OutputBias().Len())
}

func TestNewNetworkInitPolicy(t *testing.T) {
	net := newTestNetwork(t, 4, 6, 3, 0.1, 99)

	for _, w := range []*mat.Dense{net.InputWeights(), net.OutputWeights()} {
		r, c := w.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := w.At(i, j)
				if v < -1 || v >= 1 {
					t.Fatalf("weight %v outside [-1, 1)", v)
				}
			}
		}
	}
	assert.Equal(t, 0.0, mat.Norm(net.HiddenBias(), 2))
	assert.Equal(t, 0.0, mat.Norm(net.OutputBias(), 2))

	// weights are the first draws of the source, input layer first
	rng := prng.New(99)
	assert.Equal(t, rng.Next(-1, 1), net.InputWeights().At(0, 0))
	assert.Equal(t, rng.Next(-1, 1), net.InputWeights().At(0, 1))
}

func TestNewNetworkSameSeedSameWeights(t *testing.T) {
	a := newTestNetwork(t, 2, 4, 1, 0.5, 7)
	b := newTestNetwork(t, 2, 4, 1, 0.5, 7)
	assert.True(t, mat.Equal(a.InputWeights(), b.InputWeights()))
	assert.True(t, mat.Equal(a.OutputWeights(), b.OutputWeights()))
}

func TestNewNetworkInvalidConfig(t *testing.T) {
	cases := []Config{
		{InputNum: 0, HiddenNum: 1, OutputNum: 1, LearningRate: 0.1},
		{InputNum: 1, HiddenNum: -2, OutputNum: 1, LearningRate: 0.1},
		{InputNum: 1, HiddenNum: 1, OutputNum: 0, LearningRate: 0.1},
		{InputNum: 1, HiddenNum: 1, OutputNum: 1, LearningRate: 0},
		{InputNum: 1, HiddenNum: 1, OutputNum: 1, LearningRate: -0.5},
		{InputNum: 1, HiddenNum: 1, OutputNum: 1, LearningRate: math.NaN()},
		{InputNum: 1, HiddenNum: 1, OutputNum: 1, LearningRate: math.Inf(1)},
	}
	for _, c := range cases {
		net, err := NewNetwork(c, prng.New(1))
		assert.Nil(t, net)
		assert.True(t, errors.Is(err, ErrInvalidConfig), "config %+v: %v", c, err)
	}

	_, err := NewNetwork(Config{InputNum: 1, HiddenNum: 1, OutputNum: 1, LearningRate: 1}, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestPredictZeroVectorInSigmoidRange(t *testing.T) {
	sizes := [][3]int{{1, 1, 1}, {2, 4, 1}, {15, 15, 10}, {1, 20, 1}, {8, 3, 5}}
	for i, s := range sizes {
		net := newTestNetwork(t, s[0], s[1], s[2], 0.3, int64(i+1))
		out, err := net.Predict(make([]float64, s[0]))
		require.NoError(t, err)
		require.Len(t, out, s[2])
		for _, v := range out {
			if !(v > 0 && v < 1) {
				t.Fatalf("sizes %v: output %v outside (0, 1)", s, v)
			}
		}
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	net := newTestNetwork(t, 3, 4, 2, 0.5, 11)
	input := []float64{0.3, -1.2, 2}
	first, err := net.Predict(input)
	require.NoError(t, err)
	second, err := net.Predict(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictMatchesManualForwardPass(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1, 0.5, 5)
	net.hiddenBias.SetVec(0, 0.1)
	net.outputBias.SetVec(0, -0.2)
	input := []float64{0.5, -1}

	iw, ow := net.InputWeights(), net.OutputWeights()
	sig := Sigmoid{}.Activate
	h0 := sig(input[0]*iw.At(0, 0) + input[1]*iw.At(1, 0) + 0.1)
	h1 := sig(input[0]*iw.At(0, 1) + input[1]*iw.At(1, 1))
	want := sig(h0*ow.At(0, 0) + h1*ow.At(1, 0) - 0.2)

	got, err := net.Predict(input)
	require.NoError(t, err)
	assert.InDelta(t, want, got[0], 1e-12)
}

func TestShapeMismatchLeavesNetworkUntouched(t *testing.T) {
	net := newTestNetwork(t, 2, 3, 1, 0.5, 3)
	before := net.Snapshot()

	_, err := net.Predict([]float64{1})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = net.Predict([]float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	err = net.TrainOne([]float64{1, 2, 3}, []float64{1})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	err = net.TrainOne([]float64{1, 0}, []float64{1, 0})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	err = net.Train(Sample{Input: nil, Expected: []float64{1}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	assert.Equal(t, before, net.Snapshot())
}

func TestTrainMovesOutputTowardsTarget(t *testing.T) {
	net := newTestNetwork(t, 2, 3, 1, 0.5, 8)
	input := []float64{1, 0}
	before, err := net.Predict(input)
	require.NoError(t, err)

	require.NoError(t, net.TrainOne(input, []float64{1}))

	after, err := net.Predict(input)
	require.NoError(t, err)
	assert.Greater(t, after[0], before[0])
}

func halfSquaredError(net *Network, s Sample) float64 {
	out, err := net.Predict(s.Input)
	if err != nil {
		panic(err)
	}
	diff := make([]float64, len(out))
	floats.SubTo(diff, s.Expected, out)
	return 0.5 * floats.Dot(diff, diff)
}

// One training step must move every parameter by -lr times the gradient of
// ½‖expected − output‖², measured here by central differences.
func TestTrainStepFollowsNumericGradient(t *testing.T) {
	const lr = 0.5
	net := newTestNetwork(t, 3, 4, 2, lr, 21)
	net.hiddenBias.SetVec(1, 0.3)
	net.outputBias.SetVec(0, -0.4)
	sample := Sample{Input: []float64{0.2, -0.7, 1.1}, Expected: []float64{0.9, 0.1}}

	base := net.Snapshot()
	params := map[string]func(*Snapshot) **WeightData{
		"inputWeights":  func(s *Snapshot) **WeightData { return &s.InputWeights },
		"hiddenBias":    func(s *Snapshot) **WeightData { return &s.HiddenBias },
		"outputWeights": func(s *Snapshot) **WeightData { return &s.OutputWeights },
		"outputBias":    func(s *Snapshot) **WeightData { return &s.OutputBias },
	}

	grads := make(map[string][]float64)
	for name, field := range params {
		field := field
		loss := func(x []float64) float64 {
			s := *base
			p := field(&s)
			*p = &WeightData{Name: (*p).Name, Shape: (*p).Shape, Data: x}
			n, err := FromSnapshot(&s)
			if err != nil {
				panic(err)
			}
			return halfSquaredError(n, sample)
		}
		grads[name] = fd.Gradient(nil, loss, (*field(base)).Data, &fd.Settings{Formula: fd.Central})
	}

	require.NoError(t, net.Train(sample))
	after := net.Snapshot()

	for name, field := range params {
		old := (*field(base)).Data
		updated := (*field(after)).Data
		step := make([]float64, len(old))
		floats.SubTo(step, updated, old)
		floats.Scale(-1/lr, step)
		assert.True(t, floats.EqualApprox(grads[name], step, 1e-6),
			"%s: analytic %v, numeric %v", name, step, grads[name])
	}
}

func TestLearnsXOR(t *testing.T) {
	net := newTestNetwork(t, 2, 8, 1, 0.5, 42)
	for epoch := 0; epoch < 10000; epoch++ {
		for _, s := range xorSamples {
			require.NoError(t, net.Train(s))
		}
	}

	loss, err := net.Loss(xorSamples)
	require.NoError(t, err)
	assert.Less(t, loss, 0.05)

	for _, s := range xorSamples {
		out, err := net.Predict(s.Input)
		require.NoError(t, err)
		if s.Expected[0] == 1 {
			assert.Greater(t, out[0], 0.5, "input %v", s.Input)
		} else {
			assert.Less(t, out[0], 0.5, "input %v", s.Input)
		}
	}
}

var digitSamples = Samples{
	{Input: []float64{1, 1, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 1, 1}, Expected: oneHot(0, 10)},
	{Input: []float64{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}, Expected: oneHot(1, 10)},
	{Input: []float64{1, 1, 1, 0, 0, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1}, Expected: oneHot(2, 10)},
	{Input: []float64{1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1}, Expected: oneHot(3, 10)},
	{Input: []float64{1, 0, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 0, 0, 1}, Expected: oneHot(4, 10)},
	{Input: []float64{1, 1, 1, 1, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1}, Expected: oneHot(5, 10)},
	{Input: []float64{1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 1, 1}, Expected: oneHot(6, 10)},
	{Input: []float64{1, 1, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}, Expected: oneHot(7, 10)},
	{Input: []float64{1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1}, Expected: oneHot(8, 10)},
	{Input: []float64{1, 1, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1}, Expected: oneHot(9, 10)},
}

func oneHot(i, n int) []float64 {
	v := make([]float64, n)
	v[i] = 1
	return v
}

func TestLearnsDigits(t *testing.T) {
	net := newTestNetwork(t, 15, 15, 10, 0.8, 123)
	for epoch := 0; epoch < 5000; epoch++ {
		for _, s := range digitSamples {
			require.NoError(t, net.Train(s))
		}
	}

	acc, err := net.Accuracy(digitSamples)
	require.NoError(t, err)
	assert.Equal(t, 100.0, acc)

	for i, s := range digitSamples {
		got, err := net.Classify(s.Input)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestLossAndAccuracyEmpty(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1, 0.5, 1)
	loss, err := net.Loss(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, loss)
	acc, err := net.Accuracy(Samples{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc)
}

func TestLossRejectsBadSample(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1, 0.5, 1)
	_, err := net.Loss(Samples{{Input: []float64{1, 1}, Expected: []float64{1, 1}}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = net.Accuracy(Samples{{Input: []float64{1}, Expected: []float64{1}}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestAccessorsReturnCopies(t *testing.T) {
	net := newTestNetwork(t, 2, 2, 1, 0.5, 1)
	w := net.InputWeights()
	w.Set(0, 0, 100)
	b := net.OutputBias()
	b.SetVec(0, 100)
	assert.NotEqual(t, 100.0, net.InputWeights().At(0, 0))
	assert.NotEqual(t, 100.0, net.OutputBias().AtVec(0))
}
