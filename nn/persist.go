package nn

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const snapshotVersion = "1"

// WeightData is one parameter tensor in row-major order.
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Snapshot holds everything needed to rebuild a Network.
type Snapshot struct {
	Version       string      `json:"version"`
	Activation    string      `json:"activation"`
	InputNum      int         `json:"inputNum"`
	HiddenNum     int         `json:"hiddenNum"`
	OutputNum     int         `json:"outputNum"`
	LearningRate  float64     `json:"learningRate"`
	InputWeights  *WeightData `json:"inputWeights"`
	HiddenBias    *WeightData `json:"hiddenBias"`
	OutputWeights *WeightData `json:"outputWeights"`
	OutputBias    *WeightData `json:"outputBias"`
}

func denseToWeightData(name string, m *mat.Dense) *WeightData {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return &WeightData{Name: name, Shape: []int{r, c}, Data: data}
}

func vecToWeightData(name string, v *mat.VecDense) *WeightData {
	return &WeightData{Name: name, Shape: []int{v.Len()}, Data: toSlice(v)}
}

// Snapshot copies the network's parameters.
func (net *Network) Snapshot() *Snapshot {
	c := net.config
	return &Snapshot{
		Version:       snapshotVersion,
		Activation:    net.Activator().String(),
		InputNum:      c.InputNum,
		HiddenNum:     c.HiddenNum,
		OutputNum:     c.OutputNum,
		LearningRate:  c.LearningRate,
		InputWeights:  denseToWeightData("inputWeights", net.inputWeights),
		HiddenBias:    vecToWeightData("hiddenBias", net.hiddenBias),
		OutputWeights: denseToWeightData("outputWeights", net.outputWeights),
		OutputBias:    vecToWeightData("outputBias", net.outputBias),
	}
}

func checkWeightData(field string, wd *WeightData, shape ...int) error {
	if wd == nil {
		return errors.Wrapf(ErrCorruptSnapshot, "%s is missing", field)
	}
	if len(wd.Shape) != len(shape) {
		return errors.Wrapf(ErrCorruptSnapshot, "%s has shape %v, expected %v", field, wd.Shape, shape)
	}
	// The running product never exceeds len(wd.Data), so it cannot overflow.
	size := 1
	for i, d := range shape {
		if wd.Shape[i] != d {
			return errors.Wrapf(ErrCorruptSnapshot, "%s has shape %v, expected %v", field, wd.Shape, shape)
		}
		if size > len(wd.Data)/d {
			return errors.Wrapf(ErrCorruptSnapshot, "%s holds %d values, too few for shape %v", field, len(wd.Data), shape)
		}
		size *= d
	}
	if len(wd.Data) != size {
		return errors.Wrapf(ErrCorruptSnapshot, "%s holds %d values, shape %v needs %d", field, len(wd.Data), shape, size)
	}
	if !finite(wd.Data) {
		return errors.Wrapf(ErrCorruptSnapshot, "%s holds a non-finite value", field)
	}
	return nil
}

// FromSnapshot rebuilds a network. Every declared dimension is checked
// against the stored parameters before anything is allocated.
func FromSnapshot(s *Snapshot) (*Network, error) {
	if s == nil {
		return nil, errors.Wrap(ErrCorruptSnapshot, "no snapshot")
	}
	if s.Version != snapshotVersion {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "unsupported version %q", s.Version)
	}
	activator, ok := ActivatorLookup[s.Activation]
	if !ok {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "invalid activator: %q", s.Activation)
	}
	c := Config{
		InputNum:     s.InputNum,
		HiddenNum:    s.HiddenNum,
		OutputNum:    s.OutputNum,
		LearningRate: s.LearningRate,
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "declared configuration: %v", err)
	}

	checks := []error{
		checkWeightData("inputWeights", s.InputWeights, c.InputNum, c.HiddenNum),
		checkWeightData("hiddenBias", s.HiddenBias, c.HiddenNum),
		checkWeightData("outputWeights", s.OutputWeights, c.HiddenNum, c.OutputNum),
		checkWeightData("outputBias", s.OutputBias, c.OutputNum),
	}
	for _, err := range checks {
		if err != nil {
			return nil, err
		}
	}

	return &Network{
		config:        c,
		activator:     activator,
		inputWeights:  mat.NewDense(c.InputNum, c.HiddenNum, copyOf(s.InputWeights.Data)),
		hiddenBias:    mat.NewVecDense(c.HiddenNum, copyOf(s.HiddenBias.Data)),
		outputWeights: mat.NewDense(c.HiddenNum, c.OutputNum, copyOf(s.OutputWeights.Data)),
		outputBias:    mat.NewVecDense(c.OutputNum, copyOf(s.OutputBias.Data)),
	}, nil
}

func copyOf(data []float64) []float64 {
	return append([]float64(nil), data...)
}

// MarshalJSON encodes the network's snapshot.
func (net *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(net.Snapshot())
}

// UnmarshalJSON replaces net with the network encoded in data. On error net
// is left as it was.
func (net *Network) UnmarshalJSON(data []byte) error {
	loaded, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*net = *loaded
	return nil
}

// Unmarshal decodes a network written by MarshalJSON or Save.
func Unmarshal(data []byte) (*Network, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "decoding: %v", err)
	}
	return FromSnapshot(&s)
}

// Save writes the network as indented JSON to w. Errors from w are returned
// wrapped; the network never opens or closes anything itself.
func (net *Network) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(net.Snapshot()), "writing network")
}

// Load reads a network written by Save. Errors from r are returned wrapped;
// undecodable or inconsistent content is ErrCorruptSnapshot.
func Load(r io.Reader) (*Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading network")
	}
	return Unmarshal(data)
}
