// Package trainer drives a network through repeated epochs over a sample set.
//
// The network engine itself never loops, prints or draws random numbers after
// construction; this package owns all three. One prng.Rand seeds the weights
// and then keeps producing the shuffles and generated samples, so a run is
// fully determined by its TrainConfig.
package trainer

import (
	"time"

	"github.com/pkg/errors"

	"trilayer/nn"
	"trilayer/prng"
	"trilayer/utils"
)

var ErrNoSamples = errors.New("no training samples")

type Trainer struct {
	net    *nn.Network
	rng    *prng.Rand
	config utils.TrainConfig
}

// New builds a fresh network from config.Network with weights drawn from a
// source seeded with config.Seed.
func New(config utils.TrainConfig) (*Trainer, error) {
	if err := utils.ValidateTrainConfig(&config); err != nil {
		return nil, err
	}
	rng := prng.New(config.Seed)
	net, err := nn.NewNetwork(config.Network, rng)
	if err != nil {
		return nil, err
	}
	return &Trainer{net: net, rng: rng, config: config}, nil
}

// Resume continues training an existing network, for example one restored
// with utils.LoadNetwork. config.Network is replaced by the network's own
// configuration; config.Seed only drives shuffling and sample generation.
func Resume(net *nn.Network, config utils.TrainConfig) (*Trainer, error) {
	if net == nil {
		return nil, errors.Wrap(nn.ErrInvalidConfig, "no network to resume")
	}
	config.Network = net.Config()
	if err := utils.ValidateTrainConfig(&config); err != nil {
		return nil, err
	}
	return &Trainer{net: net, rng: prng.New(config.Seed), config: config}, nil
}

func (t *Trainer) Network() *nn.Network {
	return t.net
}

// Rand returns the trainer's random source.
func (t *Trainer) Rand() *prng.Rand {
	return t.rng
}

// Generate draws n samples from fn using the trainer's random source.
func (t *Trainer) Generate(n int, fn func(*prng.Rand) nn.Sample) nn.Samples {
	samples := make(nn.Samples, n)
	for i := range samples {
		samples[i] = fn(t.rng)
	}
	return samples
}

func (t *Trainer) checkSamples(samples nn.Samples) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	c := t.net.Config()
	for i, s := range samples {
		if len(s.Input) != c.InputNum {
			return errors.Wrapf(nn.ErrShapeMismatch, "sample %d: input has %d values, expected %d", i, len(s.Input), c.InputNum)
		}
		if len(s.Expected) != c.OutputNum {
			return errors.Wrapf(nn.ErrShapeMismatch, "sample %d: expected output has %d values, expected %d", i, len(s.Expected), c.OutputNum)
		}
	}
	return nil
}

// Run trains on every sample once per epoch for config.Epochs epochs.
// Samples are checked before the first step, so bad data never leaves the
// network half trained.
func (t *Trainer) Run(samples nn.Samples) (*utils.TrainingStats, error) {
	totalStart := time.Now()
	if err := t.checkSamples(samples); err != nil {
		return nil, err
	}
	stats := &utils.TrainingStats{}

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	stats.InitTime = time.Since(totalStart)

	loss, err := t.evaluate(samples, stats)
	if err != nil {
		return nil, err
	}
	stats.InitialLoss = loss

	utils.Printf("Started training on %d samples...\n", len(samples))
	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		if t.config.Shuffle {
			t.rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		start := time.Now()
		for _, i := range order {
			if err := t.net.Train(samples[i]); err != nil {
				return nil, errors.Wrapf(err, "epoch %d, sample %d", epoch, i)
			}
		}
		stats.TrainTime += time.Since(start)
		stats.SamplesSeen += len(order)
		stats.Epochs = epoch

		if t.config.ReportEvery > 0 && epoch%t.config.ReportEvery == 0 {
			loss, err := t.evaluate(samples, stats)
			if err != nil {
				return nil, err
			}
			utils.Printf("Epoch %d of %d complete | mse %.6f\n", epoch, t.config.Epochs, loss)
		}
	}

	stats.FinalLoss, err = t.evaluate(samples, stats)
	if err != nil {
		return nil, err
	}
	stats.TotalTime = time.Since(totalStart)
	utils.Printf("Training took %v, final mse %.6f\n", stats.TotalTime, stats.FinalLoss)
	return stats, nil
}

func (t *Trainer) evaluate(samples nn.Samples, stats *utils.TrainingStats) (float64, error) {
	start := time.Now()
	loss, err := t.net.Loss(samples)
	stats.EvalTime += time.Since(start)
	return loss, err
}
