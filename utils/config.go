package utils

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"trilayer/nn"
)

// TrainConfig holds training configuration
type TrainConfig struct {
	Network nn.Config
	Epochs  int
	Seed    int64
	// Shuffle reorders the samples at the start of every epoch.
	Shuffle bool
	// ReportEvery prints the loss every n epochs; zero only reports the end.
	ReportEvery int
}

// ParseArchitecture parses architecture string into slice of integers
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(archStr)
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		arch[i] = n
	}
	return arch, nil
}

// NetworkConfig builds a network configuration from an "inputs hidden outputs"
// architecture string such as "15 15 10".
func NetworkConfig(archStr string, learningRate float64) (nn.Config, error) {
	arch, err := ParseArchitecture(archStr)
	if err != nil {
		return nn.Config{}, err
	}
	if len(arch) != 3 {
		return nn.Config{}, errors.Wrapf(nn.ErrInvalidConfig, "architecture must have exactly 3 layers, got %d", len(arch))
	}
	c := nn.Config{
		InputNum:     arch[0],
		HiddenNum:    arch[1],
		OutputNum:    arch[2],
		LearningRate: learningRate,
	}
	return c, c.Validate()
}

// ValidateTrainConfig validates training configuration
func ValidateTrainConfig(config *TrainConfig) error {
	if err := config.Network.Validate(); err != nil {
		return err
	}
	if config.Epochs <= 0 {
		return errors.Wrap(nn.ErrInvalidConfig, "epochs must be positive")
	}
	if config.ReportEvery < 0 {
		return errors.Wrap(nn.ErrInvalidConfig, "report interval must not be negative")
	}
	return nil
}
