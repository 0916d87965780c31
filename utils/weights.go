package utils

import (
	"os"

	"github.com/pkg/errors"

	"trilayer/nn"
)

// SaveNetwork writes net to filepath as JSON, replacing any existing file.
func SaveNetwork(filepath string, net *nn.Network) (err error) {
	f, err := os.Create(filepath)
	if err != nil {
		return errors.Wrap(err, "failed to create weights file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close weights file")
		}
	}()
	return net.Save(f)
}

// LoadNetwork reads a network written by SaveNetwork.
func LoadNetwork(filepath string) (*nn.Network, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open weights file")
	}
	defer f.Close()
	return nn.Load(f)
}
