package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

const (
	DefaultTruffleBinary = "./node_modules/.bin/truffle"
	DefaultNetwork       = "deployment"
)

var ErrTruffleNotFound = errors.New("truffle binary not found, run `npm install` in your project first")

// Deployer runs the project's truffle binary to deploy contracts.
type Deployer struct {
	Binary  string
	Network string

	// Dir is the project directory, the working directory when empty
	Dir string

	log *zap.Logger
}

func NewDeployer(binary, network string, log *zap.Logger) *Deployer {
	if binary == "" {
		binary = DefaultTruffleBinary
	}
	if network == "" {
		network = DefaultNetwork
	}
	return &Deployer{Binary: binary, Network: network, log: log}
}

func (d *Deployer) Args() []string {
	return []string{"deploy", "--network", d.Network}
}

// Deploy blocks until truffle exits and returns everything it printed.
func (d *Deployer) Deploy(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(d.Binary); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTruffleNotFound, d.Binary)
		}
		return "", err
	}

	cmd := exec.CommandContext(ctx, d.Binary, d.Args()...)
	cmd.Dir = d.Dir
	cmd.Env = os.Environ()

	d.log.Debug("running truffle", zap.String("binary", d.Binary), zap.Strings("args", cmd.Args[1:]))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("truffle deploy failed: %w", err)
	}
	return string(output), nil
}
