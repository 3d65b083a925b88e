// Package cpu implements the CPU backend for the clip kernels.
package cpu

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/clip/internal/parallel"
	"github.com/born-ml/clip/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
// Element-wise kernels split their output across goroutines per its parallel config.
type CPUBackend struct {
	device tensor.Device
	cfg    parallel.Config
}

// New creates a new CPU backend using parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	klog.V(1).Infof("cpu backend: parallel=%v workers=%d min_chunk=%d",
		cfg.Enabled, cfg.NumWorkers, cfg.MinChunkSize)
	return &CPUBackend{
		device: tensor.CPU,
		cfg:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Config returns the parallel configuration used by the kernels.
func (cpu *CPUBackend) Config() parallel.Config {
	return cpu.cfg
}

// checkDevice rejects tensors that do not live on the CPU.
func (cpu *CPUBackend) checkDevice(op string, ts ...*tensor.RawTensor) error {
	for _, t := range ts {
		if t != nil && t.Device() != cpu.device {
			return tensor.Usagef("%s: tensor on %s, backend runs on %s", op, t.Device(), cpu.device)
		}
	}
	return nil
}
