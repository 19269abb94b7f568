package procsim

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/procsim/service/manager"
	"github.com/viant/procsim/service/memory"
	"github.com/viant/procsim/service/resource"
	"github.com/viant/procsim/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the simulator configuration.
// Fields left out of a YAML or JSON document keep their defaults when the
// document is decoded over DefaultConfig.
type Config struct {
	Memory     memory.Config    `json:"memory" yaml:"memory"`
	Resources  resource.Config  `json:"resources" yaml:"resources"`
	Scheduler  scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Table      TableConfig      `json:"table" yaml:"table"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// TableConfig sizes the process table.
type TableConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"`
}

// SimulationConfig bounds a run.
type SimulationConfig struct {
	// MaxTime stops the run at the given tick, zero means no limit.
	MaxTime int `json:"maxTime" yaml:"maxTime"`
}

// DefaultConfig returns the reference machine: 1024 memory blocks (64
// real-time), one scanner, two printers, one modem, three disks, the
// {6,5,4,3,2} quantum table with aging at 20 and a 100 slot process table.
func DefaultConfig() *Config {
	return &Config{
		Memory:    memory.DefaultConfig(),
		Resources: resource.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Table:     TableConfig{Capacity: manager.DefaultCapacity},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	errs = append(errs, c.Memory.Validate(), c.Resources.Validate(), c.Scheduler.Validate())
	if c.Table.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("table.capacity must be > 0"))
	}
	if c.Simulation.MaxTime < 0 {
		errs = append(errs, fmt.Errorf("simulation.maxTime must be >= 0"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML (or JSON) document from URL on top of the defaults.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
