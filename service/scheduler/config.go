package scheduler

import (
	"fmt"

	"github.com/viant/procsim/model/process"
)

// Config defines the MLFQ parameters.
type Config struct {
	// Quantum maps every time-shared level to its run length.
	Quantum map[int]int `json:"quantum" yaml:"quantum"`
	// AgingThreshold is the wait, in ticks, that earns a one level promotion.
	AgingThreshold int `json:"agingThreshold" yaml:"agingThreshold"`
}

// DefaultConfig returns quanta {1:6, 2:5, 3:4, 4:3, 5:2} and threshold 20.
func DefaultConfig() Config {
	return Config{
		Quantum:        map[int]int{1: 6, 2: 5, 3: 4, 4: 3, 5: 2},
		AgingThreshold: 20,
	}
}

// Validate checks every time-shared level has a positive quantum.
func (c Config) Validate() error {
	for level := process.HighestSharedPriority; level <= process.LowestPriority; level++ {
		if c.Quantum[level] <= 0 {
			return fmt.Errorf("scheduler.quantum[%d] must be > 0", level)
		}
	}
	if c.AgingThreshold <= 0 {
		return fmt.Errorf("scheduler.agingThreshold must be > 0")
	}
	return nil
}
