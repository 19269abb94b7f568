package memory

import "fmt"

// Config defines the memory layout.
type Config struct {
	TotalBlocks    int `json:"totalBlocks" yaml:"totalBlocks"`
	RealTimeBlocks int `json:"realTimeBlocks" yaml:"realTimeBlocks"`
}

// DefaultConfig returns 1024 blocks with the first 64 reserved for real-time
// processes.
func DefaultConfig() Config {
	return Config{TotalBlocks: 1024, RealTimeBlocks: 64}
}

// Validate checks region bounds.
func (c Config) Validate() error {
	if c.TotalBlocks <= 0 {
		return fmt.Errorf("memory.totalBlocks must be > 0")
	}
	if c.RealTimeBlocks <= 0 || c.RealTimeBlocks >= c.TotalBlocks {
		return fmt.Errorf("memory.realTimeBlocks must be within (0, %d)", c.TotalBlocks)
	}
	return nil
}
