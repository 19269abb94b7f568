package resource

import "fmt"

// Config defines the number of units per device class.
type Config struct {
	Scanners int `json:"scanners" yaml:"scanners"`
	Printers int `json:"printers" yaml:"printers"`
	Modems   int `json:"modems" yaml:"modems"`
	Disks    int `json:"disks" yaml:"disks"`
}

// DefaultConfig returns one scanner, two printers, one modem and three SATA
// channels.
func DefaultConfig() Config {
	return Config{Scanners: 1, Printers: 2, Modems: 1, Disks: 3}
}

func (c Config) capacity(kind Kind) int {
	switch kind {
	case Scanner:
		return c.Scanners
	case Printer:
		return c.Printers
	case Modem:
		return c.Modems
	case Disk:
		return c.Disks
	}
	return 0
}

// Validate checks every class has at least one unit.
func (c Config) Validate() error {
	for _, kind := range Kinds {
		if c.capacity(kind) <= 0 {
			return fmt.Errorf("resources.%vs must be > 0", kind)
		}
	}
	return nil
}
