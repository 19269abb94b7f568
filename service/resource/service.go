package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/viant/procsim/model/process"
)

var (
	// ErrBusy matches every *BusyError.
	ErrBusy = errors.New("resource: busy")
	// ErrInvalidIndex is returned for a unit index outside the class capacity.
	ErrInvalidIndex = errors.New("resource: invalid unit index")
)

// Kind is a device class.
type Kind int

const (
	Scanner Kind = iota
	Printer
	Modem
	Disk
)

// Kinds lists device classes in acquisition order.
var Kinds = []Kind{Scanner, Printer, Modem, Disk}

func (k Kind) String() string {
	switch k {
	case Scanner:
		return "scanner"
	case Printer:
		return "printer"
	case Modem:
		return "modem"
	case Disk:
		return "disk"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// BusyError reports the first class that had no free unit.
type BusyError struct {
	Kind   Kind
	Holder process.PID
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("resource: %v busy (held by %d)", e.Kind, e.Holder)
}

// Is makes errors.Is(err, ErrBusy) hold.
func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

// Unit identifies a single device unit.
type Unit struct {
	Kind  Kind `json:"kind" yaml:"kind"`
	Index int  `json:"index" yaml:"index"`
}

// Service grants device units to processes. Acquisition is all or nothing.
type Service struct {
	config Config
	units  map[Kind][]process.PID
	mux    sync.RWMutex
}

// New creates a resource service with every unit free.
func New(config Config) *Service {
	ret := &Service{config: config, units: make(map[Kind][]process.PID, len(Kinds))}
	for _, kind := range Kinds {
		holders := make([]process.PID, config.capacity(kind))
		for i := range holders {
			holders[i] = process.NoPID
		}
		ret.units[kind] = holders
	}
	return ret
}

func demanded(devices process.Devices) []Kind {
	var ret []Kind
	if devices.Scanner {
		ret = append(ret, Scanner)
	}
	if devices.Printer {
		ret = append(ret, Printer)
	}
	if devices.Modem {
		ret = append(ret, Modem)
	}
	if devices.Disk {
		ret = append(ret, Disk)
	}
	return ret
}

// Request grants pid one unit of every demanded class. Classes already held by
// pid count as satisfied. When any class has no free unit nothing is granted
// and a *BusyError is returned.
func (s *Service) Request(pid process.PID, devices process.Devices) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var plan []Unit
	for _, kind := range demanded(devices) {
		holders := s.units[kind]
		if indexOf(holders, pid) >= 0 {
			continue
		}
		free := indexOf(holders, process.NoPID)
		if free < 0 {
			return &BusyError{Kind: kind, Holder: holders[0]}
		}
		plan = append(plan, Unit{Kind: kind, Index: free})
	}
	for _, unit := range plan {
		s.units[unit.Kind][unit.Index] = pid
	}
	return nil
}

// Release frees every unit held by pid and returns them.
func (s *Service) Release(pid process.PID) []Unit {
	s.mux.Lock()
	defer s.mux.Unlock()
	var released []Unit
	for _, kind := range Kinds {
		holders := s.units[kind]
		for i, holder := range holders {
			if holder == pid {
				holders[i] = process.NoPID
				released = append(released, Unit{Kind: kind, Index: i})
			}
		}
	}
	return released
}

// ReleaseUnit frees a single unit when it is held by pid. It reports whether
// anything was released.
func (s *Service) ReleaseUnit(pid process.PID, kind Kind, index int) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	holders, ok := s.units[kind]
	if !ok || index < 0 || index >= len(holders) {
		return false, fmt.Errorf("%w: %v[%d]", ErrInvalidIndex, kind, index)
	}
	if holders[index] != pid {
		return false, nil
	}
	holders[index] = process.NoPID
	return true, nil
}

// Holders returns the current holder of every unit of kind.
func (s *Service) Holders(kind Kind) []process.PID {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return append([]process.PID(nil), s.units[kind]...)
}

// Held returns the units held by pid.
func (s *Service) Held(pid process.PID) []Unit {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var ret []Unit
	for _, kind := range Kinds {
		if index := indexOf(s.units[kind], pid); index >= 0 {
			ret = append(ret, Unit{Kind: kind, Index: index})
		}
	}
	return ret
}

// Snapshot returns holders of every class keyed by class name.
func (s *Service) Snapshot() map[string][]process.PID {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make(map[string][]process.PID, len(Kinds))
	for _, kind := range Kinds {
		ret[kind.String()] = append([]process.PID(nil), s.units[kind]...)
	}
	return ret
}

func indexOf(holders []process.PID, pid process.PID) int {
	for i, holder := range holders {
		if holder == pid {
			return i
		}
	}
	return -1
}
