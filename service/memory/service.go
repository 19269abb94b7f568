package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/viant/procsim/model/process"
)

var (
	// ErrOutOfMemory is returned when no contiguous run of free blocks fits.
	ErrOutOfMemory = errors.New("memory: out of memory")
	// ErrRequestTooLarge is returned when a request exceeds its whole region.
	ErrRequestTooLarge = errors.New("memory: request larger than region")
	// ErrInvalidSize is returned for non positive requests.
	ErrInvalidSize = errors.New("memory: invalid size")
)

// Region is a half open block range [Start, End).
type Region struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Size returns the number of blocks in the region.
func (r Region) Size() int { return r.End - r.Start }

// Usage summarises block occupancy of a region.
type Usage struct {
	Region Region `json:"region" yaml:"region"`
	Used   int    `json:"used" yaml:"used"`
	Free   int    `json:"free" yaml:"free"`
}

// Service is a contiguous first-fit block allocator. It never compacts.
type Service struct {
	config Config
	blocks []process.PID
	mux    sync.RWMutex
}

// New creates a memory service with every block free.
func New(config Config) *Service {
	ret := &Service{config: config, blocks: make([]process.PID, config.TotalBlocks)}
	for i := range ret.blocks {
		ret.blocks[i] = process.NoPID
	}
	return ret
}

// RealTime returns the region reserved for priority 0 processes.
func (s *Service) RealTime() Region {
	return Region{Start: 0, End: s.config.RealTimeBlocks}
}

// General returns the region shared by every other process.
func (s *Service) General() Region {
	return Region{Start: s.config.RealTimeBlocks, End: s.config.TotalBlocks}
}

func (s *Service) region(realTime bool) Region {
	if realTime {
		return s.RealTime()
	}
	return s.General()
}

// Allocate reserves size contiguous blocks for pid in the selected region and
// returns the offset of the first one. The lowest fitting address wins.
func (s *Service) Allocate(pid process.PID, size int, realTime bool) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	region := s.region(realTime)
	if size > region.Size() {
		return 0, fmt.Errorf("%w: %d > %d", ErrRequestTooLarge, size, region.Size())
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	offset := s.firstFit(region, size)
	if offset < 0 {
		return 0, fmt.Errorf("%w: pid %d needs %d blocks", ErrOutOfMemory, pid, size)
	}
	for i := offset; i < offset+size; i++ {
		s.blocks[i] = pid
	}
	return offset, nil
}

// firstFit scans the region once, restarting the candidate run at every
// occupied block.
func (s *Service) firstFit(region Region, size int) int {
	run := 0
	for i := region.Start; i < region.End; i++ {
		if s.blocks[i] != process.NoPID {
			run = 0
			continue
		}
		run++
		if run == size {
			return i - size + 1
		}
	}
	return -1
}

// Free releases every block owned by pid and returns how many were freed.
func (s *Service) Free(pid process.PID) int {
	s.mux.Lock()
	defer s.mux.Unlock()
	freed := 0
	for i, owner := range s.blocks {
		if owner == pid {
			s.blocks[i] = process.NoPID
			freed++
		}
	}
	return freed
}

// Owner returns the owner of block index, NoPID when free or out of range.
func (s *Service) Owner(index int) process.PID {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if index < 0 || index >= len(s.blocks) {
		return process.NoPID
	}
	return s.blocks[index]
}

// Owned returns the number of blocks held by pid.
func (s *Service) Owned(pid process.PID) int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	count := 0
	for _, owner := range s.blocks {
		if owner == pid {
			count++
		}
	}
	return count
}

// Usage returns occupancy of the real-time and general regions.
func (s *Service) Usage() []Usage {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var ret []Usage
	for _, region := range []Region{s.RealTime(), s.General()} {
		usage := Usage{Region: region}
		for i := region.Start; i < region.End; i++ {
			if s.blocks[i] == process.NoPID {
				usage.Free++
			} else {
				usage.Used++
			}
		}
		ret = append(ret, usage)
	}
	return ret
}

// Blocks returns a copy of the block ownership map.
func (s *Service) Blocks() []process.PID {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return append([]process.PID(nil), s.blocks...)
}
