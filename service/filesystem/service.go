package filesystem

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/viant/procsim/model/process"
)

var (
	ErrUnknownProcess   = errors.New("filesystem: unknown process")
	ErrFileExists       = errors.New("filesystem: file already exists")
	ErrFileNotFound     = errors.New("filesystem: file not found")
	ErrInvalidSize      = errors.New("filesystem: invalid size")
	ErrNoSpace          = errors.New("filesystem: no contiguous space")
	ErrPermissionDenied = errors.New("filesystem: permission denied")
	ErrSegmentConflict  = errors.New("filesystem: segment overlaps existing file")
	ErrOutOfRange       = errors.New("filesystem: segment out of disk range")
)

// Processes tells the file system which processes exist and which of them
// are real-time.
type Processes interface {
	Known(pid process.PID) bool
	RealTime(pid process.PID) bool
}

// File is a contiguous run of disk blocks.
type File struct {
	Name  string      `json:"name" yaml:"name"`
	Owner process.PID `json:"owner" yaml:"owner"`
	Start int         `json:"start" yaml:"start"`
	Size  int         `json:"size" yaml:"size"`
}

// Option customises the file system.
type Option func(s *Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service is a disk with contiguous first-fit file allocation.
type Service struct {
	blocks    []string
	files     map[string]*File
	processes Processes
	logger    *slog.Logger
}

// Load places pre-existing files. They belong to no process.
func (s *Service) Load(segments []*Segment) error {
	for _, segment := range segments {
		if _, ok := s.files[segment.Name]; ok {
			return fmt.Errorf("%w: %v", ErrFileExists, segment.Name)
		}
		if segment.Size <= 0 || segment.Start < 0 || segment.Start+segment.Size > len(s.blocks) {
			return fmt.Errorf("%w: %v [%d,%d)", ErrOutOfRange, segment.Name, segment.Start, segment.Start+segment.Size)
		}
		for i := segment.Start; i < segment.Start+segment.Size; i++ {
			if s.blocks[i] != "" {
				return fmt.Errorf("%w: %v at block %d held by %v", ErrSegmentConflict, segment.Name, i, s.blocks[i])
			}
		}
		s.place(&File{Name: segment.Name, Owner: process.NoPID, Start: segment.Start, Size: segment.Size})
	}
	return nil
}

func (s *Service) place(file *File) {
	for i := file.Start; i < file.Start+file.Size; i++ {
		s.blocks[i] = file.Name
	}
	s.files[file.Name] = file
}

// Create allocates size contiguous blocks for a new file owned by pid.
func (s *Service) Create(pid process.PID, name string, size int) (*File, error) {
	if !s.processes.Known(pid) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if _, ok := s.files[name]; ok {
		return nil, fmt.Errorf("%w: %v", ErrFileExists, name)
	}
	start := s.firstFit(size)
	if start < 0 {
		return nil, fmt.Errorf("%w: %v needs %d blocks", ErrNoSpace, name, size)
	}
	file := &File{Name: name, Owner: pid, Start: start, Size: size}
	s.place(file)
	s.logger.Debug("file created", "pid", pid, "file", name, "start", start, "size", size)
	return file, nil
}

func (s *Service) firstFit(size int) int {
	run := 0
	for i, holder := range s.blocks {
		if holder != "" {
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

// Delete removes a file. Real-time processes may delete any file, others
// only their own.
func (s *Service) Delete(pid process.PID, name string) error {
	if !s.processes.Known(pid) {
		return fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	file, ok := s.files[name]
	if !ok {
		return fmt.Errorf("%w: %v", ErrFileNotFound, name)
	}
	if !s.processes.RealTime(pid) && file.Owner != pid {
		return fmt.Errorf("%w: process %d cannot delete %v", ErrPermissionDenied, pid, name)
	}
	for i := file.Start; i < file.Start+file.Size; i++ {
		s.blocks[i] = ""
	}
	delete(s.files, name)
	s.logger.Debug("file deleted", "pid", pid, "file", name)
	return nil
}

// Execute applies operations in order and reports each outcome.
func (s *Service) Execute(operations []*Operation) []*Result {
	ret := make([]*Result, 0, len(operations))
	for i, operation := range operations {
		result := &Result{Index: i + 1, Operation: operation}
		switch operation.Code {
		case CreateCode:
			result.File, result.Err = s.Create(operation.PID, operation.Name, operation.Size)
		case DeleteCode:
			result.Err = s.Delete(operation.PID, operation.Name)
		default:
			result.Err = fmt.Errorf("filesystem: unsupported operation code %d", operation.Code)
		}
		ret = append(ret, result)
	}
	return ret
}

// DiskMap returns block occupancy, "0" marking a free block.
func (s *Service) DiskMap() []string {
	ret := make([]string, len(s.blocks))
	for i, holder := range s.blocks {
		if holder == "" {
			holder = "0"
		}
		ret[i] = holder
	}
	return ret
}

// Files returns every file ordered by start block.
func (s *Service) Files() []*File {
	ret := make([]*File, 0, len(s.files))
	for _, file := range s.files {
		ret = append(ret, file)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Start < ret[j].Start })
	return ret
}

// New creates an empty disk of totalBlocks blocks.
func New(totalBlocks int, processes Processes, opts ...Option) *Service {
	ret := &Service{
		blocks:    make([]string, totalBlocks),
		files:     make(map[string]*File),
		processes: processes,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
