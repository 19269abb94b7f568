package filesystem

import (
	"fmt"

	"github.com/viant/procsim/model/process"
)

// Code selects a file operation.
type Code int

const (
	CreateCode Code = 1
	DeleteCode Code = 2
)

// Segment is a file present on disk before any operation runs.
type Segment struct {
	Name  string `json:"name" yaml:"name"`
	Start int    `json:"start" yaml:"start"`
	Size  int    `json:"size" yaml:"size"`
}

// Operation is a file request issued by a process.
type Operation struct {
	PID  process.PID `json:"pid" yaml:"pid"`
	Code Code        `json:"code" yaml:"code"`
	Name string      `json:"name" yaml:"name"`
	Size int         `json:"size,omitempty" yaml:"size,omitempty"`
	Line int         `json:"-" yaml:"-"`
}

// Declaration is the parsed file-system input.
type Declaration struct {
	TotalBlocks int
	Segments    []*Segment
	Operations  []*Operation
}

// Result is the outcome of one operation.
type Result struct {
	Index     int
	Operation *Operation
	File      *File
	Err       error
}

// Success reports whether the operation was applied.
func (r *Result) Success() bool {
	return r.Err == nil
}

func (r *Result) String() string {
	operation := r.Operation
	if r.Err != nil {
		return fmt.Sprintf("Operation %d => Failure: process %d %v: %v", r.Index, operation.PID, operation.describe(), r.Err)
	}
	if r.File != nil {
		return fmt.Sprintf("Operation %d => Success: process %d created file %v (blocks %d..%d)", r.Index, operation.PID, r.File.Name, r.File.Start, r.File.Start+r.File.Size-1)
	}
	return fmt.Sprintf("Operation %d => Success: process %d deleted file %v", r.Index, operation.PID, operation.Name)
}

func (o *Operation) describe() string {
	switch o.Code {
	case CreateCode:
		return fmt.Sprintf("create %v (%d blocks)", o.Name, o.Size)
	case DeleteCode:
		return fmt.Sprintf("delete %v", o.Name)
	}
	return fmt.Sprintf("code %d on %v", o.Code, o.Name)
}
