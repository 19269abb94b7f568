package manager

import (
	"fmt"
	"sort"

	"github.com/viant/procsim/model/process"
)

// DefaultCapacity is the default number of process table slots.
const DefaultCapacity = 100

// Table is a fixed capacity arena of control blocks. Free slots are kept on
// an explicit free list; PIDs map to slots through an index.
type Table struct {
	slots []*process.PCB
	free  []int
	index map[process.PID]int
}

// NewTable creates a table with capacity slots.
func NewTable(capacity int) *Table {
	ret := &Table{
		slots: make([]*process.PCB, capacity),
		free:  make([]int, 0, capacity),
		index: make(map[process.PID]int, capacity),
	}
	for slot := capacity - 1; slot >= 0; slot-- {
		ret.free = append(ret.free, slot)
	}
	return ret
}

// Insert places pcb in the first free slot and returns the slot index.
func (t *Table) Insert(pcb *process.PCB) (int, error) {
	if _, ok := t.index[pcb.PID]; ok {
		return 0, fmt.Errorf("manager: pid %d already in table", pcb.PID)
	}
	if len(t.free) == 0 {
		return 0, fmt.Errorf("%w: capacity %d", ErrTableFull, len(t.slots))
	}
	slot := t.free[len(t.free)-1]
	t.free = t.free[:len(t.free)-1]
	t.slots[slot] = pcb
	t.index[pcb.PID] = slot
	return slot, nil
}

// Remove frees the slot held by pid.
func (t *Table) Remove(pid process.PID) (*process.PCB, error) {
	slot, ok := t.index[pid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProcessNotFound, pid)
	}
	pcb := t.slots[slot]
	t.slots[slot] = nil
	delete(t.index, pid)
	t.free = append(t.free, slot)
	return pcb, nil
}

// Lookup returns the control block of pid.
func (t *Table) Lookup(pid process.PID) (*process.PCB, error) {
	slot, ok := t.index[pid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProcessNotFound, pid)
	}
	return t.slots[slot], nil
}

// Slot returns the slot index of pid, -1 when absent.
func (t *Table) Slot(pid process.PID) int {
	if slot, ok := t.index[pid]; ok {
		return slot
	}
	return -1
}

func (t *Table) Len() int   { return len(t.index) }
func (t *Table) Cap() int   { return len(t.slots) }
func (t *Table) Full() bool { return len(t.free) == 0 }

// All returns live control blocks ordered by PID.
func (t *Table) All() []*process.PCB {
	ret := make([]*process.PCB, 0, len(t.index))
	for _, slot := range t.index {
		ret = append(ret, t.slots[slot])
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].PID < ret[j].PID })
	return ret
}
