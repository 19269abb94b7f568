package arrival

import (
	"sort"

	"github.com/viant/procsim/model/process"
)

// Descriptor declares a process to be created at CreatedAt.
type Descriptor struct {
	CreatedAt     int  `json:"createdAt" yaml:"createdAt"`
	Priority      int  `json:"priority" yaml:"priority"`
	ExecutionTime int  `json:"executionTime" yaml:"executionTime"`
	MemoryNeeded  int  `json:"memoryNeeded" yaml:"memoryNeeded"`
	Printer       bool `json:"printer,omitempty" yaml:"printer,omitempty"`
	Scanner       bool `json:"scanner,omitempty" yaml:"scanner,omitempty"`
	Modem         bool `json:"modem,omitempty" yaml:"modem,omitempty"`
	Disk          bool `json:"disk,omitempty" yaml:"disk,omitempty"`
	Line          int  `json:"-" yaml:"-"`
}

// Devices returns the device demand.
func (d *Descriptor) Devices() process.Devices {
	return process.Devices{Printer: d.Printer, Scanner: d.Scanner, Modem: d.Modem, Disk: d.Disk}
}

// Feed orders arrivals by creation time and hands out the ones that are due.
type Feed struct {
	items   []*Descriptor
	fetched int
}

// NewFeed creates a feed holding descriptors.
func NewFeed(descriptors ...*Descriptor) *Feed {
	ret := &Feed{}
	for _, descriptor := range descriptors {
		ret.Append(descriptor)
	}
	return ret
}

// Append inserts descriptor after every unfetched item created at or before
// it, so equal timestamps keep insertion order.
func (f *Feed) Append(descriptor *Descriptor) {
	unfetched := f.items[f.fetched:]
	pos := sort.Search(len(unfetched), func(i int) bool {
		return unfetched[i].CreatedAt > descriptor.CreatedAt
	}) + f.fetched
	f.items = append(f.items, nil)
	copy(f.items[pos+1:], f.items[pos:])
	f.items[pos] = descriptor
}

// FetchUntil returns every unfetched descriptor created at or before tick.
func (f *Feed) FetchUntil(tick int) []*Descriptor {
	start := f.fetched
	for f.fetched < len(f.items) && f.items[f.fetched].CreatedAt <= tick {
		f.fetched++
	}
	return f.items[start:f.fetched]
}

// Done reports whether every descriptor was fetched.
func (f *Feed) Done() bool {
	return f.fetched >= len(f.items)
}

// Pending returns the number of unfetched descriptors.
func (f *Feed) Pending() int {
	return len(f.items) - f.fetched
}

// Len returns the number of descriptors ever appended.
func (f *Feed) Len() int {
	return len(f.items)
}

// Next returns the creation time of the next unfetched descriptor.
func (f *Feed) Next() (int, bool) {
	if f.Done() {
		return 0, false
	}
	return f.items[f.fetched].CreatedAt, true
}
