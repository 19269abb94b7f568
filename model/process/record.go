package process

// Record is the accounting entry kept for every process that left the table.
type Record struct {
	PID              PID  `json:"pid" yaml:"pid"`
	StartingPriority int  `json:"startingPriority" yaml:"startingPriority"`
	FinalPriority    int  `json:"finalPriority" yaml:"finalPriority"`
	TimeNeeded       int  `json:"timeNeeded" yaml:"timeNeeded"`
	Executed         int  `json:"executed" yaml:"executed"`
	CreatedAt        int  `json:"createdAt" yaml:"createdAt"`
	FirstRunAt       int  `json:"firstRunAt" yaml:"firstRunAt"`
	FinishedAt       int  `json:"finishedAt" yaml:"finishedAt"`
	Dispatches       int  `json:"dispatches" yaml:"dispatches"`
	Preemptions      int  `json:"preemptions" yaml:"preemptions"`
	Rejected         bool `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// Turnaround returns the ticks between creation and termination.
func (r *Record) Turnaround() int {
	return r.FinishedAt - r.CreatedAt
}

// Response returns the ticks between creation and the first dispatch, or -1
// when the process never ran.
func (r *Record) Response() int {
	if r.FirstRunAt < 0 {
		return -1
	}
	return r.FirstRunAt - r.CreatedAt
}

// IsRealTime reports whether the process was created at priority 0.
func (r *Record) IsRealTime() bool {
	return r.StartingPriority == RealTimePriority
}
