package model

// TaskID stably identifies a task.
type TaskID int

// Time is the simulator's monotonic clock, expressed in microseconds --
// the same unit the reference simulator uses for Time_t.
type Time int64

// Task is a read-only unit of work handed to the scheduler exactly once.
// The scheduler never mutates a Task; it tracks where a task currently
// runs via the accountant's task->machine map, keyed by ID.
type Task struct {
	ID TaskID

	TotalInstructions uint64
	Arrival           Time
	TargetCompletion  Time

	RequiredCPU     CPUType
	RequiredGuestOS GuestOS
	RequiredMemory  float64 // MiB
	GPUAffinity     bool

	SLA SLAClass
}

// Priority derives this task's scheduling priority from its SLA class.
func (t Task) Priority() Priority {
	return PriorityFor(t.SLA)
}

// minDemandWindow is the 1 microsecond floor substituted for a
// non-positive (target_completion - arrival) window, so that demand never
// computes to infinity.
const minDemandWindow Time = 1

// DemandWindow returns the time budget used to compute MIPS demand,
// guarded against a zero or negative window.
func (t Task) DemandWindow() Time {
	window := t.TargetCompletion - t.Arrival
	if window <= 0 {
		return minDemandWindow
	}
	return window
}
