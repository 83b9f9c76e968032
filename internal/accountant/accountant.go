// Package accountant is the single source of truth for machine and VM
// load: committed MIPS, committed memory, and the task->machine map that
// cross-checks every commit against a matching release.
package accountant

import (
	"sync"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// Accountant tracks committed load and the authoritative task->machine
// mapping. Mutators are idempotent relative to that mapping: committing
// the same task twice without an intervening release is a no-op beyond
// the first call, and releasing a task that was never committed is a
// no-op.
type Accountant struct {
	mu sync.Mutex

	// location is the authoritative (task -> machine) map. Every commit
	// adds an entry here; every release removes it.
	location map[model.TaskID]model.MachineID

	// demand/memory committed per task, remembered so release can clamp
	// correctly even if the caller's accounting of the task's numbers
	// has drifted.
	demand map[model.TaskID]float64
	memory map[model.TaskID]float64

	history *ResponseTimeTracker
}

// New constructs an empty Accountant.
func New() *Accountant {
	return &Accountant{
		location: make(map[model.TaskID]model.MachineID),
		demand:   make(map[model.TaskID]float64),
		memory:   make(map[model.TaskID]float64),
		history:  NewResponseTimeTracker(32),
	}
}

// MachineMIPSCapacity returns the MIPS rating at the machine's current
// P-state.
func MachineMIPSCapacity(m *model.Machine) float64 {
	return m.Capacity()
}

// MachineCPUUtilisation returns committed_MIPS(m) / capacity(m), clamped
// to [0,1].
func MachineCPUUtilisation(m *model.Machine) float64 {
	cap := MachineMIPSCapacity(m)
	if cap <= 0 {
		return 1
	}
	u := m.CommittedMIPS / cap
	return clamp01(u)
}

// MachineMemoryUtilisation returns committed_memory(m) / total_memory(m).
func MachineMemoryUtilisation(m *model.Machine) float64 {
	if m.TotalMem <= 0 {
		return 1
	}
	return clamp01(m.CommittedMem / m.TotalMem)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// UtilisationKey is max(cpu_util, mem_util), the ranking metric the
// placement engine and consolidator both sort machines by.
func UtilisationKey(m *model.Machine) float64 {
	cpu := MachineCPUUtilisation(m)
	mem := MachineMemoryUtilisation(m)
	if cpu > mem {
		return cpu
	}
	return mem
}

// TaskMIPSDemand returns total_instructions(t) x 1e-6 / window_seconds,
// where window is t.DemandWindow() (already floored to 1us by the model
// package when the completion deadline has already passed).
func TaskMIPSDemand(t model.Task) float64 {
	windowMicros := float64(t.DemandWindow())
	windowSeconds := windowMicros / 1e6
	if windowSeconds <= 0 {
		windowSeconds = 1e-6
	}
	return float64(t.TotalInstructions) * 1e-6 / windowSeconds
}

// Commit adds demand/memory for task t against machine m, recording
// (t -> m) in the authoritative map. Idempotent: committing the same task
// again before a release is a no-op.
func (a *Accountant) Commit(m *model.Machine, t model.TaskID, demand, memory float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, already := a.location[t]; already {
		return
	}

	m.CommittedMIPS += demand
	m.CommittedMem += memory
	m.TaskCount++

	a.location[t] = m.ID
	a.demand[t] = demand
	a.memory[t] = memory
}

// Release undoes a prior Commit for task t against machine m, clamping
// committed totals at zero. Idempotent: releasing a task not currently
// committed is a no-op.
func (a *Accountant) Release(m *model.Machine, t model.TaskID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	loc, ok := a.location[t]
	if !ok || loc != m.ID {
		return
	}

	m.CommittedMIPS -= a.demand[t]
	if m.CommittedMIPS < 0 {
		m.CommittedMIPS = 0
	}
	m.CommittedMem -= a.memory[t]
	if m.CommittedMem < 0 {
		m.CommittedMem = 0
	}
	m.TaskCount--
	if m.TaskCount < 0 {
		m.TaskCount = 0
	}

	delete(a.location, t)
	delete(a.demand, t)
	delete(a.memory, t)
}

// Relocate moves an in-flight task's committed load from src to dst
// without changing the aggregate cluster-wide total, used when a VM
// migrates while hosting active tasks.
func (a *Accountant) Relocate(src, dst *model.Machine, t model.TaskID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	loc, ok := a.location[t]
	if !ok || loc != src.ID {
		return
	}

	d := a.demand[t]
	mem := a.memory[t]

	src.CommittedMIPS -= d
	if src.CommittedMIPS < 0 {
		src.CommittedMIPS = 0
	}
	src.CommittedMem -= mem
	if src.CommittedMem < 0 {
		src.CommittedMem = 0
	}

	dst.CommittedMIPS += d
	dst.CommittedMem += mem

	src.TaskCount--
	if src.TaskCount < 0 {
		src.TaskCount = 0
	}
	dst.TaskCount++

	a.location[t] = dst.ID
}

// Location returns the machine a task is currently committed against.
func (a *Accountant) Location(t model.TaskID) (model.MachineID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.location[t]
	return m, ok
}

// CommittedDemand returns the demand most recently committed for a task,
// used by callers that need to re-derive a value already known to the
// accountant (e.g. migration, which must move the exact committed figure,
// not a freshly recomputed one that may have drifted).
func (a *Accountant) CommittedDemand(t model.TaskID) (float64, float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.demand[t]
	if !ok {
		return 0, 0, false
	}
	return d, a.memory[t], true
}

// RecordSojourn feeds a completed task's sojourn time (completion - arrival)
// into the VM's rolling response-time history.
func (a *Accountant) RecordSojourn(vm model.VMID, sojournMicros float64) {
	a.history.Record(vm, sojournMicros)
}

// ResponseTimeSlope returns the rolling linear-regression slope of a VM's
// recent response times, and false if there is not yet enough history to
// compute one. Used only by the optional predictive P-state behaviour
// (spec Design Note 9(c)); no invariant depends on this being available.
func (a *Accountant) ResponseTimeSlope(vm model.VMID) (float64, bool) {
	return a.history.Slope(vm)
}
