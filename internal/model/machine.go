package model

// MachineID stably identifies a physical host.
type MachineID int

// Machine is a physical host in the cluster. All mutation of a Machine's
// committed load happens through the accountant package; Machine itself
// only stores the numbers, it never recomputes them.
type Machine struct {
	ID MachineID

	CPU       CPUType
	Cores     int
	TotalMem  float64 // MiB
	HasGPU    bool
	MIPS      [NumPStates]float64 // MIPS rating indexed by PState
	PowerCost [NumSStates]float64 // watts indexed by SState

	SState SState
	PState PState

	// CommittedMIPS is the sum of MIPS demand of tasks currently mapped to
	// this machine. Mutated only via accountant.Commit/Release/Relocate.
	CommittedMIPS float64
	// CommittedMem is the sum of memory of tasks currently mapped to this
	// machine. Mutated only via accountant.Commit/Release/Relocate.
	CommittedMem float64
	// TaskCount is the number of tasks currently mapped to this machine.
	// Mutated only via accountant.Commit/Release/Relocate.
	TaskCount int

	// VMs attached to this machine, by id. A VM whose attach is still
	// waiting on an S-state transition in flight is not listed here until
	// that attach completes.
	VMs map[VMID]struct{}

	// InMemoryWarning records that a MemoryWarning episode is open for
	// this machine, permitting the transient over-commit invariant
	// exception in the spec's data model section.
	InMemoryWarning bool
}

// NewMachine constructs a Machine with empty VM set and zeroed commitments.
func NewMachine(id MachineID, cpu CPUType, cores int, totalMem float64, hasGPU bool, mips [NumPStates]float64, powerCost [NumSStates]float64) *Machine {
	return &Machine{
		ID:        id,
		CPU:       cpu,
		Cores:     cores,
		TotalMem:  totalMem,
		HasGPU:    hasGPU,
		MIPS:      mips,
		PowerCost: powerCost,
		SState:    S5,
		PState:    P0,
		VMs:       make(map[VMID]struct{}),
	}
}

// Active reports whether the machine is in the only S-state that executes
// tasks.
func (m *Machine) Active() bool {
	return m.SState == S0
}

// Capacity returns the MIPS rating at the machine's current P-state.
func (m *Machine) Capacity() float64 {
	return m.MIPS[m.PState]
}

// FreeMem returns the memory headroom left on the machine. It can be
// transiently negative during a memory-warning episode.
func (m *Machine) FreeMem() float64 {
	return m.TotalMem - m.CommittedMem
}

// AttachVM records that vm is hosted on this machine.
func (m *Machine) AttachVM(vm VMID) {
	m.VMs[vm] = struct{}{}
}

// DetachVM removes vm from this machine's VM set.
func (m *Machine) DetachVM(vm VMID) {
	delete(m.VMs, vm)
}

// Idle reports whether the machine currently has zero committed load and
// zero assigned tasks -- the precondition for powering it down.
func (m *Machine) Idle() bool {
	return m.CommittedMIPS == 0 && m.TaskCount == 0
}
