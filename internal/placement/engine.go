// Package placement implements the five-pass algorithm that maps an
// arriving task onto a VM, creating or waking machines as needed.
package placement

import (
	"sync"

	"github.com/spdfg/cloudsim-eec/internal/accountant"
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
	"github.com/spdfg/cloudsim-eec/internal/simulator"
)

// Logger is the minimal sink the placement engine writes decision traces
// to. Taking an interface here rather than a concrete *logging.Logger
// keeps this package free of a dependency edge back onto internal/logging.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// MigrationGate lets the migration coordinator veto a machine as a
// placement candidate while it is the destination of an in-flight
// migration. A nil gate admits every machine.
type MigrationGate interface {
	IsMigrationDestination(m model.MachineID) bool
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a decision-trace sink.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMigrationGate attaches the veto used by Pass A/B/C/D to skip
// machines currently serving as a migration destination.
func WithMigrationGate(g MigrationGate) Option {
	return func(e *Engine) { e.gate = g }
}

// Engine runs the five-pass placement algorithm against a shared
// Inventory and Accountant.
type Engine struct {
	inv *inventory.Inventory
	acc *accountant.Accountant
	sim simulator.Simulator
	log Logger
	gate MigrationGate

	mu      sync.Mutex
	pending []PendingAttachment

	passes []func(*Engine, model.Task) bool
}

// New constructs a placement Engine over the given collaborators.
func New(inv *inventory.Inventory, acc *accountant.Accountant, sim simulator.Simulator, opts ...Option) *Engine {
	e := &Engine{
		inv: inv,
		acc: acc,
		sim: sim,
		log: noopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.passes = []func(*Engine, model.Task) bool{
		(*Engine).passA,
		(*Engine).passB,
		(*Engine).passC,
		(*Engine).passD,
		(*Engine).passE,
	}
	return e
}

// Place runs the arriving task through the ordered pass chain, stopping at
// the first pass that succeeds.
func (e *Engine) Place(t model.Task) {
	for _, pass := range e.passes {
		if pass(e, t) {
			return
		}
	}
	e.log.Infof("task %d: no VM on a compatible machine, task dropped", t.ID)
}

// candidates returns machines ascending by utilisation key, filtering out
// any currently serving as a migration destination.
func (e *Engine) candidates() []*model.Machine {
	all := e.inv.MachinesByUtilisationAscending(accountant.UtilisationKey)
	if e.gate == nil {
		return all
	}
	out := make([]*model.Machine, 0, len(all))
	for _, m := range all {
		if !e.gate.IsMigrationDestination(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

func fitsCapacity(m *model.Machine, t model.Task, demand float64) bool {
	if m.CommittedMIPS+demand > m.Capacity() {
		return false
	}
	if m.FreeMem() < t.RequiredMemory {
		return false
	}
	if t.GPUAffinity && !m.HasGPU {
		return false
	}
	return true
}

// assign commits load and issues the down-calls to add t to vm on m.
func (e *Engine) assign(m *model.Machine, vm *model.VM, t model.Task, demand float64) {
	e.acc.Commit(m, t.ID, demand, t.RequiredMemory)
	vm.AddTask(t.ID)
	if err := e.sim.VMAddTask(vm.ID, t.ID, t.Priority()); err != nil {
		e.log.Infof("task %d: VMAddTask(vm=%d) reported %v", t.ID, vm.ID, err)
	}
}

// passA -- existing VM, exact guest-OS fit.
func (e *Engine) passA(t model.Task) bool {
	demand := accountant.TaskMIPSDemand(t)
	for _, m := range e.candidates() {
		if m.CPU != t.RequiredCPU || !m.Active() {
			continue
		}
		for _, vm := range e.inv.VMsOnHostWithGuestOS(m.ID, t.RequiredGuestOS) {
			if !vm.AcceptsNewTasks() {
				continue
			}
			if !fitsCapacity(m, t, demand) {
				continue
			}
			e.assign(m, vm, t, demand)
			e.log.Debugf("task %d: pass A placed on vm %d (machine %d)", t.ID, vm.ID, m.ID)
			return true
		}
	}
	return false
}

// requiredGuestOSInUse reports whether any VM anywhere already runs the
// task's required guest OS, the gating condition Pass B relaxes its match
// under.
func (e *Engine) requiredGuestOSInUse(os model.GuestOS) bool {
	for _, m := range e.inv.Machines() {
		for _, vm := range e.inv.VMsOnHost(m.ID) {
			if vm.GuestOS == os {
				return true
			}
		}
	}
	return false
}

// passB -- existing VM, CPU-only fit: accepts any attached non-migrating
// VM on a CPU-compatible machine regardless of guest OS, but only once the
// task's required guest OS is already running somewhere in the cluster
// (so Pass C/D remain the only way to introduce a brand-new guest OS).
func (e *Engine) passB(t model.Task) bool {
	if !e.requiredGuestOSInUse(t.RequiredGuestOS) {
		return false
	}
	demand := accountant.TaskMIPSDemand(t)
	for _, m := range e.candidates() {
		if m.CPU != t.RequiredCPU || !m.Active() {
			continue
		}
		for _, vm := range e.inv.VMsOnHost(m.ID) {
			if !vm.AcceptsNewTasks() {
				continue
			}
			if !fitsCapacity(m, t, demand) {
				continue
			}
			e.assign(m, vm, t, demand)
			e.log.Debugf("task %d: pass B placed on vm %d (machine %d, guest %s)", t.ID, vm.ID, m.ID, vm.GuestOS)
			return true
		}
	}
	return false
}

// passC -- create a new VM of the required guest OS on a ready machine.
func (e *Engine) passC(t model.Task) bool {
	demand := accountant.TaskMIPSDemand(t)
	for _, m := range e.candidates() {
		if m.CPU != t.RequiredCPU || !m.Active() {
			continue
		}
		if !fitsCapacity(m, t, demand) {
			continue
		}
		vmID := e.sim.VMCreate(t.RequiredGuestOS, t.RequiredCPU)
		vm := model.NewVM(vmID, t.RequiredGuestOS, t.RequiredCPU)
		e.inv.AddVM(vm)
		if err := e.sim.VMAttach(vmID, m.ID); err != nil {
			e.log.Infof("task %d: pass C VMAttach(vm=%d, machine=%d) failed: %v", t.ID, vmID, m.ID, err)
			continue
		}
		if err := e.inv.Attach(vmID, m.ID); err != nil {
			e.log.Infof("task %d: pass C inventory attach desynced: %v", t.ID, err)
			continue
		}
		e.assign(m, vm, t, demand)
		e.log.Debugf("task %d: pass C created vm %d on machine %d", t.ID, vmID, m.ID)
		return true
	}
	return false
}

// passD -- wake a sleeping machine and create its VM, deferring the attach
// and add-task until StateChangeComplete confirms the machine reached S0.
func (e *Engine) passD(t model.Task) bool {
	demand := accountant.TaskMIPSDemand(t)
	for _, m := range e.candidates() {
		if m.CPU != t.RequiredCPU {
			continue
		}
		if m.Active() {
			continue // Pass C handles active machines
		}
		if t.GPUAffinity && !m.HasGPU {
			continue
		}
		if m.FreeMem() < t.RequiredMemory {
			continue
		}

		vmID := e.sim.VMCreate(t.RequiredGuestOS, t.RequiredCPU)
		vm := model.NewVM(vmID, t.RequiredGuestOS, t.RequiredCPU)
		e.inv.AddVM(vm)

		e.sim.MachineSetState(m.ID, model.S0)

		e.addPending(PendingAttachment{
			VM:       vmID,
			Machine:  m.ID,
			Task:     t.ID,
			Priority: t.Priority(),
			Demand:   demand,
			Memory:   t.RequiredMemory,
		})
		e.log.Debugf("task %d: pass D woke machine %d for new vm %d", t.ID, m.ID, vmID)
		return true
	}
	return false
}

// passE -- last resort: place on the first VM of the lowest-id machine whose
// CPU matches the task (and that has a GPU, if the task asks for one),
// regardless of fit, accepting the resulting SLA violation rather than drop
// the task.
func (e *Engine) passE(t model.Task) bool {
	for _, m := range e.inv.Machines() {
		if m.CPU != t.RequiredCPU || (t.GPUAffinity && !m.HasGPU) {
			continue
		}
		vms := e.inv.VMsOnHost(m.ID)
		if len(vms) == 0 {
			continue
		}
		vm := vms[0]
		demand := accountant.TaskMIPSDemand(t)
		e.assign(m, vm, t, demand)
		e.log.Infof("task %d: pass E last-resort placement on vm %d (machine %d), fit not guaranteed", t.ID, vm.ID, m.ID)
		return true
	}
	return false
}

func (e *Engine) addPending(p PendingAttachment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, p)
}

// DrainPending removes and returns every pending attachment waiting on
// machine m, leaving attachments for other machines untouched.
func (e *Engine) DrainPending(m model.MachineID) []PendingAttachment {
	e.mu.Lock()
	defer e.mu.Unlock()

	var drained []PendingAttachment
	var kept []PendingAttachment
	for _, p := range e.pending {
		if p.Machine == m {
			drained = append(drained, p)
		} else {
			kept = append(kept, p)
		}
	}
	e.pending = kept
	return drained
}

// HasPendingFor reports whether a machine holds outstanding pending
// attachments, used by the consolidator to refuse S5 for a machine that
// still has one in flight.
func (e *Engine) HasPendingFor(m model.MachineID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.pending {
		if p.Machine == m {
			return true
		}
	}
	return false
}

// CompleteAttachment finishes a drained pending attachment once its
// machine has reached S0: attaches the VM, adds the task, and commits
// load. Called by the engine from StateChangeComplete.
func (e *Engine) CompleteAttachment(p PendingAttachment) error {
	if err := e.sim.VMAttach(p.VM, p.Machine); err != nil {
		return err
	}
	if err := e.inv.Attach(p.VM, p.Machine); err != nil {
		return err
	}
	m, ok := e.inv.Machine(p.Machine)
	if !ok {
		return nil
	}
	vm, ok := e.inv.VM(p.VM)
	if !ok {
		return nil
	}
	e.acc.Commit(m, p.Task, p.Demand, p.Memory)
	vm.AddTask(p.Task)
	return e.sim.VMAddTask(p.VM, p.Task, p.Priority)
}
