// Package engine wires the Inventory, Accountant, Placement Engine,
// Consolidator, Migration Coordinator, and power Ledger behind a single
// Event Adapter -- the simulator-facing up-call implementer. The Adapter
// registers machines and VMs in the inventory at Init, releases a finished
// task's load from the accountant and its VM, and records completed S-state
// changes on the machine; every other decision is delegated to the
// component that owns the concern.
package engine

import (
	"github.com/spdfg/cloudsim-eec/internal/accountant"
	"github.com/spdfg/cloudsim-eec/internal/consolidate"
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/migration"
	"github.com/spdfg/cloudsim-eec/internal/model"
	"github.com/spdfg/cloudsim-eec/internal/placement"
	"github.com/spdfg/cloudsim-eec/internal/power"
	"github.com/spdfg/cloudsim-eec/internal/simulator"
	"github.com/spdfg/cloudsim-eec/internal/validation"
)

// Logger is the minimal sink the Adapter writes entry/exit traces to, the
// same reduced surface placement, consolidate and migration depend on so
// one concrete *logging.Logger satisfies all four.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}

// Report is the final SLA/energy summary printed on SimulationComplete.
type Report struct {
	SLA0OnTime  float64
	SLA1OnTime  float64
	SLA2OnTime  float64
	EnergyKWh   float64
	LocalKWh    float64
	WallSeconds float64
}

// Adapter is the single implementer of the simulator-facing up-call
// interface. It holds handles to every collaborating component and to the
// Simulator down-call boundary itself.
type Adapter struct {
	inv *inventory.Inventory
	acc *accountant.Accountant
	sim simulator.Simulator
	log Logger

	placement    *placement.Engine
	consolidator consolidate.Strategy
	migration    *migration.Coordinator
	power        *power.Ledger

	predictiveTrace bool
}

// Option configures an Adapter at construction time.
type Option func(*Adapter)

// WithLogger attaches the Adapter's entry/exit trace sink.
func WithLogger(l Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithPredictiveTrace enables the opt-in predictive early-warning hook:
// once a task completes, the Adapter checks its VM's rolling response-time
// slope and logs a trace line when it is consistently positive. Disabled
// by default; no invariant depends on it being enabled.
func WithPredictiveTrace() Option {
	return func(a *Adapter) { a.predictiveTrace = true }
}

// New assembles an Adapter over already-constructed collaborators. The
// caller wires placement's MigrationGate and consolidate's pendingGate to
// migration and placement respectively before calling New.
func New(inv *inventory.Inventory, acc *accountant.Accountant, sim simulator.Simulator,
	p *placement.Engine, c consolidate.Strategy, m *migration.Coordinator, ledger *power.Ledger,
	opts ...Option) *Adapter {
	a := &Adapter{
		inv:          inv,
		acc:          acc,
		sim:          sim,
		log:          noopLogger{},
		placement:    p,
		consolidator: c,
		migration:    m,
		power:        ledger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// requiredGuestOSesFor lists the guest operating systems Init must ensure
// at least one VM of, per machine architecture: LINUX and LINUX_RT on
// every architecture, plus WIN on X86/ARM and AIX on POWER.
func requiredGuestOSesFor(cpu model.CPUType) []model.GuestOS {
	oses := []model.GuestOS{model.LINUX, model.LINUX_RT}
	switch cpu {
	case model.X86, model.ARM:
		oses = append(oses, model.WIN)
	case model.POWER:
		oses = append(oses, model.AIX)
	}
	return oses
}

// Init discovers every machine the simulator reports, registers it in the
// Inventory, and -- for every machine the simulator already reports as
// active -- creates and attaches one VM per required guest OS. Machines
// the simulator reports outside S0 (the off/intermediate tiers) are left
// without VMs; the Consolidator creates them lazily on promotion.
func (a *Adapter) Init() {
	total := a.sim.MachineGetTotal()
	a.log.Infof("init: discovering %d machines", total)

	for i := 0; i < total; i++ {
		id := model.MachineID(i)
		snap := a.sim.MachineGetInfo(id)

		m := model.NewMachine(snap.ID, snap.CPU, snap.Cores, snap.TotalMem, snap.HasGPU, snap.MIPS, snap.PowerCost)
		m.SState = snap.SState
		m.PState = snap.PState
		a.inv.AddMachine(m)

		if !m.Active() {
			continue
		}
		for _, os := range requiredGuestOSesFor(m.CPU) {
			a.createInitialVM(m, os)
		}
	}
}

func (a *Adapter) createInitialVM(m *model.Machine, os model.GuestOS) {
	vmID := a.sim.VMCreate(os, m.CPU)
	vm := model.NewVM(vmID, os, m.CPU)
	a.inv.AddVM(vm)

	if err := a.sim.VMAttach(vmID, m.ID); err != nil {
		a.log.Infof("init: VMAttach(vm=%d, machine=%d) failed: %v", vmID, m.ID, err)
		return
	}
	if err := a.inv.Attach(vmID, m.ID); err != nil {
		a.log.Infof("init: inventory attach desynced for vm %d: %v", vmID, err)
	}
}

// NewTask validates an arriving task's guest-OS/CPU/memory request before
// handing it to the Placement Engine; a task that fails validation is
// dropped rather than placed, since no pass can create a VM the task
// itself could never run.
func (a *Adapter) NewTask(t model.Task) {
	err := validation.Validate("invalid task definition",
		validation.ValidatorForTask(t,
			validation.WithGuestOSValidator(),
			validation.WithMemoryValidator(),
		),
	)
	if err != nil {
		a.log.Infof("new task %d rejected: %v", t.ID, err)
		return
	}
	a.log.Debugf("new task %d arrived at %d", t.ID, t.Arrival)
	a.placement.Place(t)
}

// TaskComplete releases a finished task's committed load, detaches it from
// its hosting VM, records its sojourn time, and hands the now-possibly-idle
// machine to the Consolidator.
func (a *Adapter) TaskComplete(now model.Time, id model.TaskID) {
	loc, ok := a.acc.Location(id)
	if !ok {
		a.log.Infof("task complete %d: no committed location, ignoring", id)
		return
	}
	m, ok := a.inv.Machine(loc)
	if !ok {
		return
	}

	var vm *model.VM
	for _, candidate := range a.inv.VMsOnHost(loc) {
		if _, hosted := candidate.ActiveTasks[id]; hosted {
			vm = candidate
			break
		}
	}

	a.acc.Release(m, id)
	if vm != nil {
		vm.RemoveTask(id)
		if err := a.sim.VMRemoveTask(vm.ID, id); err != nil {
			a.log.Infof("task complete %d: VMRemoveTask(vm=%d) reported %v", id, vm.ID, err)
		}
		task := a.sim.TaskInfo(id)
		a.acc.RecordSojourn(vm.ID, float64(now-task.Arrival))
		if a.predictiveTrace {
			if slope, ok := a.acc.ResponseTimeSlope(vm.ID); ok && slope > 0 {
				a.log.Infof("predictive: vm %d response times trending up (slope=%.4f)", vm.ID, slope)
			}
		}
	}

	a.log.Debugf("task %d completed on machine %d", id, m.ID)
	if m.Idle() {
		a.consolidator.OnMachineIdle(m.ID)
	}
}

// MemoryWarning forwards a capacity-exceeded signal to the Migration
// Coordinator's escalation path.
func (a *Adapter) MemoryWarning(now model.Time, machine model.MachineID) {
	a.log.Infof("memory warning on machine %d at %d", machine, now)
	a.migration.OnMemoryWarning(machine)
}

// MigrationComplete clears the in-flight flag for vm and moves its host
// index entry now that the simulator has confirmed the migration landed.
func (a *Adapter) MigrationComplete(now model.Time, vm model.VMID) {
	a.log.Debugf("migration complete for vm %d at %d", vm, now)
	a.migration.OnMigrationComplete(vm)
}

// SLAWarning forwards an on-time-risk signal to the Migration Coordinator's
// overload-relief path.
func (a *Adapter) SLAWarning(now model.Time, task model.TaskID) {
	a.log.Infof("sla warning for task %d at %d", task, now)
	a.migration.OnSLAWarning(task)
}

// StateChangeComplete drains and completes every pending attachment queued
// against machine, but only once the machine has actually reached S0;
// attachments queued against a machine that settled somewhere else (or is
// still mid-transition) are left queued.
func (a *Adapter) StateChangeComplete(now model.Time, machine model.MachineID) {
	m, ok := a.inv.Machine(machine)
	if !ok {
		return
	}
	snap := a.sim.MachineGetInfo(machine)
	m.SState = snap.SState
	m.PState = snap.PState
	if !m.Active() {
		a.log.Debugf("state change complete for machine %d: not active yet, pending retained", machine)
		return
	}
	for _, p := range a.placement.DrainPending(machine) {
		if err := a.placement.CompleteAttachment(p); err != nil {
			a.log.Infof("state change complete: attach of vm %d to machine %d failed: %v", p.VM, machine, err)
		}
	}
}

// SchedulerCheck runs the periodic Consolidator and Migration Coordinator
// sweeps, and folds the scheduler's own locally-computed cluster power
// draw into the power Ledger.
func (a *Adapter) SchedulerCheck(now model.Time) {
	a.consolidator.Sweep(now)
	a.migration.Sweep()
	a.power.RecordTick(int64(now), clusterWattsNow(a.inv))
}

// clusterWattsNow sums every machine's power draw at its current S-state,
// the scheduler's own local estimate used to cross-check monotonicity
// against the simulator's authoritative ClusterEnergyKWh figure.
func clusterWattsNow(inv *inventory.Inventory) float64 {
	var total float64
	for _, m := range inv.Machines() {
		total += m.PowerCost[m.SState]
	}
	return total
}

// Shutdown issues VMShutdown for every VM in the inventory and returns the
// final SLA/energy report, pulling SLA percentages and cluster energy from
// the simulator's own accounting.
func (a *Adapter) Shutdown(wallSeconds float64) Report {
	report := Report{
		SLA0OnTime:  a.sim.GetSLAReport(model.SLA0),
		SLA1OnTime:  a.sim.GetSLAReport(model.SLA1),
		SLA2OnTime:  a.sim.GetSLAReport(model.SLA2),
		EnergyKWh:   a.sim.ClusterEnergyKWh(),
		LocalKWh:    a.power.TotalKWh(),
		WallSeconds: wallSeconds,
	}

	for _, m := range a.inv.Machines() {
		for _, vm := range a.inv.VMsOnHost(m.ID) {
			if err := a.sim.VMShutdown(vm.ID); err != nil {
				a.log.Infof("shutdown: VMShutdown(vm=%d) reported %v", vm.ID, err)
			}
		}
		for _, p := range a.placement.DrainPending(m.ID) {
			if err := a.sim.VMShutdown(p.VM); err != nil {
				a.log.Infof("shutdown: VMShutdown(vm=%d) reported %v", p.VM, err)
			}
		}
	}

	a.log.Infof("shutdown complete: sla0=%.2f%% sla1=%.2f%% sla2=%.2f%% energy=%.3fkWh wall=%.1fs",
		report.SLA0OnTime, report.SLA1OnTime, report.SLA2OnTime, report.EnergyKWh, report.WallSeconds)
	return report
}
