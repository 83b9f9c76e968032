// Package localsim is a minimal in-process stand-in for the trace-driven
// simulator process the scheduler normally runs against, used by the
// standalone replay binary (cmd/eec-scheduler) and the engine's scenario
// tests so the Event Adapter has
// something to issue down-calls against outside of a test's hand-written
// fake. It is not a model of the reference simulator's internal physics --
// state transitions and migrations complete after a fixed latency rather
// than a workload-dependent one -- only of the up-call/down-call contract
// the Adapter depends on.
package localsim

import (
	"sort"
	"sync"

	"github.com/spdfg/cloudsim-eec/internal/accountant"
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
)

// Fixed completion latencies for the two genuinely asynchronous down-calls.
const (
	stateChangeLatency model.Time = 2_000_000  // 2s, in microseconds
	migrationLatency   model.Time = 10_000_000 // 10s
)

type pendingStateChange struct {
	at      model.Time
	machine model.MachineID
}

type pendingMigration struct {
	at model.Time
	vm model.VMID
}

// Simulator backs the internal/simulator.Simulator interface with the
// shared Inventory/Accountant the rest of the engine also reads, so that
// MachineGetInfo/TaskInfo reflect exactly what the scheduler itself
// committed -- there is no separate simulator-side copy to keep in sync.
type Simulator struct {
	mu  sync.Mutex
	inv *inventory.Inventory
	acc *accountant.Accountant

	now model.Time

	tasks map[model.TaskID]model.Task

	pendingStates     []pendingStateChange
	pendingMigrations []pendingMigration

	slaTotal  map[model.SLAClass]int
	slaOnTime map[model.SLAClass]int

	energyKWh float64
}

// New constructs a Simulator over the scheduler's own Inventory and
// Accountant.
func New(inv *inventory.Inventory, acc *accountant.Accountant) *Simulator {
	return &Simulator{
		inv:       inv,
		acc:       acc,
		tasks:     make(map[model.TaskID]model.Task),
		slaTotal:  make(map[model.SLAClass]int),
		slaOnTime: make(map[model.SLAClass]int),
	}
}

// RegisterTask records a task's static definition so TaskInfo and the SLA
// report can resolve it later; the replay driver calls this once per task
// before issuing NewTask.
func (s *Simulator) RegisterTask(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	s.slaTotal[t.SLA]++
}

// RecordCompletion tallies a finished task against its SLA class's
// on-time count. The replay driver calls this once per task completion,
// before handing the completion up-call to the Adapter.
func (s *Simulator) RecordCompletion(t model.Task, completedAt model.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if completedAt <= t.TargetCompletion {
		s.slaOnTime[t.SLA]++
	}
}

// AddEnergy folds an externally-computed kilowatt-hour delta into the
// simulator's cumulative energy total, the figure Shutdown's report
// pulls from ClusterEnergyKWh.
func (s *Simulator) AddEnergy(kwh float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.energyKWh += kwh
}

// Advance moves the simulator's clock to now and returns every machine
// whose state-change latency has elapsed and every VM whose migration
// latency has elapsed, each exactly once, in ascending id order.
func (s *Simulator) Advance(now model.Time) (machines []model.MachineID, vms []model.VMID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now

	var keptStates []pendingStateChange
	for _, p := range s.pendingStates {
		if p.at <= now {
			machines = append(machines, p.machine)
		} else {
			keptStates = append(keptStates, p)
		}
	}
	s.pendingStates = keptStates

	var keptMigrations []pendingMigration
	for _, p := range s.pendingMigrations {
		if p.at <= now {
			vms = append(vms, p.vm)
		} else {
			keptMigrations = append(keptMigrations, p)
		}
	}
	s.pendingMigrations = keptMigrations

	sort.Slice(machines, func(i, j int) bool { return machines[i] < machines[j] })
	sort.Slice(vms, func(i, j int) bool { return vms[i] < vms[j] })
	return machines, vms
}

func (s *Simulator) MachineGetTotal() int {
	return len(s.inv.Machines())
}

func (s *Simulator) MachineGetInfo(id model.MachineID) model.Machine {
	m, ok := s.inv.Machine(id)
	if !ok {
		return model.Machine{}
	}
	return *m
}

// MachineSetState applies the power transition immediately to the shared
// Machine record (there is no separate hardware-state copy to converge)
// and schedules the StateChangeComplete notification the Adapter is
// waiting on.
func (s *Simulator) MachineSetState(id model.MachineID, state model.SState) {
	if m, ok := s.inv.Machine(id); ok {
		m.SState = state
	}
	s.mu.Lock()
	s.pendingStates = append(s.pendingStates, pendingStateChange{at: s.now + stateChangeLatency, machine: id})
	s.mu.Unlock()
}

func (s *Simulator) MachineSetCorePerformance(id model.MachineID, _ int, p model.PState) {
	if m, ok := s.inv.Machine(id); ok {
		m.PState = p
	}
}

func (s *Simulator) VMCreate(os model.GuestOS, cpu model.CPUType) model.VMID {
	return s.inv.NewVMID()
}

func (s *Simulator) VMAttach(vm model.VMID, machine model.MachineID) error {
	return nil // inventory.Attach performs the real CPU/active-state validation
}

func (s *Simulator) VMAddTask(model.VMID, model.TaskID, model.Priority) error { return nil }
func (s *Simulator) VMRemoveTask(model.VMID, model.TaskID) error             { return nil }

func (s *Simulator) VMMigrate(vm model.VMID, _ model.MachineID) {
	s.mu.Lock()
	s.pendingMigrations = append(s.pendingMigrations, pendingMigration{at: s.now + migrationLatency, vm: vm})
	s.mu.Unlock()
}

func (s *Simulator) VMShutdown(model.VMID) error { return nil }

func (s *Simulator) TaskInfo(id model.TaskID) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

func (s *Simulator) GetSLAReport(sla model.SLAClass) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.slaTotal[sla]
	if total == 0 {
		return 100
	}
	return 100 * float64(s.slaOnTime[sla]) / float64(total)
}

func (s *Simulator) ClusterEnergyKWh() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.energyKWh
}

func (s *Simulator) Now() model.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
