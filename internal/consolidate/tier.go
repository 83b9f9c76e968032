// Package consolidate holds the two interchangeable power/consolidation
// strategies: draining idle machines to S5 directly, and the tiered
// running/intermediate/off management scheme, selected at engine
// construction time via the Strategy interface below.
package consolidate

import (
	"math"
	"sort"

	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
	"github.com/spdfg/cloudsim-eec/internal/simulator"
)

// Logger is the minimal sink strategies write decision traces to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}

// Strategy is a ConsolidationStrategy implementation, invoked from the
// periodic tick and from task completion.
type Strategy interface {
	// Sweep runs a full consolidation pass, used on SchedulerCheck.
	Sweep(now model.Time)
	// OnMachineIdle runs the narrower check triggered by a single machine
	// becoming idle as a consequence of task completion or migration.
	OnMachineIdle(m model.MachineID)
}

// tier is a machine's logical membership in the E-eco power hierarchy.
type tier int

const (
	tierRunning tier = iota
	tierIntermediate
	tierOff
)

// pendingGate is satisfied by the placement engine; a machine with a
// pending attachment must never be pushed to S5.
type pendingGate interface {
	HasPendingFor(m model.MachineID) bool
}

// TierStrategy is the default ConsolidationStrategy for this scheduler:
// machines are partitioned into running/intermediate/off tiers whose sizes
// track cluster memory load, promoting and demoting machines between tiers
// as that load shifts.
type TierStrategy struct {
	inv     *inventory.Inventory
	sim     simulator.Simulator
	pending pendingGate
	log     Logger

	tiers map[model.MachineID]tier
}

// NewTierStrategy constructs a TierStrategy. Every machine starts in the
// tier implied by its current S-state (S0 -> running, S5 -> off,
// otherwise intermediate), mirroring the tier assignment Init() performs
// in the reference scheduler.
func NewTierStrategy(inv *inventory.Inventory, sim simulator.Simulator, pending pendingGate, log Logger) *TierStrategy {
	if log == nil {
		log = noopLogger{}
	}
	ts := &TierStrategy{inv: inv, sim: sim, pending: pending, log: log, tiers: make(map[model.MachineID]tier)}
	for _, m := range inv.Machines() {
		ts.tiers[m.ID] = tierFromSState(m.SState)
	}
	return ts
}

func tierFromSState(s model.SState) tier {
	switch s {
	case model.S0:
		return tierRunning
	case model.S5:
		return tierOff
	default:
		return tierIntermediate
	}
}

const (
	highLoadThreshold = 0.7
	lowLoadThreshold  = 0.3
)

// desiredTierSizes computes the running/intermediate split as a function
// of system load, floored by a minimum running size derived from active
// task count.
func desiredTierSizes(total int, activeTasks int, load float64) (running, intermediate int) {
	switch {
	case load > highLoadThreshold:
		running = maxInt(int(float64(total)*0.6), 4)
		intermediate = maxInt(int(float64(total)*0.2), 2)
	case load < lowLoadThreshold:
		running = maxInt(int(float64(total)*0.3), 2)
		intermediate = maxInt(int(float64(total)*0.2), 2)
	default:
		running = maxInt(int(float64(total)*0.4), 3)
		intermediate = maxInt(int(float64(total)*0.2), 2)
	}

	minRunning := maxInt(int(math.Ceil(float64(activeTasks)/4)), 2)
	running = maxInt(running, minRunning)

	if running+intermediate > total {
		intermediate = total - running
	}
	if intermediate < 0 {
		intermediate = 0
	}
	return running, intermediate
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// systemLoad is cluster_memory_used / cluster_memory_total, the same
// memory-based proxy GetSystemLoad() uses.
func (ts *TierStrategy) systemLoad() float64 {
	var used, total float64
	for _, m := range ts.inv.Machines() {
		used += m.CommittedMem
		total += m.TotalMem
	}
	if total <= 0 {
		return 0
	}
	return used / total
}

func (ts *TierStrategy) activeTaskCount() int {
	n := 0
	for _, m := range ts.inv.Machines() {
		for _, vm := range ts.inv.VMsOnHost(m.ID) {
			n += len(vm.ActiveTasks)
		}
	}
	return n
}

func (ts *TierStrategy) machinesInTier(want tier) []model.MachineID {
	var out []model.MachineID
	for id, tr := range ts.tiers {
		if tr == want {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sweep runs AdjustTiers: resizes running/intermediate/off to track load,
// then actually moves machines between tiers to match the new sizes.
func (ts *TierStrategy) Sweep(now model.Time) {
	total := len(ts.inv.Machines())
	if total == 0 {
		return
	}

	desiredRunning, desiredIntermediate := desiredTierSizes(total, ts.activeTaskCount(), ts.systemLoad())

	currentRunning := len(ts.machinesInTier(tierRunning))
	if currentRunning < desiredRunning {
		ts.promoteFromIntermediate(desiredRunning - currentRunning)
	} else if currentRunning > desiredRunning {
		ts.demoteIdleRunning(currentRunning - desiredRunning)
	}

	currentRunning = len(ts.machinesInTier(tierRunning))
	currentIntermediate := len(ts.machinesInTier(tierIntermediate))
	currentTotal := currentRunning + currentIntermediate
	desiredTotal := desiredRunning + desiredIntermediate

	if currentTotal < desiredTotal {
		ts.wakeFromOff(desiredTotal - currentTotal)
	} else if currentIntermediate > desiredIntermediate {
		ts.powerOffIntermediate(currentIntermediate - desiredIntermediate)
	}
}

// promoteFromIntermediate activates up to n intermediate machines into the
// running tier, ascending by id for determinism.
func (ts *TierStrategy) promoteFromIntermediate(n int) {
	for _, id := range ts.machinesInTier(tierIntermediate) {
		if n <= 0 {
			return
		}
		ts.activate(id)
		n--
	}
}

// activate moves machine id from intermediate to running: sets S0 and
// ensures it has at least one attached LINUX VM. Unlike placement's Pass D,
// this does not wait for StateChangeComplete before attaching -- the
// intermediate tier's wake latency is assumed negligible, so VMAttach is
// issued immediately after MachineSetState.
func (ts *TierStrategy) activate(id model.MachineID) {
	m, ok := ts.inv.Machine(id)
	if !ok || ts.tiers[id] != tierIntermediate {
		return
	}
	ts.sim.MachineSetState(id, model.S0)
	m.SState = model.S0
	ts.tiers[id] = tierRunning

	if len(ts.inv.VMsOnHost(id)) == 0 {
		vmID := ts.sim.VMCreate(model.LINUX, m.CPU)
		vm := model.NewVM(vmID, model.LINUX, m.CPU)
		ts.inv.AddVM(vm)
		if err := ts.sim.VMAttach(vmID, id); err == nil {
			_ = ts.inv.Attach(vmID, id)
		}
	}
	ts.log.Debugf("consolidate: activated machine %d", id)
}

// demoteIdleRunning moves up to n zero-load running machines to the
// intermediate tier. Loaded machines are never touched.
func (ts *TierStrategy) demoteIdleRunning(n int) {
	var idle []model.MachineID
	for _, id := range ts.machinesInTier(tierRunning) {
		if m, ok := ts.inv.Machine(id); ok && m.Idle() {
			idle = append(idle, id)
		}
	}
	for _, id := range idle {
		if n <= 0 {
			return
		}
		ts.deactivate(id)
		n--
	}
}

func (ts *TierStrategy) deactivate(id model.MachineID) {
	m, ok := ts.inv.Machine(id)
	if !ok || !m.Idle() || ts.pending.HasPendingFor(id) {
		return
	}
	for _, vm := range ts.inv.VMsOnHost(id) {
		if vm.Empty() {
			_ = ts.sim.VMShutdown(vm.ID)
			ts.inv.RemoveVM(vm.ID)
		}
	}
	ts.sim.MachineSetState(id, model.S3)
	m.SState = model.S3
	ts.tiers[id] = tierIntermediate
	ts.log.Debugf("consolidate: deactivated machine %d", id)
}

// wakeFromOff moves up to n off-tier machines into intermediate (S5 -> S3),
// without creating a VM yet -- a machine only gets one when it is later
// promoted into running.
func (ts *TierStrategy) wakeFromOff(n int) {
	for _, id := range ts.machinesInTier(tierOff) {
		if n <= 0 {
			return
		}
		ts.sim.MachineSetState(id, model.S3)
		if m, ok := ts.inv.Machine(id); ok {
			m.SState = model.S3
		}
		ts.tiers[id] = tierIntermediate
		ts.log.Debugf("consolidate: machine %d moved OFF -> INTERMEDIATE", id)
		n--
	}
}

// powerOffIntermediate moves up to n intermediate machines to the off
// tier (S3 -> S5).
func (ts *TierStrategy) powerOffIntermediate(n int) {
	for _, id := range ts.machinesInTier(tierIntermediate) {
		if n <= 0 {
			return
		}
		if ts.pending.HasPendingFor(id) {
			continue
		}
		ts.sim.MachineSetState(id, model.S5)
		if m, ok := ts.inv.Machine(id); ok {
			m.SState = model.S5
		}
		ts.tiers[id] = tierOff
		ts.log.Debugf("consolidate: machine %d moved INTERMEDIATE -> OFF", id)
		n--
	}
}

// OnMachineIdle re-evaluates tier sizes immediately, the same effect
// AdjustTiers has when invoked from TaskComplete in the reference
// scheduler rather than waiting for the next periodic tick.
func (ts *TierStrategy) OnMachineIdle(m model.MachineID) {
	ts.Sweep(0)
}
