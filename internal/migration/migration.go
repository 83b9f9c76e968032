// Package migration implements the Migration Coordinator: overload
// detection, SLA-violation reaction, and memory-warning escalation, all
// funnelled through one startMigration path that enforces at-most-one
// in-flight migration per VM.
package migration

import (
	"sort"
	"sync"

	"github.com/spdfg/cloudsim-eec/internal/accountant"
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
	"github.com/spdfg/cloudsim-eec/internal/simulator"
)

// Logger is the minimal sink the coordinator writes decision traces to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}

const (
	overloadThreshold = 0.9
	headroomMargin    = 0.1
)

// Coordinator owns the set of migrations currently in flight and the set
// of machines serving as an active migration's destination (consulted by
// placement's MigrationGate).
type Coordinator struct {
	inv *inventory.Inventory
	acc *accountant.Accountant
	sim simulator.Simulator
	log Logger

	mu        sync.Mutex
	inFlight  map[model.VMID]migrationRecord
}

type migrationRecord struct {
	src, dst model.MachineID
}

// New constructs a Coordinator.
func New(inv *inventory.Inventory, acc *accountant.Accountant, sim simulator.Simulator, log Logger) *Coordinator {
	if log == nil {
		log = noopLogger{}
	}
	return &Coordinator{
		inv:      inv,
		acc:      acc,
		sim:      sim,
		log:      log,
		inFlight: make(map[model.VMID]migrationRecord),
	}
}

// IsMigrationDestination satisfies placement.MigrationGate.
func (c *Coordinator) IsMigrationDestination(m model.MachineID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.inFlight {
		if rec.dst == m {
			return true
		}
	}
	return false
}

// Sweep implements the periodic overload-detection pass: every machine
// above the overload threshold gets one migration attempt per tick.
func (c *Coordinator) Sweep() {
	for _, m := range c.inv.Machines() {
		if !m.Active() {
			continue
		}
		if accountant.MachineCPUUtilisation(m) > overloadThreshold {
			c.relieveOverload(m)
		}
	}
}

// OnSLAWarning implements the SLA-violation reaction: locate the task's
// machine and treat it as overloaded regardless of its measured
// utilisation.
func (c *Coordinator) OnSLAWarning(task model.TaskID) {
	loc, ok := c.acc.Location(task)
	if !ok {
		return
	}
	m, ok := c.inv.Machine(loc)
	if !ok {
		return
	}
	c.log.Debugf("migration: SLA warning on task %d, treating machine %d as overloaded", task, loc)
	c.relieveOverload(m)
}

// OnMemoryWarning implements the memory-warning escalation: seed the
// overload-migration algorithm from the warning machine directly, picking
// the largest-memory VM on it rather than scanning for the worst
// utilisation in the cluster.
func (c *Coordinator) OnMemoryWarning(machine model.MachineID) {
	m, ok := c.inv.Machine(machine)
	if !ok {
		return
	}
	m.InMemoryWarning = true

	vm := c.largestMemoryVM(machine)
	if vm == nil {
		return
	}
	dst := c.pickDestination(m, nil)
	if dst == nil {
		c.log.Infof("migration: no destination available to relieve memory warning on machine %d", machine)
		return
	}
	c.startMigration(vm, m, dst)
}

// relieveOverload picks a non-migrating VM on m and a destination at least
// headroomMargin below m's utilisation, and starts a migration if both are
// found.
func (c *Coordinator) relieveOverload(m *model.Machine) {
	vm := c.firstMigratableVM(m.ID)
	if vm == nil {
		return
	}
	dst := c.pickDestination(m, nil)
	if dst == nil {
		c.log.Debugf("migration: machine %d overloaded but no relieving destination found", m.ID)
		return
	}
	c.startMigration(vm, m, dst)
}

// firstMigratableVM returns the lowest-id non-migrating VM attached to
// host that has at least one active task, or nil.
func (c *Coordinator) firstMigratableVM(host model.MachineID) *model.VM {
	for _, vm := range c.inv.VMsOnHost(host) {
		if !vm.Migrating && !vm.Empty() {
			return vm
		}
	}
	return nil
}

// largestMemoryVM returns the VM on host whose active tasks commit the
// most memory, skipping VMs already migrating, or nil if none is left.
func (c *Coordinator) largestMemoryVM(host model.MachineID) *model.VM {
	var best *model.VM
	var bestMem float64
	for _, vm := range c.inv.VMsOnHost(host) {
		if vm.Migrating {
			continue
		}
		var mem float64
		for taskID := range vm.ActiveTasks {
			_, m, ok := c.acc.CommittedDemand(taskID)
			if ok {
				mem += m
			}
		}
		if best == nil || mem > bestMem {
			best = vm
			bestMem = mem
		}
	}
	return best
}

// pickDestination finds the lowest-utilisation active machine, same CPU
// architecture as src, whose utilisation is at least headroomMargin below
// src's, excluding src itself and any machine for which exclude (if
// non-nil) returns true.
func (c *Coordinator) pickDestination(src *model.Machine, exclude func(model.MachineID) bool) *model.Machine {
	srcUtil := accountant.MachineCPUUtilisation(src)
	candidates := c.inv.MachinesByCPU(src.CPU)
	sort.Slice(candidates, func(i, j int) bool {
		ui := accountant.UtilisationKey(candidates[i])
		uj := accountant.UtilisationKey(candidates[j])
		if ui != uj {
			return ui < uj
		}
		return candidates[i].ID < candidates[j].ID
	})
	for _, cand := range candidates {
		if cand.ID == src.ID || !cand.Active() {
			continue
		}
		if exclude != nil && exclude(cand.ID) {
			continue
		}
		if c.IsMigrationDestination(cand.ID) {
			continue
		}
		if accountant.MachineCPUUtilisation(cand) <= srcUtil-headroomMargin {
			return cand
		}
	}
	return nil
}

// startMigration marks vm as migrating, atomically relocates its
// committed load and task->machine entries from src to dst, gates on dst
// being active, and issues the migrate down-call.
func (c *Coordinator) startMigration(vm *model.VM, src, dst *model.Machine) {
	if vm.Migrating {
		return // at-most-one-in-flight per VM
	}
	if !dst.Active() {
		c.log.Debugf("migration: destination %d not active, aborting migration of vm %d", dst.ID, vm.ID)
		return
	}

	c.mu.Lock()
	c.inFlight[vm.ID] = migrationRecord{src: src.ID, dst: dst.ID}
	c.mu.Unlock()

	vm.Migrating = true
	for taskID := range vm.ActiveTasks {
		c.acc.Relocate(src, dst, taskID)
	}

	c.sim.VMMigrate(vm.ID, dst.ID)
	c.log.Infof("migration: vm %d migrating from machine %d to %d", vm.ID, src.ID, dst.ID)
}

// OnMigrationComplete clears vm's migrating flag and moves its host
// attachment from source to destination, called from the up-call of the
// same name. The accountant's (task -> machine) entries were already
// relocated when the migration started; only the inventory's host index
// (which the placement engine reads to enumerate a machine's VMs) is
// still pointing at the source until this arrives.
func (c *Coordinator) OnMigrationComplete(vm model.VMID) {
	c.mu.Lock()
	rec, ok := c.inFlight[vm]
	if ok {
		delete(c.inFlight, vm)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	v, ok := c.inv.VM(vm)
	if !ok {
		return
	}
	v.Migrating = false

	c.inv.Detach(vm)
	if err := c.inv.Attach(vm, rec.dst); err != nil {
		c.log.Infof("migration: vm %d failed to attach to destination %d after migration: %v", vm, rec.dst, err)
	}
	c.log.Debugf("migration: vm %d migration complete (machine %d -> %d)", vm, rec.src, rec.dst)
}
