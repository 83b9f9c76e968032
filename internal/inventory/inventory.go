// Package inventory is the scheduler's in-memory catalogue of machines and
// VMs, plus the secondary indices the rest of the engine reads through.
// The inventory exclusively owns machine and VM records; every other
// component holds non-owning references resolved through its indices.
package inventory

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// Inventory owns every Machine and VM record in the cluster.
//
// The engine itself drives Inventory single-threaded, but the mutex is
// kept because a test harness may call into it from a goroutine distinct
// from the one driving the simulator.
type Inventory struct {
	mu sync.Mutex

	machines map[model.MachineID]*model.Machine
	vms      map[model.VMID]*model.VM

	nextVMID model.VMID
}

// New constructs an empty Inventory.
func New() *Inventory {
	return &Inventory{
		machines: make(map[model.MachineID]*model.Machine),
		vms:      make(map[model.VMID]*model.VM),
	}
}

// AddMachine registers a machine discovered at Init.
func (inv *Inventory) AddMachine(m *model.Machine) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.machines[m.ID] = m
}

// Machine resolves a machine id to its record, or false if unknown.
func (inv *Inventory) Machine(id model.MachineID) (*model.Machine, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	m, ok := inv.machines[id]
	return m, ok
}

// Machines returns every machine in the catalogue. The returned slice is a
// defensive copy safe for the caller to sort or filter.
func (inv *Inventory) Machines() []*model.Machine {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]*model.Machine, 0, len(inv.machines))
	for _, m := range inv.machines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MachinesByCPU returns every machine with the given CPU architecture,
// ascending by id.
func (inv *Inventory) MachinesByCPU(cpu model.CPUType) []*model.Machine {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []*model.Machine
	for _, m := range inv.machines {
		if m.CPU == cpu {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewVMID allocates the next VM id. VM ids are assigned by the inventory so
// that id order always reflects creation order, which the placement
// engine's tie-break rule ("earliest-created VM") depends on.
func (inv *Inventory) NewVMID() model.VMID {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	id := inv.nextVMID
	inv.nextVMID++
	return id
}

// AddVM registers a newly created VM.
func (inv *Inventory) AddVM(v *model.VM) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.vms[v.ID] = v
}

// VM resolves a VM id to its record, or false if unknown.
func (inv *Inventory) VM(id model.VMID) (*model.VM, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	v, ok := inv.vms[id]
	return v, ok
}

// RemoveVM drops a VM from the catalogue, used after shutdown.
func (inv *Inventory) RemoveVM(id model.VMID) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	delete(inv.vms, id)
}

// VMsOnHost returns every VM attached to the given machine, ascending by
// id (id order doubles as creation order per NewVMID).
func (inv *Inventory) VMsOnHost(host model.MachineID) []*model.VM {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []*model.VM
	for id := range inv.machineVMsLocked(host) {
		if v, ok := inv.vms[id]; ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (inv *Inventory) machineVMsLocked(host model.MachineID) map[model.VMID]struct{} {
	m, ok := inv.machines[host]
	if !ok {
		return nil
	}
	return m.VMs
}

// VMsOnHostWithGuestOS returns VMs attached to host with the given guest
// OS, ascending by id.
func (inv *Inventory) VMsOnHostWithGuestOS(host model.MachineID, os model.GuestOS) []*model.VM {
	var out []*model.VM
	for _, v := range inv.VMsOnHost(host) {
		if v.GuestOS == os {
			out = append(out, v)
		}
	}
	return out
}

// Attach links vm to machine, updating both sides of the relationship in
// lock-step, and fails if the CPU architectures do not match or the
// machine is not in an active S-state.
func (inv *Inventory) Attach(vmID model.VMID, machineID model.MachineID) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	vm, ok := inv.vms[vmID]
	if !ok {
		return errors.Errorf("attach: unknown vm %d", vmID)
	}
	m, ok := inv.machines[machineID]
	if !ok {
		return errors.Errorf("attach: unknown machine %d", machineID)
	}
	if vm.CPU != m.CPU {
		return errors.Errorf("attach: cpu mismatch vm=%s machine=%s", vm.CPU, m.CPU)
	}
	if !m.Active() {
		return errors.Errorf("attach: machine %d not active (s-state %s)", machineID, m.SState)
	}

	vm.Host = machineID
	m.AttachVM(vmID)
	return nil
}

// Detach unlinks vm from its current host, updating both sides.
func (inv *Inventory) Detach(vmID model.VMID) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	vm, ok := inv.vms[vmID]
	if !ok {
		return
	}
	if m, ok := inv.machines[vm.Host]; ok {
		m.DetachVM(vmID)
	}
	vm.Host = model.UnattachedMachine
}

// UtilisationKey is the metric used to rank machines when building the
// ascending candidate list: max(cpu_util, mem_util).
type UtilisationKey func(m *model.Machine) float64

// MachinesByUtilisationAscending returns every machine sorted ascending by
// key, with ties broken by machine id. It is recomputed on every call
// rather than cached, matching the spec's note that the sort is used at
// most once per event.
func (inv *Inventory) MachinesByUtilisationAscending(key UtilisationKey) []*model.Machine {
	machines := inv.Machines()
	sort.SliceStable(machines, func(i, j int) bool {
		ki, kj := key(machines[i]), key(machines[j])
		if ki != kj {
			return ki < kj
		}
		return machines[i].ID < machines[j].ID
	})
	return machines
}
