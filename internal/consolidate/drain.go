package consolidate

import (
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
	"github.com/spdfg/cloudsim-eec/internal/simulator"
)

// DrainStrategy is the simpler ConsolidationStrategy: any machine with
// zero committed load and zero attached VMs with tasks is powered down
// directly to S5, with no intermediate tier. Kept as the alternate
// implementation alongside TierStrategy.
type DrainStrategy struct {
	inv     *inventory.Inventory
	sim     simulator.Simulator
	pending pendingGate
	log     Logger
}

// NewDrainStrategy constructs a DrainStrategy.
func NewDrainStrategy(inv *inventory.Inventory, sim simulator.Simulator, pending pendingGate, log Logger) *DrainStrategy {
	if log == nil {
		log = noopLogger{}
	}
	return &DrainStrategy{inv: inv, sim: sim, pending: pending, log: log}
}

// Sweep powers down every idle active machine.
func (d *DrainStrategy) Sweep(now model.Time) {
	for _, m := range d.inv.Machines() {
		d.OnMachineIdle(m.ID)
	}
}

// OnMachineIdle powers down m if it is active, idle, and holds no pending
// attachment.
func (d *DrainStrategy) OnMachineIdle(id model.MachineID) {
	m, ok := d.inv.Machine(id)
	if !ok || !m.Active() || !m.Idle() || d.pending.HasPendingFor(id) {
		return
	}
	for _, vm := range d.inv.VMsOnHost(id) {
		if vm.Empty() {
			_ = d.sim.VMShutdown(vm.ID)
			d.inv.RemoveVM(vm.ID)
		}
	}
	d.sim.MachineSetState(id, model.S5)
	m.SState = model.S5
	d.log.Debugf("consolidate: drained machine %d to S5", id)
}
