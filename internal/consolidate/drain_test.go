package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
)

func TestDrainStrategyPowersDownIdleMachine(t *testing.T) {
	inv := inventory.New()
	m := newMachineWithState(1, model.S0)
	inv.AddMachine(m)
	vm := model.NewVM(inv.NewVMID(), model.LINUX, model.X86)
	inv.AddVM(vm)
	_ = inv.Attach(vm.ID, m.ID)

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	d := NewDrainStrategy(inv, sim, gate, nil)

	d.OnMachineIdle(m.ID)

	assert.Equal(t, model.S5, sim.stateRequests[m.ID])
	_, stillPresent := inv.VM(vm.ID)
	assert.False(t, stillPresent, "empty VM should be shut down before the host powers off")
}

func TestDrainStrategyLeavesLoadedMachineRunning(t *testing.T) {
	inv := inventory.New()
	m := newMachineWithState(1, model.S0)
	m.CommittedMIPS = 5
	inv.AddMachine(m)

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	d := NewDrainStrategy(inv, sim, gate, nil)

	d.OnMachineIdle(m.ID)

	_, touched := sim.stateRequests[m.ID]
	assert.False(t, touched)
}

func TestDrainStrategyRespectsPendingGate(t *testing.T) {
	inv := inventory.New()
	m := newMachineWithState(1, model.S0)
	inv.AddMachine(m)

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	gate.pending[m.ID] = true
	d := NewDrainStrategy(inv, sim, gate, nil)

	d.OnMachineIdle(m.ID)

	_, touched := sim.stateRequests[m.ID]
	assert.False(t, touched)
}
