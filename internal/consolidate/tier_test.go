package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
)

func TestDesiredTierSizes(t *testing.T) {
	cases := []struct {
		name                  string
		total, activeTasks    int
		load                  float64
		wantRunning, wantIntermediate int
	}{
		{"high load", 20, 0, 0.8, 12, 4},
		{"low load", 20, 0, 0.1, 6, 4},
		{"mid load", 20, 0, 0.5, 8, 4},
		{"workload floor dominates", 20, 40, 0.1, 10, 4},
		{"tiny cluster floors apply", 3, 0, 0.5, 3, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			running, intermediate := desiredTierSizes(c.total, c.activeTasks, c.load)
			assert.Equal(t, c.wantRunning, running)
			assert.Equal(t, c.wantIntermediate, intermediate)
		})
	}
}

func newMachineWithState(id model.MachineID, s model.SState) *model.Machine {
	var mips [model.NumPStates]float64
	mips[model.P0] = 1000
	var power [model.NumSStates]float64
	m := model.NewMachine(id, model.X86, 4, 4096, false, mips, power)
	m.SState = s
	return m
}

func TestTierStrategyPromotesIntermediateUnderHighLoad(t *testing.T) {
	inv := inventory.New()
	for i := 1; i <= 10; i++ {
		s := model.S5
		if i <= 2 {
			s = model.S0
		} else if i <= 4 {
			s = model.S3
		}
		inv.AddMachine(newMachineWithState(model.MachineID(i), s))
	}

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	ts := NewTierStrategy(inv, sim, gate, nil)

	// Drive memory usage high so desiredRunning grows past the 2 currently running.
	for _, m := range inv.Machines() {
		if m.SState == model.S0 {
			m.CommittedMem = m.TotalMem * 4 // push cluster load well above 0.7
		}
	}

	ts.Sweep(0)

	running := ts.machinesInTier(tierRunning)
	assert.GreaterOrEqual(t, len(running), 4, "at least the 2 intermediate machines should have been promoted")
	for _, id := range running {
		assert.Equal(t, model.S0, sim.stateRequests[id])
	}
}

func TestTierStrategyDeactivateOnlyTouchesIdleMachines(t *testing.T) {
	inv := inventory.New()
	inv.AddMachine(newMachineWithState(1, model.S0))
	loaded := newMachineWithState(2, model.S0)
	loaded.CommittedMIPS = 10
	inv.AddMachine(loaded)

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	ts := NewTierStrategy(inv, sim, gate, nil)

	ts.demoteIdleRunning(2)

	assert.Equal(t, tierIntermediate, ts.tiers[1])
	assert.Equal(t, tierRunning, ts.tiers[2], "loaded machine must never be demoted")
	assert.Equal(t, model.S3, sim.stateRequests[1])
	_, touched := sim.stateRequests[2]
	assert.False(t, touched)
}

func TestTierStrategyRespectsPendingGateOnPowerOff(t *testing.T) {
	inv := inventory.New()
	inv.AddMachine(newMachineWithState(1, model.S3))

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	gate.pending[1] = true
	ts := NewTierStrategy(inv, sim, gate, nil)

	ts.powerOffIntermediate(1)

	assert.Equal(t, tierIntermediate, ts.tiers[1], "machine with a pending attachment must not be pushed to S5")
	_, touched := sim.stateRequests[1]
	assert.False(t, touched)
}

func TestTierStrategyActivateCreatesVMWhenNoneAttached(t *testing.T) {
	inv := inventory.New()
	inv.AddMachine(newMachineWithState(1, model.S3))

	sim := newFakeSimulator()
	gate := newFakePendingGate()
	ts := NewTierStrategy(inv, sim, gate, nil)

	ts.activate(1)

	require.Equal(t, model.S0, sim.stateRequests[1])
	vms := inv.VMsOnHost(1)
	require.Len(t, vms, 1)
	assert.Equal(t, model.LINUX, vms[0].GuestOS)
}
