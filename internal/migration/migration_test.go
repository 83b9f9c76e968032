package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/cloudsim-eec/internal/accountant"
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/model"
)

func activeMachine(id model.MachineID, capacity, totalMem float64) *model.Machine {
	var mips [model.NumPStates]float64
	mips[model.P0] = capacity
	var power [model.NumSStates]float64
	m := model.NewMachine(id, model.X86, 4, totalMem, false, mips, power)
	m.SState = model.S0
	return m
}

func setupOverloadedCluster(t *testing.T) (*inventory.Inventory, *accountant.Accountant, *model.Machine, *model.Machine, *model.VM) {
	inv := inventory.New()
	acc := accountant.New()

	src := activeMachine(1, 1000, 4096)
	dst := activeMachine(2, 1000, 4096)
	inv.AddMachine(src)
	inv.AddMachine(dst)

	vm := model.NewVM(inv.NewVMID(), model.LINUX, model.X86)
	inv.AddVM(vm)
	require.NoError(t, inv.Attach(vm.ID, src.ID))

	acc.Commit(src, 100, 950, 100) // pushes src utilisation to 0.95
	vm.AddTask(100)

	return inv, acc, src, dst, vm
}

func TestSweepMigratesOverloadedMachine(t *testing.T) {
	inv, acc, src, dst, vm := setupOverloadedCluster(t)
	sim := newFakeSimulator()
	c := New(inv, acc, sim, nil)

	c.Sweep()

	require.True(t, vm.Migrating)
	require.Len(t, sim.migrateCalls, 1)
	assert.Equal(t, vm.ID, sim.migrateCalls[0].vm)
	assert.Equal(t, dst.ID, sim.migrateCalls[0].dst)

	loc, ok := acc.Location(100)
	require.True(t, ok)
	assert.Equal(t, dst.ID, loc)
	assert.Equal(t, 0.0, src.CommittedMIPS)
	assert.Equal(t, 950.0, dst.CommittedMIPS)

	assert.True(t, c.IsMigrationDestination(dst.ID))
}

func TestSweepDoesNotDoubleMigrateInFlightVM(t *testing.T) {
	inv, acc, _, _, vm := setupOverloadedCluster(t)
	sim := newFakeSimulator()
	c := New(inv, acc, sim, nil)

	c.Sweep()
	require.Len(t, sim.migrateCalls, 1)

	c.Sweep() // vm is still migrating; nothing else on src; must stay at one call
	assert.Len(t, sim.migrateCalls, 1)
	assert.True(t, vm.Migrating)
}

func TestOnMigrationCompleteClearsFlagAndMovesHost(t *testing.T) {
	inv, acc, src, dst, vm := setupOverloadedCluster(t)
	sim := newFakeSimulator()
	c := New(inv, acc, sim, nil)

	c.Sweep()
	require.True(t, vm.Migrating)

	c.OnMigrationComplete(vm.ID)

	assert.False(t, vm.Migrating)
	assert.Equal(t, dst.ID, vm.Host)
	assert.False(t, c.IsMigrationDestination(dst.ID))
	assert.NotContains(t, src.VMs, vm.ID)
	assert.Contains(t, dst.VMs, vm.ID)
}

func TestOnSLAWarningTreatsTasksMachineAsOverloaded(t *testing.T) {
	inv := inventory.New()
	acc := accountant.New()
	src := activeMachine(1, 1000, 4096)
	dst := activeMachine(2, 1000, 4096)
	inv.AddMachine(src)
	inv.AddMachine(dst)

	vm := model.NewVM(inv.NewVMID(), model.LINUX, model.X86)
	inv.AddVM(vm)
	require.NoError(t, inv.Attach(vm.ID, src.ID))
	// Below the 0.9 automatic-overload threshold, only an SLA warning
	// should trigger relief here.
	acc.Commit(src, 200, 500, 100)
	vm.AddTask(200)

	sim := newFakeSimulator()
	c := New(inv, acc, sim, nil)

	c.Sweep()
	assert.False(t, vm.Migrating, "machine is under the overload threshold, sweep must not act")

	c.OnSLAWarning(200)
	assert.True(t, vm.Migrating)
}

func TestOnMemoryWarningMigratesLargestVM(t *testing.T) {
	inv := inventory.New()
	acc := accountant.New()
	src := activeMachine(1, 1000, 4096)
	dst := activeMachine(2, 1000, 4096)
	inv.AddMachine(src)
	inv.AddMachine(dst)

	small := model.NewVM(inv.NewVMID(), model.LINUX, model.X86)
	big := model.NewVM(inv.NewVMID(), model.LINUX, model.X86)
	inv.AddVM(small)
	inv.AddVM(big)
	require.NoError(t, inv.Attach(small.ID, src.ID))
	require.NoError(t, inv.Attach(big.ID, src.ID))

	acc.Commit(src, 1, 500, 50)
	small.AddTask(1)
	acc.Commit(src, 2, 450, 900)
	big.AddTask(2)

	sim := newFakeSimulator()
	c := New(inv, acc, sim, nil)

	c.OnMemoryWarning(src.ID)

	assert.True(t, src.InMemoryWarning)
	assert.True(t, big.Migrating)
	assert.False(t, small.Migrating)
}
