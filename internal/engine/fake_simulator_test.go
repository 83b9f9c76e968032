package engine

import "github.com/spdfg/cloudsim-eec/internal/model"

// fakeSimulator is a hand-written stand-in for the real simulator process.
type fakeSimulator struct {
	machines []model.Machine
	tasks    map[model.TaskID]model.Task

	nextVMID model.VMID

	shutdownCalls []model.VMID
	slaReports    map[model.SLAClass]float64
	energyKWh     float64
	now           model.Time
}

func newFakeSimulator(machines []model.Machine) *fakeSimulator {
	return &fakeSimulator{
		machines:   machines,
		tasks:      make(map[model.TaskID]model.Task),
		slaReports: make(map[model.SLAClass]float64),
	}
}

func (f *fakeSimulator) MachineGetTotal() int { return len(f.machines) }
func (f *fakeSimulator) MachineGetInfo(id model.MachineID) model.Machine {
	for _, m := range f.machines {
		if m.ID == id {
			return m
		}
	}
	return model.Machine{}
}

// MachineSetState is intentionally a no-op against the fake's own machine
// record: a real transition is not instantaneous, so tests simulate its
// completion explicitly via completeStateChange rather than have this call
// take effect immediately.
func (f *fakeSimulator) MachineSetState(model.MachineID, model.SState)               {}
func (f *fakeSimulator) MachineSetCorePerformance(model.MachineID, int, model.PState) {}

// completeStateChange simulates the simulator confirming a machine's
// transition: after this call, MachineGetInfo reports state for id.
func (f *fakeSimulator) completeStateChange(id model.MachineID, state model.SState) {
	for i := range f.machines {
		if f.machines[i].ID == id {
			f.machines[i].SState = state
			return
		}
	}
}

func (f *fakeSimulator) VMCreate(os model.GuestOS, cpu model.CPUType) model.VMID {
	id := f.nextVMID
	f.nextVMID++
	return id
}
func (f *fakeSimulator) VMAttach(model.VMID, model.MachineID) error { return nil }
func (f *fakeSimulator) VMAddTask(model.VMID, model.TaskID, model.Priority) error {
	return nil
}
func (f *fakeSimulator) VMRemoveTask(model.VMID, model.TaskID) error { return nil }
func (f *fakeSimulator) VMMigrate(model.VMID, model.MachineID)       {}
func (f *fakeSimulator) VMShutdown(vm model.VMID) error {
	f.shutdownCalls = append(f.shutdownCalls, vm)
	return nil
}

func (f *fakeSimulator) TaskInfo(id model.TaskID) model.Task { return f.tasks[id] }

func (f *fakeSimulator) GetSLAReport(sla model.SLAClass) float64 { return f.slaReports[sla] }
func (f *fakeSimulator) ClusterEnergyKWh() float64               { return f.energyKWh }
func (f *fakeSimulator) Now() model.Time                         { return f.now }
