package consolidate

import "github.com/spdfg/cloudsim-eec/internal/model"

type fakeSimulator struct {
	nextVMID      model.VMID
	stateRequests map[model.MachineID]model.SState
}

func newFakeSimulator() *fakeSimulator {
	return &fakeSimulator{stateRequests: make(map[model.MachineID]model.SState)}
}

func (f *fakeSimulator) MachineGetTotal() int                        { return 0 }
func (f *fakeSimulator) MachineGetInfo(model.MachineID) model.Machine { return model.Machine{} }
func (f *fakeSimulator) MachineSetState(id model.MachineID, s model.SState) {
	f.stateRequests[id] = s
}
func (f *fakeSimulator) MachineSetCorePerformance(model.MachineID, int, model.PState) {}

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
func (f *fakeSimulator) VMShutdown(model.VMID) error                 { return nil }

func (f *fakeSimulator) TaskInfo(model.TaskID) model.Task { return model.Task{} }

func (f *fakeSimulator) GetSLAReport(model.SLAClass) float64 { return 0 }
func (f *fakeSimulator) ClusterEnergyKWh() float64           { return 0 }
func (f *fakeSimulator) Now() model.Time                     { return 0 }

type fakePendingGate struct {
	pending map[model.MachineID]bool
}

func newFakePendingGate() *fakePendingGate {
	return &fakePendingGate{pending: make(map[model.MachineID]bool)}
}

func (g *fakePendingGate) HasPendingFor(m model.MachineID) bool { return g.pending[m] }
