package placement

import "github.com/spdfg/cloudsim-eec/internal/model"

// fakeSimulator is a hand-written stand-in for the real simulator process.
type fakeSimulator struct {
	nextVMID   model.VMID
	attachErr  error
	addTaskErr error

	setStateCalls []model.MachineID
}

func newFakeSimulator() *fakeSimulator {
	return &fakeSimulator{}
}

func (f *fakeSimulator) MachineGetTotal() int                     { return 0 }
func (f *fakeSimulator) MachineGetInfo(model.MachineID) model.Machine { return model.Machine{} }
func (f *fakeSimulator) MachineSetState(id model.MachineID, s model.SState) {
	f.setStateCalls = append(f.setStateCalls, id)
}
func (f *fakeSimulator) MachineSetCorePerformance(model.MachineID, int, model.PState) {}

func (f *fakeSimulator) VMCreate(os model.GuestOS, cpu model.CPUType) model.VMID {
	id := f.nextVMID
	f.nextVMID++
	return id
}
func (f *fakeSimulator) VMAttach(vm model.VMID, machine model.MachineID) error { return f.attachErr }
func (f *fakeSimulator) VMAddTask(vm model.VMID, task model.TaskID, priority model.Priority) error {
	return f.addTaskErr
}
func (f *fakeSimulator) VMRemoveTask(model.VMID, model.TaskID) error { return nil }
func (f *fakeSimulator) VMMigrate(model.VMID, model.MachineID)       {}
func (f *fakeSimulator) VMShutdown(model.VMID) error                 { return nil }

func (f *fakeSimulator) TaskInfo(model.TaskID) model.Task { return model.Task{} }

func (f *fakeSimulator) GetSLAReport(model.SLAClass) float64 { return 0 }
func (f *fakeSimulator) ClusterEnergyKWh() float64           { return 0 }
func (f *fakeSimulator) Now() model.Time                     { return 0 }
