package migration

import "github.com/spdfg/cloudsim-eec/internal/model"

type fakeSimulator struct {
	migrateCalls []struct {
		vm  model.VMID
		dst model.MachineID
	}
}

func newFakeSimulator() *fakeSimulator { return &fakeSimulator{} }

func (f *fakeSimulator) MachineGetTotal() int                        { return 0 }
func (f *fakeSimulator) MachineGetInfo(model.MachineID) model.Machine { return model.Machine{} }
func (f *fakeSimulator) MachineSetState(model.MachineID, model.SState) {}
func (f *fakeSimulator) MachineSetCorePerformance(model.MachineID, int, model.PState) {}

func (f *fakeSimulator) VMCreate(model.GuestOS, model.CPUType) model.VMID { return 0 }
func (f *fakeSimulator) VMAttach(model.VMID, model.MachineID) error      { return nil }
func (f *fakeSimulator) VMAddTask(model.VMID, model.TaskID, model.Priority) error {
	return nil
}
func (f *fakeSimulator) VMRemoveTask(model.VMID, model.TaskID) error { return nil }
func (f *fakeSimulator) VMMigrate(vm model.VMID, dst model.MachineID) {
	f.migrateCalls = append(f.migrateCalls, struct {
		vm  model.VMID
		dst model.MachineID
	}{vm, dst})
}
func (f *fakeSimulator) VMShutdown(model.VMID) error { return nil }

func (f *fakeSimulator) TaskInfo(model.TaskID) model.Task { return model.Task{} }

func (f *fakeSimulator) GetSLAReport(model.SLAClass) float64 { return 0 }
func (f *fakeSimulator) ClusterEnergyKWh() float64           { return 0 }
func (f *fakeSimulator) Now() model.Time                     { return 0 }
