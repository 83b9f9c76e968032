// Package simulator defines the down-call boundary the scheduler issues
// commands through. Simulator is implemented by the real trace-driven
// simulator in production and by a fake in tests.
package simulator

import "github.com/spdfg/cloudsim-eec/internal/model"

// Simulator is every down-call the scheduler may issue against a running
// cluster: machine state and performance control, VM lifecycle, and the
// read-back queries needed to report SLA and energy figures.
type Simulator interface {
	MachineGetTotal() int
	MachineGetInfo(id model.MachineID) model.Machine
	MachineSetState(id model.MachineID, s model.SState)
	MachineSetCorePerformance(id model.MachineID, coreID int, p model.PState)

	VMCreate(os model.GuestOS, cpu model.CPUType) model.VMID
	VMAttach(vm model.VMID, machine model.MachineID) error
	VMAddTask(vm model.VMID, task model.TaskID, priority model.Priority) error
	VMRemoveTask(vm model.VMID, task model.TaskID) error
	VMMigrate(vm model.VMID, destination model.MachineID)
	VMShutdown(vm model.VMID) error

	TaskInfo(task model.TaskID) model.Task

	GetSLAReport(sla model.SLAClass) float64
	ClusterEnergyKWh() float64
	Now() model.Time
}
