package placement

import "github.com/spdfg/cloudsim-eec/internal/model"

// PendingAttachment bundles the arguments of an attach/add-task pair that
// cannot complete until a machine finishes an in-flight S-state transition.
// Pass D (wake a machine) produces these; the engine drains them on
// StateChangeComplete.
type PendingAttachment struct {
	VM       model.VMID
	Machine  model.MachineID
	Task     model.TaskID
	Priority model.Priority
	Demand   float64
	Memory   float64
}
