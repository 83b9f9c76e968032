// Package workload carries the Go types for the trace-driven input-file
// format (machine class / task class blocks). The simulator is the
// canonical parser of this format in production; the scheduler only
// carries these types for its own tests and for the standalone trace
// generator in cmd/eec-scheduler.
package workload

import "github.com/spdfg/cloudsim-eec/internal/model"

// TaskType is the workload category a generated task belongs to, used
// only by the generator, not by the classifier or placement.
type TaskType int

const (
	WEB TaskType = iota
	CRYPTO
	HPC
	STREAM
	AI
)

func (t TaskType) String() string {
	switch t {
	case WEB:
		return "WEB"
	case CRYPTO:
		return "CRYPTO"
	case HPC:
		return "HPC"
	case STREAM:
		return "STREAM"
	case AI:
		return "AI"
	default:
		return "UNKNOWN_TASK_TYPE"
	}
}

// mipsPerInstructionHint gives each task type a characteristic
// instructions-per-microsecond density used only by the generator, loosely
// modeling the relative compute intensity the original workload families
// imply (HPC/AI instruction-heavy, WEB/STREAM comparatively light).
var mipsPerInstructionHint = map[TaskType]float64{
	WEB:    50,
	CRYPTO: 400,
	HPC:    1000,
	STREAM: 150,
	AI:     800,
}

// MachineClass is one "machine class { ... }" block of the input file.
type MachineClass struct {
	NumMachines int
	CPU         model.CPUType
	NumCores    int
	MemoryMiB   float64
	SStates     [model.NumSStates]float64 // watts
	PStates     [model.NumPStates]float64 // watts, unused by the scheduler directly
	MIPS        [model.NumPStates]float64
	GPUs        bool
}

// TaskClass is one "task class { ... }" block of the input file.
type TaskClass struct {
	StartTime        model.Time
	EndTime          model.Time
	InterArrival     model.Time
	ExpectedRuntime  model.Time
	MemoryMiB        float64
	VMType           model.GuestOS
	GPUEnabled       bool
	SLA              model.SLAClass
	CPU              model.CPUType
	Type             TaskType
	Seed             int64
	NumInstances     int
}
