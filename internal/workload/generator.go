package workload

import (
	"math/rand"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// Generate expands a TaskClass into concrete Task values spaced by
// InterArrival from StartTime to EndTime, using a seeded random source so
// a given TaskClass.Seed always reproduces the same trace -- the same
// contract the input-file format's per-class Seed field implies, and
// needed for this scheduler's own deterministic replay tests even though
// production task arrival is driven by the simulator instead.
func Generate(tc TaskClass, startID model.TaskID) []model.Task {
	rng := rand.New(rand.NewSource(tc.Seed))

	var tasks []model.Task
	id := startID
	for t := tc.StartTime; t < tc.EndTime; t += tc.InterArrival {
		for i := 0; i < maxInt(tc.NumInstances, 1); i++ {
			instructions := instructionCount(rng, tc)
			tasks = append(tasks, model.Task{
				ID:                id,
				TotalInstructions: instructions,
				Arrival:           t,
				TargetCompletion:  t + tc.ExpectedRuntime,
				RequiredCPU:       tc.CPU,
				RequiredGuestOS:   tc.VMType,
				RequiredMemory:    tc.MemoryMiB,
				GPUAffinity:       tc.GPUEnabled,
				SLA:               tc.SLA,
			})
			id++
		}
	}
	return tasks
}

// instructionCount derives a total-instruction count from the task's
// expected runtime and type-characteristic instruction density, jittered
// +/-10% so a generated trace is not perfectly uniform.
func instructionCount(rng *rand.Rand, tc TaskClass) uint64 {
	density := mipsPerInstructionHint[tc.Type]
	if density == 0 {
		density = mipsPerInstructionHint[WEB]
	}
	base := float64(tc.ExpectedRuntime) * density
	jitter := 0.9 + 0.2*rng.Float64()
	if base*jitter < 1 {
		return 1
	}
	return uint64(base * jitter)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
