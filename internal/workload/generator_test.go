package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

func TestGenerateProducesExpectedArrivalSpacing(t *testing.T) {
	tc := TaskClass{
		StartTime:       0,
		EndTime:         300,
		InterArrival:    100,
		ExpectedRuntime: 50,
		MemoryMiB:       256,
		VMType:          model.LINUX,
		SLA:             model.SLA1,
		CPU:             model.X86,
		Type:            HPC,
		Seed:            7,
		NumInstances:    1,
	}

	tasks := Generate(tc, 0)

	require.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, model.TaskID(i), task.ID)
		assert.Equal(t, model.Time(i*100), task.Arrival)
		assert.Equal(t, task.Arrival+50, task.TargetCompletion)
		assert.Equal(t, model.X86, task.RequiredCPU)
		assert.Greater(t, task.TotalInstructions, uint64(0))
	}
}

func TestGenerateIsDeterministicForAGivenSeed(t *testing.T) {
	tc := TaskClass{StartTime: 0, EndTime: 200, InterArrival: 100, ExpectedRuntime: 10, Seed: 99, NumInstances: 1, Type: AI}

	a := Generate(tc, 0)
	b := Generate(tc, 0)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].TotalInstructions, b[i].TotalInstructions)
	}
}

func TestGenerateMultipleInstancesPerArrival(t *testing.T) {
	tc := TaskClass{StartTime: 0, EndTime: 100, InterArrival: 100, ExpectedRuntime: 10, Seed: 1, NumInstances: 3}

	tasks := Generate(tc, 0)
	assert.Len(t, tasks, 3)
}
