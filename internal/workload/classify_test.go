package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

func makeTask(id int, instructions uint64, mem float64) model.Task {
	return model.Task{
		ID:                model.TaskID(id),
		TotalInstructions: instructions,
		Arrival:           0,
		TargetCompletion:  1_000_000,
		RequiredMemory:    mem,
	}
}

func TestClassifySeparatesDistinctGroups(t *testing.T) {
	var tasks []model.Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, makeTask(i, 1_000_000, 128)) // light cluster
	}
	for i := 5; i < 10; i++ {
		tasks = append(tasks, makeTask(i, 500_000_000, 8192)) // heavy cluster
	}

	clusters := Classify(tasks, 2)

	require.Len(t, clusters, 2)
	total := 0
	for _, c := range clusters {
		total += len(c.Tasks)
	}
	assert.Equal(t, len(tasks), total)
}

func TestClassifyEmptyInput(t *testing.T) {
	assert.Nil(t, Classify(nil, 2))
	assert.Nil(t, Classify([]model.Task{makeTask(0, 1, 1)}, 0))
}
