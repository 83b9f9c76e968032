package workload

import (
	"sort"

	"github.com/mash/gokmeans"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// TaskCluster groups tasks that landed in the same k-means cluster,
// ordered by ClusterIndex (the k-means centroid index) ascending.
type TaskCluster struct {
	ClusterIndex int
	Tasks        []model.Task
}

// observation reduces a task to the feature vector k-means trains on:
// MIPS demand and required memory, the two quantities the placement
// engine's own fit checks are expressed in terms of.
func observation(t model.Task) []float64 {
	windowSeconds := float64(t.DemandWindow()) / 1e6
	if windowSeconds <= 0 {
		windowSeconds = 1e-6
	}
	demand := float64(t.TotalInstructions) * 1e-6 / windowSeconds
	return []float64{demand, t.RequiredMemory}
}

// Classify partitions tasks into numClusters groups by k-means over
// (MIPS demand, required memory), retraining from scratch on every call.
func Classify(tasks []model.Task, numClusters int) []TaskCluster {
	if len(tasks) == 0 || numClusters <= 0 {
		return nil
	}

	observations := make([]gokmeans.Node, len(tasks))
	for i, t := range tasks {
		observations[i] = observation(t)
	}

	clusters := make(map[int][]model.Task)
	if trained, centroids := gokmeans.Train(observations, numClusters, 100); trained {
		for i, obs := range observations {
			idx := gokmeans.Nearest(obs, centroids)
			clusters[idx] = append(clusters[idx], tasks[i])
		}
	} else {
		// Training did not converge (e.g. fewer distinct points than
		// clusters): fall back to one cluster holding everything, still
		// a valid (if degenerate) partition.
		clusters[0] = append([]model.Task(nil), tasks...)
	}

	out := make([]TaskCluster, 0, len(clusters))
	for idx, ts := range clusters {
		out = append(out, TaskCluster{ClusterIndex: idx, Tasks: ts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClusterIndex < out[j].ClusterIndex })
	return out
}
