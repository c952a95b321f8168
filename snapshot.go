package kmviz

import (
	"github.com/hupe1980/kmviz/internal/kmeans"
	"github.com/hupe1980/kmviz/model"
)

// packageSteps converts the core iterations into Steps. colors must hold
// one token per cluster index.
func packageSteps(data []model.Point, res *kmeans.Result, colors []string) []model.Step {
	steps := make([]model.Step, len(res.Iterations))
	for i, it := range res.Iterations {
		steps[i] = packageStep(data, it, colors)
	}
	return steps
}

// packageStep groups the points of one iteration by cluster. Every cluster
// index appears, empty ones with no points.
func packageStep(data []model.Point, it kmeans.Iteration, colors []string) model.Step {
	k := it.Membership.K()
	clusters := make(model.Clusters, k)
	for c := 0; c < k; c++ {
		members := it.Membership.Members(c)
		points := make([]model.Point, len(members))
		for i, idx := range members {
			points[i] = data[idx]
		}
		clusters[c] = model.Cluster{
			Points:  points,
			Indices: members,
			Color:   colors[c],
		}
	}
	return model.Step{
		Centroids:  model.ClonePoints(it.Centroids),
		Clusters:   clusters,
		Inertia:    it.Inertia,
		Reassigned: it.Reassigned,
	}
}
