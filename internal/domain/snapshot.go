package domain

import "time"

// Snapshot is the immutable output of one pipeline run. A dataset is nil when
// it is disabled.
type Snapshot struct {
	RunID       string       `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Recipes     *RecipeGraph `json:"recipes,omitempty" yaml:"recipes,omitempty"`
	Counties    *Choropleth  `json:"counties,omitempty" yaml:"counties,omitempty"`
}

// NewSnapshot starts an empty snapshot stamped with the package clock.
func NewSnapshot(runID string) Snapshot {
	return Snapshot{RunID: runID, GeneratedAt: clock.Now().UTC()}
}

// SnapshotSummary counts the records in a snapshot.
type SnapshotSummary struct {
	RunID         string    `json:"run_id" yaml:"run_id"`
	GeneratedAt   time.Time `json:"generated_at" yaml:"generated_at"`
	RecipeNodes   int       `json:"recipe_nodes" yaml:"recipe_nodes"`
	RecipeLinks   int       `json:"recipe_links" yaml:"recipe_links"`
	CountyMetrics int       `json:"county_metrics" yaml:"county_metrics"`
}

// Summary reports the record counts of s.
func (s Snapshot) Summary() SnapshotSummary {
	sum := SnapshotSummary{RunID: s.RunID, GeneratedAt: s.GeneratedAt}
	if s.Recipes != nil {
		sum.RecipeNodes = len(s.Recipes.Nodes)
		sum.RecipeLinks = len(s.Recipes.Links)
	}
	if s.Counties != nil {
		sum.CountyMetrics = len(s.Counties.Counties)
	}
	return sum
}
