package domain

import "time"

// PlanningEntry is a row of the planning table. The table serves two
// purposes, distinguished by shape:
//
//   - the priority/notes holder for a metric: tc_id, region, and engine all
//     NULL; at most one such row per (metric, variant), enforced by a partial
//     unique index;
//   - a concrete planned region/engine combination awaiting promotion:
//     tc_id NULL, at least one of region/engine set.
//
// Promotion deletes the entry and records a real coverage link.
type PlanningEntry struct {
	ID         int64
	MetricName string
	Variant    Variant
	Priority   *string
	Notes      *string
	TCID       *string
	Region     *string
	Engine     *string
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsHolder reports whether the entry is the priority/notes holder row.
func (e PlanningEntry) IsHolder() bool {
	return e.TCID == nil && e.Region == nil && e.Engine == nil
}

// PlanningRow is one row of the planning grid: a metric with its realized
// coverage counts, its priority/notes, and any outstanding plans.
type PlanningRow struct {
	MetricName  string
	Variant     Variant
	Category    string
	Priority    *string
	Notes       *string
	TCIDCount   int
	RegionCount int
	EngineCount int
	Existing    []LinkDetail
	Planned     []PlanningEntry
}
