package domain

import (
	"context"
	"time"
)

// MetricRef names one metric to attach coverage to.
type MetricRef struct {
	Name    string
	Variant Variant
}

// LinkInsertResult reports the outcome of a batch of coverage link inserts.
type LinkInsertResult struct {
	Inserted   int64
	Duplicates int64
}

// PromoteResult reports the outcome of promoting a planning entry.
type PromoteResult struct {
	TCID          string
	LinkInserted  bool // false when the equivalent link already existed
	CreatedRoot   bool
	RemovedPlanID int64
}

// HistoryFilter holds filter parameters for querying the edit history.
type HistoryFilter struct {
	Username  *string
	Action    *string
	TableName *string
	Since     *time.Time
	Page      PageRequest
}

// Suggestion is one TCID autocomplete candidate.
type Suggestion struct {
	TCID  string
	Title *string
}

// MetricRepository provides CRUD operations for Glean and Legacy metrics.
type MetricRepository interface {
	Create(ctx context.Context, m *Metric) (*Metric, error)
	Update(ctx context.Context, name string, v Variant, patch MetricPatch) (*Metric, error)
	Get(ctx context.Context, name string, v Variant) (*Metric, error)
	List(ctx context.Context, v Variant, includeDeleted bool) ([]Metric, error)
	Categories(ctx context.Context) ([]CategoryOption, error)
	// FilterExisting returns the subset of names that exist live under v.
	FilterExisting(ctx context.Context, v Variant, names []string) (map[string]bool, error)
	SetDeleted(ctx context.Context, name string, v Variant, deleted bool) error
}

// CoverageRepository provides operations on coverage roots and links.
type CoverageRepository interface {
	GetRootByTCID(ctx context.Context, tcid string) (*CoverageRoot, error)
	// AddLinks finds or creates the root for tcid and inserts the cartesian
	// product of refs x regions x engines in one transaction. Tuples that
	// already exist count as duplicates.
	AddLinks(ctx context.Context, tcid string, title *string, refs []MetricRef, regions, engines []string) (*LinkInsertResult, error)
	MetricSummaries(ctx context.Context, v Variant) ([]MetricCoverage, error)
	DetailsForMetric(ctx context.Context, name string, v Variant) ([]LinkDetail, error)
	ReportRows(ctx context.Context, v Variant) ([]ReportRow, error)
	Stats(ctx context.Context) (*CoverageStats, error)
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
	SetRootDeleted(ctx context.Context, tcid string, deleted bool) error
	SetLinkDeleted(ctx context.Context, linkID int64, deleted bool) error
}

// PlanningRepository provides operations on the planning table.
type PlanningRepository interface {
	Rows(ctx context.Context, v Variant) ([]PlanningRow, error)
	SetPriority(ctx context.Context, name string, v Variant, priority string) error
	SaveNotes(ctx context.Context, name string, v Variant, notes string) error
	AddPlan(ctx context.Context, e *PlanningEntry) (*PlanningEntry, error)
	GetPlan(ctx context.Context, id int64) (*PlanningEntry, error)
	RemovePlan(ctx context.Context, id int64) error
	// Promote converts a planned combination into a real coverage link and
	// deletes the plan, atomically.
	Promote(ctx context.Context, planID int64, tcid string, title *string) (*PromoteResult, error)
}

// ExceptionRepository provides operations on excluded TCIDs.
type ExceptionRepository interface {
	Create(ctx context.Context, e *Exception) (*Exception, error)
	List(ctx context.Context, includeDeleted bool) ([]Exception, error)
	ExistsLive(ctx context.Context, tcid string) (bool, error)
	SetDeleted(ctx context.Context, tcid string, deleted bool) error
}

// EngineRepository maintains the supported search engine reference list.
type EngineRepository interface {
	Add(ctx context.Context, name string) error
	List(ctx context.Context) ([]SupportedEngine, error)
	Remove(ctx context.Context, name string) error
}

// HistoryRepository provides operations for edit history entries.
type HistoryRepository interface {
	Insert(ctx context.Context, e *HistoryEntry) error
	List(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int64, error)
}

// UserRepository provides CRUD operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, id int64, role string) error
	Delete(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context) (int64, error)
}
