package domain

import (
	"regexp"
	"time"
)

// Sentinels used by imports and the extraction tools for "dimension absent".
// Link rows store NULL for an absent dimension; these values only appear in
// CSV round-trips and sort last in detail listings.
const (
	NoRegion = "NoRegion"
	NoEngine = "NoEngine"
)

// CoverageRoot is the per-TCID anchor row. One root exists per distinct
// normalized tc_id, created lazily the first time a link or promotion
// references it.
type CoverageRoot struct {
	ID        int64
	TCID      string
	Title     *string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CoverageLink asserts "this test case exercises this metric under this
// region/engine". The (root, metric, variant, region, engine) tuple is
// unique; duplicate inserts are silently ignored.
type CoverageLink struct {
	ID         int64
	CoverageID int64
	MetricName string
	Variant    Variant
	Region     *string
	Engine     *string
	IsDeleted  bool
}

// LinkDetail is one row of a coverage detail listing (link joined to root).
type LinkDetail struct {
	LinkID int64
	TCID   string
	Title  *string
	Region *string
	Engine *string
}

// MetricCoverage groups all coverage recorded for one (metric, variant) pair.
type MetricCoverage struct {
	MetricName  string
	Variant     Variant
	Category    string
	RegionCount int
	EngineCount int
	TCIDCount   int
	Details     []LinkDetail
}

// CoverageStats is the headline dashboard numbers.
type CoverageStats struct {
	TotalGleanMetrics  int64
	TotalLegacyMetrics int64
	GleanCoveredTCs    int64
	LegacyCoveredTCs   int64
}

// ReportRow is one aggregated row of the reports view.
type ReportRow struct {
	MetricName string
	Variant    Variant
	TCIDCount  int64
}

// MetricStatus is the public read-only status of a single metric.
type MetricStatus struct {
	Metric   Metric
	Coverage MetricCoverage
}

var leadingDigit = regexp.MustCompile(`\d`)

// NormalizeTCID strips any leading non-digit prefix from an externally
// sourced test case id ("C1042", "TC1042" -> "1042"). Inputs with no digits
// are returned unchanged.
func NormalizeTCID(tcid string) string {
	loc := leadingDigit.FindStringIndex(tcid)
	if loc == nil {
		return tcid
	}
	return tcid[loc[0]:]
}
