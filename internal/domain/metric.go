package domain

import "time"

// DefaultCategory is assigned when a metric arrives without a category.
const DefaultCategory = "Uncategorized"

// Metric is a Glean or Legacy telemetry metric tracked for test coverage.
//
// Category is a free-text classification ("event", "counter", …) and is
// distinct from the Variant, which says which instrumentation system the
// metric belongs to.
type Metric struct {
	Name           string
	Variant        Variant
	Category       string
	Expiration     *string
	Description    *string
	SearchMetric   bool
	CrossReference *string // name of the correspondent metric in the other variant
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MetricPatch carries the editable fields of a metric. Nil fields are left
// unchanged.
type MetricPatch struct {
	Category       *string
	Expiration     *string
	Description    *string
	SearchMetric   *bool
	CrossReference *string
}

// CategoryOption is a distinct metric category together with the variant it
// was seen in, used to populate filter dropdowns.
type CategoryOption struct {
	Name   string
	Source string // "Glean" or "Legacy"
}
