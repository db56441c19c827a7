package domain

// SoftDeleteKind enumerates every record type that supports soft deletion.
// Keeping the set closed means delete handling can switch exhaustively
// instead of interpreting free-form table names.
type SoftDeleteKind string

const (
	DeleteGleanMetric  SoftDeleteKind = "glean_metric"
	DeleteLegacyMetric SoftDeleteKind = "legacy_metric"
	DeleteCoverageRoot SoftDeleteKind = "coverage_root"
	DeleteCoverageLink SoftDeleteKind = "coverage_link"
	DeleteException    SoftDeleteKind = "exception"
)

// SoftDeleteTarget identifies one record to soft-delete or restore.
// Key is the metric name, TCID, or link ID depending on Kind.
type SoftDeleteTarget struct {
	Kind SoftDeleteKind
	Key  string
}

// ParseSoftDeleteKind validates a kind received over the wire.
func ParseSoftDeleteKind(s string) (SoftDeleteKind, error) {
	switch k := SoftDeleteKind(s); k {
	case DeleteGleanMetric, DeleteLegacyMetric, DeleteCoverageRoot, DeleteCoverageLink, DeleteException:
		return k, nil
	default:
		return "", ErrValidation("unknown delete target %q", s)
	}
}
