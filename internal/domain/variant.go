package domain

// Variant identifies which telemetry instrumentation system a metric belongs to.
//
// The variant is a closed set. Every piece of SQL that differs between the two
// metric tables is selected through a switch on this type, never by formatting
// the variant into a query string.
type Variant string

const (
	VariantGlean  Variant = "glean"
	VariantLegacy Variant = "legacy"
)

// ParseVariant validates a raw variant string (case-insensitive is the
// caller's job; CSV imports lowercase before calling).
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantGlean, VariantLegacy:
		return Variant(s), nil
	default:
		return "", ErrValidation("invalid metric variant %q: must be %q or %q", s, VariantGlean, VariantLegacy)
	}
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return v == VariantGlean || v == VariantLegacy
}

// Label returns the display form ("Glean" / "Legacy").
func (v Variant) Label() string {
	switch v {
	case VariantGlean:
		return "Glean"
	case VariantLegacy:
		return "Legacy"
	default:
		return string(v)
	}
}

// Other returns the opposite variant, used when resolving a metric's
// cross-reference to its correspondent in the other system.
func (v Variant) Other() Variant {
	if v == VariantGlean {
		return VariantLegacy
	}
	return VariantGlean
}
