package driver

import "strings"

// FetchStyle selects the shape of fetched rows.
type FetchStyle int

const (
	// FetchIndexed returns positional values only. This is the default.
	FetchIndexed FetchStyle = iota
	// FetchAssoc adds a column-name keyed view; duplicate column names
	// collapse to the last value.
	FetchAssoc
	// FetchAssocDup adds a column-name keyed view; duplicate column names
	// are kept by suffixing the key with its position.
	FetchAssocDup
	// FetchCombined adds a column-name keyed view alongside the
	// positional values.
	FetchCombined
	// FetchObject adds a column-name keyed view intended for one-object-
	// per-row consumption.
	FetchObject
)

func (s FetchStyle) String() string {
	switch s {
	case FetchAssoc:
		return "assoc"
	case FetchAssocDup:
		return "assoc_dup"
	case FetchCombined:
		return "combined"
	case FetchObject:
		return "object"
	default:
		return "indexed"
	}
}

// named returns true for the styles that populate Row.ByName.
func (s FetchStyle) named() bool {
	return s != FetchIndexed
}

// FetchStyleFor maps a textual hint to a fetch style, case-insensitively.
// Unrecognized or empty hints default to FetchIndexed.
func FetchStyleFor(hint string) FetchStyle {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "object", "obj":
		return FetchObject
	case "assoc", "associative":
		return FetchAssoc
	case "assoc_dup", "assocdup", "keep":
		return FetchAssocDup
	case "combined", "both":
		return FetchCombined
	default:
		return FetchIndexed
	}
}
