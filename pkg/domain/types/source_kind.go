package types

import "fmt"

// SourceKind classifies where a source document came from. The kind
// determines the default authority weight applied to its chunks at
// index time.
type SourceKind string

const (
	SourceKindEarningsCall  SourceKind = "earnings-call"
	SourceKindFiling        SourceKind = "filing"
	SourceKindIRMaterial    SourceKind = "ir-material"
	SourceKindAnalystReport SourceKind = "analyst-report"
	SourceKindReport        SourceKind = "report"
)

// AllSourceKinds returns all valid source kinds
func AllSourceKinds() []SourceKind {
	return []SourceKind{
		SourceKindEarningsCall,
		SourceKindFiling,
		SourceKindIRMaterial,
		SourceKindAnalystReport,
		SourceKindReport,
	}
}

// IsValid checks if the source kind is valid
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindEarningsCall,
		SourceKindFiling,
		SourceKindIRMaterial,
		SourceKindAnalystReport,
		SourceKindReport:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source kind
func (k SourceKind) String() string {
	return string(k)
}

// ParseSourceKind parses a string into a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	kind := SourceKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid source kind: %s", s)
	}
	return kind, nil
}

// fallbackAuthorityWeight is applied to kinds missing from a weight
// table. Secondary material defaults low so unknown kinds never outrank
// primary sources.
const fallbackAuthorityWeight = 0.4

// DefaultAuthorityWeights returns the default mapping from source kind
// to authority weight. Primary material (calls, filings) carries full
// weight; derivative analyst commentary is discounted.
func DefaultAuthorityWeights() map[SourceKind]float64 {
	return map[SourceKind]float64{
		SourceKindEarningsCall:  1.0,
		SourceKindFiling:        1.0,
		SourceKindIRMaterial:    0.9,
		SourceKindAnalystReport: 0.4,
		SourceKindReport:        0.4,
	}
}

// AuthorityWeight resolves the weight for a kind from the given table,
// falling back to the secondary-source default when absent. A nil table
// uses DefaultAuthorityWeights.
func (k SourceKind) AuthorityWeight(table map[SourceKind]float64) float64 {
	if table == nil {
		table = DefaultAuthorityWeights()
	}
	if w, ok := table[k]; ok {
		return w
	}
	return fallbackAuthorityWeight
}
