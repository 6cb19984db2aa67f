package types

import "fmt"

// Namespace identifies the logical collection a source belongs to.
// Source IDs are only unique within a namespace.
type Namespace string

const (
	// NamespaceReport holds generated analysis reports (secondary material)
	NamespaceReport Namespace = "report"
	// NamespacePrimaryDocument holds primary source documents such as
	// filings, earnings call transcripts and IR material
	NamespacePrimaryDocument Namespace = "primary-document"
)

// AllNamespaces returns all valid namespaces
func AllNamespaces() []Namespace {
	return []Namespace{
		NamespaceReport,
		NamespacePrimaryDocument,
	}
}

// IsValid checks if the namespace is valid
func (n Namespace) IsValid() bool {
	switch n {
	case NamespaceReport, NamespacePrimaryDocument:
		return true
	default:
		return false
	}
}

// String returns the string representation of the namespace
func (n Namespace) String() string {
	return string(n)
}

// ParseNamespace parses a string into a Namespace
func ParseNamespace(s string) (Namespace, error) {
	ns := Namespace(s)
	if !ns.IsValid() {
		return "", fmt.Errorf("invalid namespace: %s", s)
	}
	return ns, nil
}
