package markup

import "fmt"

// UnsupportedSyntaxError reports a syntax tag outside the supported set.
type UnsupportedSyntaxError struct {
	Syntax string
}

func (e *UnsupportedSyntaxError) Error() string {
	return fmt.Sprintf("syntax %q is not supported", e.Syntax)
}

// EmptyDocumentError reports a conversion that produced no content.
type EmptyDocumentError struct{}

func (e *EmptyDocumentError) Error() string {
	return "cannot convert this document: the result is empty"
}

// MissingDependencyError reports an operation that needs an external tool
// which was not found when capabilities were resolved.
type MissingDependencyError struct {
	Tool string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("converter '%s' not found in PATH", e.Tool)
}
