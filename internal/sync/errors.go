package sync

import "fmt"

// PreconditionError means local state failed validation before any request
// went out.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// PartialError means the page mutation succeeded but a following attachment
// upload failed: the remote page exists without some of its resources.
type PartialError struct {
	PageID string
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("page %s was written but attachment upload failed: %v", e.PageID, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }
