package sync

import (
	"errors"
	"fmt"

	"wikipen/internal/confluence"
)

// Outcome classifies how a page operation ended.
type Outcome int

const (
	// Succeeded means the operation completed fully.
	Succeeded Outcome = iota
	// PreconditionFailed means local state failed validation before any
	// mutation request was issued.
	PreconditionFailed
	// RemoteRejected means the wiki refused or never answered the request.
	RemoteRejected
	// PartialFailure means the page mutation went through but an attachment
	// upload after it failed.
	PartialFailure
	// Cancelled means the user abandoned an interactive operation.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case PreconditionFailed:
		return "precondition failed"
	case RemoteRejected:
		return "remote rejected"
	case PartialFailure:
		return "partial failure"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the terminal state of a page operation.
type Result struct {
	Outcome  Outcome
	Record   *confluence.Page // server record, when the operation produced one
	URL      string           // canonical page URL, when derivable
	Err      error            // failure behind a non-success outcome
	DumpPath string           // diagnostics dump for rejected bodies
}

func preconditionFailed(format string, args ...interface{}) *Result {
	return &Result{
		Outcome: PreconditionFailed,
		Err:     &PreconditionError{Msg: fmt.Sprintf(format, args...)},
	}
}

// CanonicalURL derives the browsable URL for a page from its links.
func CanonicalURL(page *confluence.Page) (string, error) {
	if page == nil || page.Links.Base == "" || page.Links.WebUI == "" {
		return "", errors.New("page record carries no usable web link")
	}
	return page.WebURL(), nil
}
