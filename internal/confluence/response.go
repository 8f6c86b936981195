package confluence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Response is the transport-level envelope every API call returns: the
// status code, the server's reason phrase, and the raw body. Typed decoding
// happens on top via JSON.
type Response struct {
	StatusCode int
	Reason     string
	Body       []byte
}

// Ok reports whether the response carries a 2xx status.
func (r *Response) Ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Err returns nil for an ok response, otherwise a RemoteError carrying the
// reason and raw body for diagnostics.
func (r *Response) Err() error {
	if r.Ok() {
		return nil
	}
	return &RemoteError{
		StatusCode: r.StatusCode,
		Reason:     r.Reason,
		Body:       string(r.Body),
	}
}

// RemoteError is a rejection from the wiki: the request reached the server
// and came back non-2xx.
type RemoteError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *RemoteError) Error() string {
	detail := strings.TrimSpace(e.Body)
	if detail == "" {
		detail = e.Reason
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, detail)
}

// AsRemote unwraps err to a RemoteError when the failure came from the
// server rather than local validation or transport.
func AsRemote(err error) (*RemoteError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote, true
	}
	return nil, false
}
