package types

import (
	"fmt"
	"strings"
)

// Twitter v1.1 error codes the destroy loop knows how to recover from.
const (
	CodeNotFound      = 144 // status/message with that id doesn't exist
	CodeNotAuthorized = 179 // not authorized to see or touch the item
	CodePageGone      = 34  // page/resource doesn't exist
	CodeSuspended     = 63  // referenced user has been suspended
)

// APIError is a non-2xx response from the remote API, carrying the
// error codes parsed from its body.
type APIError struct {
	Status  int
	Codes   []int
	Message string
}

func (e *APIError) Error() string {
	if len(e.Codes) == 0 {
		return fmt.Sprintf("api error: HTTP %d: %s", e.Status, e.Message)
	}
	codes := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		codes[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf("api error: HTTP %d code %s: %s", e.Status, strings.Join(codes, ","), e.Message)
}

// Recoverable reports whether the error means the remote copy is
// already gone or out of reach, so the local record can be tombstoned
// and the run can continue. Anything else, including a response
// carrying more than one error code, is fatal to the destroy loop.
func (e *APIError) Recoverable() bool {
	if len(e.Codes) != 1 {
		return false
	}
	switch e.Codes[0] {
	case CodeNotFound, CodeNotAuthorized, CodePageGone, CodeSuspended:
		return true
	}
	return false
}
