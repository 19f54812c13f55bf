package wbapi

import "fmt"

// StatusError is returned for any non-success HTTP outcome. It keeps the
// status code and a truncated body so operators can tell an auth failure
// from a server-side error.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wb api returned %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError is returned when the API answers with success but
// the payload is not the expected JSON array of report rows. Distinguished
// from StatusError so "API reachable but contract violated" is visible as
// such.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return "unexpected response format: " + e.Detail
}
