package api

import (
	"encoding/json"
	"fmt"
)

// Error represents a failure response from the backend.
//
// Detail carries the backend's human-readable reason, extracted from the
// FastAPI-style {"detail": "..."} error body when present.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend request failed with status %d", e.Status)
}

// errorFromResponse builds an [*Error] from a non-2xx response.
func errorFromResponse(resp *Response) *Error {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Detail != "" {
		return &Error{Status: resp.StatusCode, Detail: body.Detail}
	}
	return &Error{Status: resp.StatusCode}
}
