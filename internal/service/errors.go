package service

import (
	"encoding/json"
	"fmt"
)

// ResponseError is returned when the server answered with a non-2xx status.
type ResponseError struct {
	Status int
	Data   json.RawMessage
}

func (e *ResponseError) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("server responded with status %d", e.Status)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.Status, string(e.Data))
}

// NoResponseError is returned when a request was sent but no response arrived.
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response from server: %v", e.Err)
}

func (e *NoResponseError) Unwrap() error {
	return e.Err
}
