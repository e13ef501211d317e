package galaxy

import "fmt"

// APIError represents an error response from the Galaxy API
type APIError struct {
	StatusCode int
	// Code is Galaxy's err_code, zero when the body carried none
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("galaxy api error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("galaxy api error (status %d): %s", e.StatusCode, e.Message)
}

// NetworkError reports a request that never produced an HTTP response.
// URL has credentials redacted.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("galaxy unreachable: %v", e.Err)
	}
	return fmt.Sprintf("galaxy unreachable (%s %s): %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError rejects client settings before any request is made
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("galaxy client: %s %s", e.Field, e.Message)
}
