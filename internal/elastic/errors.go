package elastic

import "fmt"

// SearchError is the single error type every public provider operation
// surfaces. It carries the engine's diagnostic message plus the server URL
// and scope context; the originating error, if any, is wrapped.
type SearchError struct {
	Message   string
	ServerURL string
	Scope     string
	Err       error
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("%s. URL: %s, Scope: %s", e.Message, e.ServerURL, e.Scope)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
