package erroranalytics

import (
	"bytes"
	"encoding/json"
)

// notPresent is sent in place of the server or environment maps when they
// could not, or should not, be captured.
const notPresent = "N/P"

// The types in this file describe the body of the POST request sent to the
// analytics endpoint.

// Report is the payload sent to the analytics endpoint for a single error or
// panic. It is built fresh for every occurrence and not modified after
// delivery.
type Report struct {
	// URL is the request URL (scheme, host and request URI) at the time of
	// the error. Empty when the error did not happen while serving a request.
	URL string `json:"url,omitempty"`

	// Get holds the query parameters of the request.
	Get map[string]string `json:"get"`

	// Post holds the form body parameters of the request.
	Post map[string]string `json:"post"`

	// Request holds the query and form body parameters combined. Form body
	// values win over query values with the same key.
	Request map[string]string `json:"request"`

	Server      Context `json:"server"`
	Environment Context `json:"environment"`

	Code    int    `json:"code"`
	Message string `json:"message"`
	File    string `json:"file"`
	Line    int    `json:"line"`

	// Stacktrace is only set for reports built from an Exception, with the
	// innermost frame first. A nil Stacktrace is left out of the payload, an
	// empty one is sent as [].
	Stacktrace []Stackframe `json:"stacktrace,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Report) MarshalJSON() ([]byte, error) {
	type report Report
	if r.Stacktrace == nil {
		return json.Marshal(report(r))
	}
	return json.Marshal(struct {
		report
		Stacktrace []Stackframe `json:"stacktrace"`
	}{report: report(r), Stacktrace: r.Stacktrace})
}

// Context is a set of key/value pairs describing the server or environment
// the error happened in. A nil Context is serialized as "N/P".
type Context map[string]string

// MarshalJSON implements json.Marshaler.
func (c Context) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal(notPresent)
	}
	return json.Marshal(map[string]string(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Context) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`"`+notPresent+`"`)) || bytes.Equal(b, []byte("null")) {
		*c = nil
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*c = m
	return nil
}

// Stackframe represents one line in the Report's stacktrace.
type Stackframe struct {
	// Function is the fully qualified name of the function this frame was in.
	Function string `json:"function"`

	File string `json:"file"`
	Line int    `json:"line"`
}
