package erroranalytics

import (
	"encoding/json"
	"testing"

	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSentinel(t *testing.T) {
	b, err := json.Marshal(Report{Get: map[string]string{}, Post: map[string]string{}, Request: map[string]string{}})
	require.NoError(t, err)
	jsonassert.New(t).Assertf(string(b), `{
		"get": {}, "post": {}, "request": {},
		"server": "N/P", "environment": "N/P",
		"code": 0, "message": "", "file": "", "line": 0
	}`)

	var got Report
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Nil(t, got.Server)
	assert.Nil(t, got.Environment)
}

func TestReportRoundTrip(t *testing.T) {
	exp := &Report{
		URL:         "https://example.com/users?id=1",
		Get:         map[string]string{"id": "1"},
		Post:        map[string]string{"name": "river"},
		Request:     map[string]string{"id": "1", "name": "river"},
		Server:      Context{"REQUEST_METHOD": "POST"},
		Environment: Context{"HOME": "/root"},
		Code:        2,
		Message:     "Division by zero",
		File:        "/app/x",
		Line:        10,
		Stacktrace:  []Stackframe{{Function: "main.divide", File: "/app/x", Line: 10}},
	}
	b, err := json.Marshal(exp)
	require.NoError(t, err)

	jsonassert.New(t).Assertf(string(b), `{
		"url": "https://example.com/users?id=1",
		"get": {"id": "1"},
		"post": {"name": "river"},
		"request": {"id": "1", "name": "river"},
		"server": {"REQUEST_METHOD": "POST"},
		"environment": {"HOME": "/root"},
		"code": 2,
		"message": "Division by zero",
		"file": "/app/x",
		"line": 10,
		"stacktrace": [{"function": "main.divide", "file": "/app/x", "line": 10}]
	}`)

	got := &Report{}
	require.NoError(t, json.Unmarshal(b, got))
	assert.Equal(t, exp, got)
}

func TestReportStacktracePresence(t *testing.T) {
	for _, tc := range []struct {
		name  string
		trace []Stackframe
		exp   string
	}{
		{name: "runtime error", trace: nil, exp: `{
			"get": null, "post": null, "request": null,
			"server": "N/P", "environment": "N/P",
			"code": 0, "message": "", "file": "", "line": 0
		}`},
		{name: "exception thrown at the top level", trace: []Stackframe{}, exp: `{
			"get": null, "post": null, "request": null,
			"server": "N/P", "environment": "N/P",
			"code": 0, "message": "", "file": "", "line": 0,
			"stacktrace": []
		}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(&Report{Stacktrace: tc.trace})
			require.NoError(t, err)
			jsonassert.New(t).Assertf(string(b), tc.exp)

			got := Report{}
			require.NoError(t, json.Unmarshal(b, &got))
			assert.Equal(t, tc.trace, got.Stacktrace)
		})
	}
}
