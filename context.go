package erroranalytics

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type ctxKey int

const requestKey ctxKey = iota + 1

// maxFormMemory matches the limit net/http applies in FormValue.
const maxFormMemory = 32 << 20

// WithRequest attaches r to a copy of ctx, such that reports built from the
// returned ctx include the request's URL, parameters and headers.
// The request's form is parsed here, which consumes url-encoded and
// multipart/form-data request bodies. Handlers can still read the values
// through r.Form, r.PostForm and r.MultipartForm.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	if ctx == nil || r == nil {
		return ctx
	}
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		_ = r.ParseMultipartForm(maxFormMemory)
	} else {
		_ = r.ParseForm()
	}
	return context.WithValue(ctx, requestKey, r)
}

func requestFromContext(ctx context.Context) *http.Request {
	if ctx == nil {
		return nil
	}
	if r, ok := ctx.Value(requestKey).(*http.Request); ok {
		return r
	}
	return nil
}

// BuildReport snapshots the ambient request and process data together with
// the given occurrence. It never fails: missing data degrades to empty maps,
// or to "N/P" for the server and environment.
func (r *Reporter) BuildReport(ctx context.Context, o Occurrence) *Report {
	req := requestFromContext(ctx)
	report := &Report{
		URL:     requestURL(req),
		Get:     values(queryValues(req)),
		Post:    values(postValues(req)),
		Request: map[string]string{},
	}
	for k, v := range report.Get {
		report.Request[k] = v
	}
	for k, v := range report.Post {
		report.Request[k] = v
	}
	if !r.config().OmitServer {
		report.Server = r.serverContext(req)
	}
	if !r.config().OmitEnvironment {
		report.Environment = environmentContext()
	}

	switch o := o.(type) {
	case RuntimeError:
		report.Code, report.Message, report.File, report.Line = o.Code, o.Message, o.File, o.Line
	case Exception:
		report.Code, report.Message, report.File, report.Line = o.Code, o.Message, o.File, o.Line
		report.Stacktrace = append([]Stackframe{}, o.Trace...)
	}
	return report
}

func requestURL(r *http.Request) string {
	if r == nil {
		return ""
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	uri := r.RequestURI
	if r.URL != nil {
		uri = r.URL.RequestURI()
	}
	return scheme + "://" + host + uri
}

func queryValues(r *http.Request) url.Values {
	if r == nil || r.URL == nil {
		return nil
	}
	return r.URL.Query()
}

func postValues(r *http.Request) url.Values {
	if r == nil {
		return nil
	}
	return r.PostForm
}

// values flattens v to its first value per key. Always returns a non-nil map.
func values(v url.Values) map[string]string {
	m := make(map[string]string, len(v))
	for k, vs := range v {
		if len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return m
}

func (r *Reporter) serverContext(req *http.Request) Context {
	rc := r.config().runtimeConstants
	c := Context{
		"SERVER_HOSTNAME":   rc.hostname,
		"SERVER_OS":         rc.osName,
		"SERVER_OS_VERSION": rc.osVersion,
		"GO_VERSION":        rc.goVersion,
		"PID":               strconv.Itoa(rc.pid),
	}
	if req == nil {
		return c
	}
	c["REQUEST_METHOD"] = req.Method
	c["REQUEST_URI"] = req.RequestURI
	c["SERVER_PROTOCOL"] = req.Proto
	c["REMOTE_ADDR"] = req.RemoteAddr
	c["HTTP_HOST"] = req.Host
	if req.TLS != nil {
		c["HTTPS"] = "on"
	}
	for name, vs := range req.Header {
		if len(vs) == 0 {
			continue
		}
		c["HTTP_"+strings.ToUpper(strings.ReplaceAll(name, "-", "_"))] = strings.Join(vs, ", ")
	}
	return c
}

func environmentContext() Context {
	env := os.Environ()
	c := make(Context, len(env))
	for _, kv := range env {
		pair := strings.SplitN(kv, "=", 2)
		if len(pair) == 2 {
			c[pair[0]] = pair[1]
		}
	}
	return c
}
