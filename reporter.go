package erroranalytics

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/rs/zerolog"
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Reporter is the key type of this package. It captures errors and panics,
// and sends them to the analytics endpoint.
// A Reporter is safe for concurrent use. The zero value has no transport and
// every Send fails with ErrNoTransportAvailable; use New or Register.
type Reporter struct {
	cfg       *Configuration
	transport Doer
}

// Register constructs a Reporter for the given integration key. callback may
// be nil.
// Unlike process-wide handlers, each call returns an independent Reporter;
// wire it into your error paths with ReportError, ReportException, Recover,
// Middleware or Hook.
func Register(integrationKey string, callback Callback) (*Reporter, error) {
	return New(Configuration{IntegrationKey: integrationKey, Callback: callback})
}

// New constructs a new Reporter with the given configuration.
func New(cfg Configuration) (*Reporter, error) { //nolint:gocritic // We want to pass by value here as the configuration should be considered immutable
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicitly requested via Configuration
	}

	return &Reporter{
		cfg:       &cfg,
		transport: &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}, nil
}

var unconfigured = func() *Configuration {
	nop := zerolog.Nop()
	return &Configuration{Logger: &nop}
}()

// config returns the Reporter's configuration, tolerating a zero Reporter.
func (r *Reporter) config() *Configuration {
	if r == nil || r.cfg == nil {
		return unconfigured
	}
	return r.cfg
}

// Report builds a report from o and sends it.
func (r *Reporter) Report(ctx context.Context, o Occurrence) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.Send(ctx, r.BuildReport(ctx, o))
}

// ReportError reports a runtime error with the given code and message,
// located at the line ReportError was called from.
func (r *Reporter) ReportError(ctx context.Context, code int, message string) error {
	file, line := callerLocation()
	return r.Report(ctx, RuntimeError{Code: code, Message: message, File: file, Line: line})
}

// ReportException reports err along with its stacktrace. See NewException.
// Nil errors are ignored.
func (r *Reporter) ReportException(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return r.Report(ctx, NewException(err))
}

// Recover reports a panic, if any, and then re-panics with the same value so
// that the panic continues to unwind as if Recover had never been deferred.
// Recover must be deferred directly:
//	defer reporter.Recover(ctx)
func (r *Reporter) Recover(ctx context.Context) {
	p := recover()
	if p == nil {
		return
	}
	if p != http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
		r.reportPanic(ctx, p)
	}
	panic(p)
}

func (r *Reporter) reportPanic(ctx context.Context, p interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.Send(ctx, r.BuildReport(ctx, newPanicException(p))); err != nil {
		r.config().Logger.Warn().Err(err).Str("method", "Recover").Msg("unable to report panic")
	}
}

// Middleware attaches each request to its context, see WithRequest, and
// reports panics raised by next before letting them propagate to the server.
func (r *Reporter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := WithRequest(req.Context(), req)
		defer r.Recover(ctx)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
