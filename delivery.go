package erroranalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// ErrNoTransportAvailable is returned by Send when the Reporter has no HTTP
// transport to deliver the report with. Construct Reporters with New or
// Register to avoid this.
var ErrNoTransportAvailable = errors.New("no HTTP transport available to deliver the error report")

const (
	headerIntegrationKey = "X-Integration-Key"
	headerReportID       = "X-Report-Id"
	userAgent            = "erroranalytics-go"
)

// Send delivers report to the analytics endpoint and then invokes the
// configured Callback with it.
// Delivery failures are logged, not returned: Send only fails when there is no
// transport, in which case the Callback is not invoked. Panics raised by the
// Callback are not recovered.
func (r *Reporter) Send(ctx context.Context, report *Report) error {
	if r == nil || r.transport == nil {
		return ErrNoTransportAvailable
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := r.config()

	if err := r.deliver(ctx, report); err != nil {
		cfg.Logger.Warn().
			Err(err).
			Str("method", "Send").
			Str("endpoint", cfg.Endpoint).
			Msg("unable to deliver error report")
	}

	if cb := cfg.Callback; cb != nil {
		cb(report)
	}
	return nil
}

func (r *Reporter) deliver(ctx context.Context, report *Report) error {
	cfg := r.config()
	if sanitizer := cfg.Sanitizer; sanitizer != nil {
		if err := sanitizer(ctx, report); err != nil {
			return errors.Wrap(err, "report rejected by sanitizer")
		}
	}

	b, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "unable to marshal JSON")
	}

	// The caller's ctx is usually derived from a request, which may well be
	// canceled by the time this request is made. Keep its values only.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, cfg.Endpoint, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "unable to create new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerIntegrationKey, cfg.IntegrationKey)
	req.Header.Set("User-Agent", userAgent)
	if id, err := uuid.NewV4(); err == nil {
		req.Header.Set(headerReportID, id.String())
	}

	res, err := r.transport.Do(req)
	if err != nil {
		return errors.Wrap(err, "unable to perform HTTP request")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read response body")
	}
	cfg.Logger.Debug().
		Int("status", res.StatusCode).
		Bytes("body", body).
		Msg("error report delivered")
	if hook := cfg.ResponseHook; hook != nil {
		hook(res.StatusCode, body)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.Errorf("unexpected response status: HTTP %d", res.StatusCode)
	}
	return nil
}
