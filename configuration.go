package erroranalytics

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultEndpoint is the analytics endpoint reports are sent to unless
// Configuration.Endpoint says otherwise.
const DefaultEndpoint = "https://erroranalytics.com/api/v1/error"

const defaultTimeout = 10 * time.Second

// ErrMissingIntegrationKey is returned by New when no integration key is set.
var ErrMissingIntegrationKey = errors.New("integration key must not be empty")

// Callback is invoked with every report after delivery has been attempted.
type Callback func(r *Report)

// ReportSanitizer allows you to modify the report just before it's being sent.
// The ctx param is the ctx given to the Report* method that triggered the report.
// You may return a non-nil error in order to prevent the report from being
// sent at all. The callback is still invoked.
type ReportSanitizer func(ctx context.Context, r *Report) error

// Configuration represents all of the possible configurations for the Reporter.
type Configuration struct {
	IntegrationKey string // Required. Sent as the X-Integration-Key header.

	// Optional. Invoked with the report after each delivery attempt.
	Callback Callback

	// Optional. The endpoint to send error reports to. Defaults to
	// DefaultEndpoint.
	Endpoint string

	// Optional. Bounds each outgoing request. Defaults to 10 seconds.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS peer verification for the outgoing
	// request. Off unless explicitly set.
	InsecureSkipVerify bool

	// OmitServer and OmitEnvironment stop the server and environment
	// variables from being captured. The report then carries "N/P" instead.
	OmitServer      bool
	OmitEnvironment bool

	// Optional. Called with the status and body of every response from the
	// endpoint.
	ResponseHook func(status int, body []byte)

	Sanitizer ReportSanitizer

	// Optional. Defaults to the global zerolog logger.
	Logger *zerolog.Logger

	runtimeConstants
}

func (cfg *Configuration) validate() error {
	if strings.TrimSpace(cfg.IntegrationKey) == "" {
		return ErrMissingIntegrationKey
	}

	validURL := func(cand string) bool {
		if _, err := url.ParseRequestURI(cand); err != nil {
			return false
		}
		u, err := url.Parse(cand)
		return err == nil && u.Scheme != "" && u.Host != ""
	}

	if !validURL(cfg.Endpoint) {
		return fmt.Errorf(`endpoint must be a valid URL, got "%s"`, cfg.Endpoint)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return nil
}

func (cfg *Configuration) applyDefaults() {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		l := log.With().Str("component", "erroranalytics").Logger()
		cfg.Logger = &l
	}
	cfg.runtimeConstants = makeRuntimeConstants()
}

type runtimeConstants struct {
	hostname, osVersion, goVersion, osName string

	pid int
}

func makeRuntimeConstants() runtimeConstants {
	hostname, _ := os.Hostname()
	return runtimeConstants{
		hostname:  hostname,
		osVersion: osVersion(),
		goVersion: runtime.Version(),
		osName:    runtime.GOOS,
		pid:       os.Getpid(),
	}
}

// osVersion is only available on unix-like systems as it depends on the
// 'uname' command.
func osVersion() string {
	if b, err := exec.Command("uname", "-r").Output(); err == nil {
		return strings.TrimSpace(string(b))
	}
	return ""
}
