package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	erroranalytics "github.com/erroranalytics/erroranalytics-go"
)

// These fields represent command line flags and all have to be pointers as
// they will be unset until Parse is called.
type sendFlags struct {
	integrationKey  *string
	endpoint        *string
	code            *int
	message         *string
	file            *string
	line            *int
	timeout         *time.Duration
	insecure        *bool
	echo            *bool
	omitEnvironment *bool
	envFile         *string
	debug           *bool
}

//nolint:funlen // This function is long but it's just a bunch of flag declarations.
func newSendFlags(sendCmd *flag.FlagSet) *sendFlags {
	return &sendFlags{
		integrationKey: sendCmd.String(
			"integration-key",
			"",
			`Required. Your Error Analytics integration key.
erroranalytics will look for an ERRORANALYTICS_INTEGRATION_KEY environment variable if no value is provided.`,
		),

		endpoint: sendCmd.String(
			"endpoint",
			"",
			`Optional. The analytics endpoint to send the report to.
erroranalytics will look for an ERRORANALYTICS_ENDPOINT environment variable if no value is provided.`,
		),

		code: sendCmd.Int("code", 0, `Optional. Numeric code of the error.`),

		message: sendCmd.String("message", "", `Required. Description of the error.`),

		file: sendCmd.String("file", "", `Optional. Source file the error originated from.`),

		line: sendCmd.Int("line", 0, `Optional. Source line the error originated from.`),

		timeout: sendCmd.Duration("timeout", 10*time.Second, `Optional. Bounds the request to the endpoint.`),

		insecure: sendCmd.Bool(
			"insecure",
			false,
			`Optional. Skip TLS certificate verification of the endpoint. Do not use in production.`,
		),

		echo: sendCmd.Bool("echo", false, `Optional. Write the endpoint's response body to stdout.`),

		omitEnvironment: sendCmd.Bool(
			"omit-environment",
			false,
			`Optional. Don't include this process' environment variables in the report.`,
		),

		envFile: sendCmd.String(
			"env-file",
			"",
			`Optional. A .env file to read ERRORANALYTICS_* variables from. Variables already set take precedence.`,
		),

		debug: sendCmd.Bool("debug", false, "Turn on for debug logs"),
	}
}

func (app *application) runSend(envVars map[string]string) error {
	flags := app.sendFlags
	logger := zerolog.New(zerolog.ConsoleWriter{Out: app.stderr, NoColor: true}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
	if *flags.debug {
		logger = logger.Level(zerolog.DebugLevel)
		app.printSendDebug(&logger)
	}

	if path := *flags.envFile; path != "" {
		if err := loadEnvFile(path, envVars); err != nil {
			return err
		}
	}
	populateSendDefaults(flags, envVars)

	if *flags.message == "" {
		return fmt.Errorf("--message must be present\nSee 'erroranalytics send --help'")
	}

	cfg := erroranalytics.Configuration{
		IntegrationKey:     *flags.integrationKey,
		Endpoint:           *flags.endpoint,
		Timeout:            *flags.timeout,
		InsecureSkipVerify: *flags.insecure,
		OmitEnvironment:    *flags.omitEnvironment,
		Logger:             &logger,
	}
	status := 0
	cfg.ResponseHook = func(s int, body []byte) {
		status = s
		if *flags.echo {
			_, _ = app.stdout.Write(body)
		}
	}

	reporter, err := erroranalytics.New(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w\nSee 'erroranalytics send --help'", err)
	}

	err = reporter.Report(context.Background(), erroranalytics.RuntimeError{
		Code:    *flags.code,
		Message: *flags.message,
		File:    *flags.file,
		Line:    *flags.line,
	})
	if err != nil {
		return fmt.Errorf("unable to send: %w", err)
	}
	if status >= 200 && status < 300 {
		logger.Info().Int("status", status).Msg("error report sent")
	}
	return nil
}

func (app *application) printSendDebug(logger *zerolog.Logger) {
	flags := app.sendFlags
	logger.Debug().
		Bool("integration-key-set", *flags.integrationKey != "").
		Str("endpoint", *flags.endpoint).
		Int("code", *flags.code).
		Str("message", *flags.message).
		Str("file", *flags.file).
		Int("line", *flags.line).
		Dur("timeout", *flags.timeout).
		Bool("insecure", *flags.insecure).
		Bool("echo", *flags.echo).
		Bool("omit-environment", *flags.omitEnvironment).
		Str("env-file", *flags.envFile).
		Msg("send flags")
}

func populateSendDefaults(flags *sendFlags, envVars map[string]string) {
	if *flags.integrationKey == "" {
		*flags.integrationKey = envVars["ERRORANALYTICS_INTEGRATION_KEY"]
	}
	if *flags.endpoint == "" {
		*flags.endpoint = envVars["ERRORANALYTICS_ENDPOINT"]
	}
}
