// Package erroranalytics reports errors and panics to the Error Analytics
// service.
//
// Create a new *erroranalytics.Reporter:
//	r, err := erroranalytics.New(erroranalytics.Configuration{
//		IntegrationKey: "<<YOUR INTEGRATION KEY HERE>>",
//		Callback: func(report *erroranalytics.Report) {
//			// Invoked after every delivery attempt.
//		},
//	})
//	if err != nil {
//		panic(err)
//	}
// erroranalytics.Register(key, callback) is a shorthand for the above.
//
// There are no process-wide handlers. Wire the Reporter into the places your
// application handles errors instead:
//	defer r.Recover(ctx)                  // panics, re-panics afterwards
//	r.ReportException(ctx, err)           // errors, with a stacktrace
//	r.ReportError(ctx, code, "message")   // plain runtime errors
//	http.Handle("/", r.Middleware(h))     // request data + handler panics
//	logger = logger.Hook(r.Hook(zerolog.ErrorLevel))
//
// Every report is sent synchronously as a JSON POST with an X-Integration-Key
// header. Failing to deliver a report is logged and never returned to the
// caller, as reporting happens in the middle of someone else's error handling.
// The only error returned is ErrNoTransportAvailable.
//
// Reports include a snapshot of the request attached with WithRequest, and of
// the process' server and environment variables. The environment often holds
// secrets: set Configuration.OmitEnvironment, or strip what you don't want to
// send with a Configuration.Sanitizer.
package erroranalytics
