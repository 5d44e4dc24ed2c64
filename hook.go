package erroranalytics

import (
	"context"

	"github.com/rs/zerolog"
)

const zerologPath = "github.com/rs/zerolog"

// LogHook reports zerolog events as runtime errors. See (*Reporter).Hook.
type LogHook struct {
	r        *Reporter
	minLevel zerolog.Level
	ctx      context.Context
}

// Hook returns a zerolog.Hook that reports every event logged at minLevel or
// above as a RuntimeError, using the level as the code and the event message
// as the message. The file and line are those of the logging call.
// minLevel is raised to zerolog.ErrorLevel if lower: the Reporter logs its
// own delivery failures below that level, which keeps the hook from
// reporting them.
//	logger := zerolog.New(os.Stderr).Hook(reporter.Hook(zerolog.ErrorLevel))
func (r *Reporter) Hook(minLevel zerolog.Level) *LogHook {
	if minLevel < zerolog.ErrorLevel {
		minLevel = zerolog.ErrorLevel
	}
	return &LogHook{r: r, minLevel: minLevel, ctx: context.Background()}
}

// WithContext returns a copy of the hook that builds its reports from ctx,
// e.g. a ctx returned by WithRequest.
func (h *LogHook) WithContext(ctx context.Context) *LogHook {
	cp := *h
	cp.ctx = ctx
	return &cp
}

// Run implements zerolog.Hook.
func (h *LogHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level < h.minLevel || level == zerolog.Disabled || level == zerolog.NoLevel {
		return
	}
	file, line := callerLocation(zerologPath)
	if err := h.r.Report(h.ctx, RuntimeError{Code: int(level), Message: msg, File: file, Line: line}); err != nil {
		h.r.config().Logger.Warn().Err(err).Str("method", "Hook").Msg("unable to report log event")
	}
}
