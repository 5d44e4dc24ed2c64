package erroranalytics

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

const modulePath = "github.com/erroranalytics/erroranalytics-go"

// Occurrence is something worth reporting. It is either a RuntimeError or an
// Exception.
type Occurrence interface {
	occurrence()
}

// RuntimeError is a plain error condition identified by a code, a message and
// the location it was raised at. Reports built from a RuntimeError never carry
// a stacktrace.
type RuntimeError struct {
	Code    int
	Message string
	File    string
	Line    int
}

func (RuntimeError) occurrence() {}

// Exception is an error or panic that carries the stack it was raised with.
type Exception struct {
	Code    int
	Message string
	File    string
	Line    int
	Trace   []Stackframe
}

func (Exception) occurrence() {}

type coder interface {
	Code() int
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// NewException turns err into an Exception.
// If any error in the chain has a Code() int method its value is used as the
// code. If any error in the chain carries a github.com/pkg/errors stack trace,
// the innermost one is used, otherwise the stack of the caller is captured.
func NewException(err error) Exception {
	if err == nil {
		return Exception{}
	}
	e := Exception{Message: err.Error()}

	var c coder
	if errors.As(err, &c) {
		e.Code = c.Code()
	}

	if st := innermostStackTrace(err); st != nil {
		e.Trace = fromPkgStackTrace(st)
	} else {
		e.Trace = makeStacktrace()
	}
	if len(e.Trace) > 0 {
		e.File, e.Line = e.Trace[0].File, e.Trace[0].Line
	}
	return e
}

// newPanicException must be called from within the deferred call that
// recovered p, so that the panicking frames are still on the stack.
func newPanicException(p interface{}) Exception {
	var e Exception
	if err, ok := p.(error); ok {
		e = Exception{Message: err.Error()}
		var c coder
		if errors.As(err, &c) {
			e.Code = c.Code()
		}
	} else {
		e = Exception{Message: fmt.Sprint(p)}
	}
	e.Trace = makeStacktrace()
	if len(e.Trace) > 0 {
		e.File, e.Line = e.Trace[0].File, e.Trace[0].Line
	}
	return e
}

func innermostStackTrace(err error) errors.StackTrace {
	var st errors.StackTrace
	for err != nil {
		if s, ok := err.(stackTracer); ok {
			st = s.StackTrace()
		}
		next := errors.Unwrap(err)
		if next == nil {
			if c, ok := err.(interface{ Cause() error }); ok {
				next = c.Cause()
			}
		}
		err = next
	}
	return st
}

func fromPkgStackTrace(st errors.StackTrace) []Stackframe {
	frames := make([]Stackframe, 0, len(st))
	for _, f := range st {
		pc := uintptr(f) - 1
		file, line, function := "unknown", 0, "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			file, line = fn.FileLine(pc)
			function = fn.Name()
		}
		frames = append(frames, Stackframe{Function: function, File: file, Line: line})
	}
	return frames
}

// makeStacktrace captures the current stack, dropping the leading frames that
// belong to this package, the Go runtime, or any of the given packages.
// Rather than trying to guess how many frames to skip, this approach works
// for callers at any depth, including deferred calls run by a panic.
func makeStacktrace(skipPackages ...string) []Stackframe {
	ptrs := [64]uintptr{}
	pcs := ptrs[0:runtime.Callers(0, ptrs[:])]

	frames := runtime.CallersFrames(pcs)
	stacktrace := make([]Stackframe, 0, len(pcs))
	leading := true
	for {
		frame, more := frames.Next()
		if leading && skipFrame(frame.Function, skipPackages) {
			if !more {
				break
			}
			continue
		}
		leading = false
		stacktrace = append(stacktrace, Stackframe{Function: frame.Function, File: frame.File, Line: frame.Line})
		if !more {
			break
		}
	}
	return stacktrace
}

func skipFrame(function string, skipPackages []string) bool {
	if function == "" || strings.HasPrefix(function, "runtime.") || strings.HasPrefix(function, modulePath+".") {
		return true
	}
	for _, pkg := range skipPackages {
		if strings.HasPrefix(function, pkg) {
			return true
		}
	}
	return false
}

func callerLocation(skipPackages ...string) (string, int) {
	if st := makeStacktrace(skipPackages...); len(st) > 0 {
		return st[0].File, st[0].Line
	}
	return "unknown", 0
}
