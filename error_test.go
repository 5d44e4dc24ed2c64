package erroranalytics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type codedError struct{ code int }

func (e codedError) Error() string { return fmt.Sprintf("coded error %d", e.code) }
func (e codedError) Code() int     { return e.code }

func TestNewException(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if got := NewException(nil); got.Message != "" || got.Trace != nil {
			t.Errorf("expected empty exception but got %+v", got)
		}
	})

	t.Run("pkg/errors stacktrace is preferred", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", errors.WithStack(errors.New("inner")))
		e := NewException(err)

		if e.Message != "outer: inner" {
			t.Errorf("expected message 'outer: inner' but got '%s'", e.Message)
		}
		if len(e.Trace) == 0 {
			t.Fatal("expected a stacktrace")
		}
		if !strings.HasSuffix(e.File, "error_test.go") {
			t.Errorf("expected file to be this test file but was '%s'", e.File)
		}
		if e.File != e.Trace[0].File || e.Line != e.Trace[0].Line {
			t.Errorf("expected file and line to match the innermost frame %+v, got %s:%d", e.Trace[0], e.File, e.Line)
		}
		if fn := e.Trace[0].Function; !strings.Contains(fn, "TestNewException") {
			t.Errorf("expected innermost frame to be the test func but was '%s'", fn)
		}
	})

	t.Run("falls back to the caller's stack", func(t *testing.T) {
		e := NewException(fmt.Errorf("plain"))
		if len(e.Trace) == 0 {
			t.Fatal("expected a stacktrace")
		}
		for _, f := range e.Trace {
			if strings.HasPrefix(f.Function, "runtime.Callers") {
				t.Errorf("expected runtime.Callers to be stripped, got %+v", e.Trace)
			}
		}
	})

	t.Run("code", func(t *testing.T) {
		e := NewException(errors.Wrap(codedError{code: 42}, "wrapped"))
		if e.Code != 42 {
			t.Errorf("expected code 42 but got %d", e.Code)
		}
		if e.Message != "wrapped: coded error 42" {
			t.Errorf("unexpected message '%s'", e.Message)
		}
	})
}

func TestNewPanicException(t *testing.T) {
	for _, tc := range []struct {
		name    string
		p       interface{}
		expMsg  string
		expCode int
	}{
		{name: "string", p: "oh ploppers", expMsg: "oh ploppers"},
		{name: "error", p: errors.New("kaboom"), expMsg: "kaboom"},
		{name: "coded error", p: codedError{code: 7}, expMsg: "coded error 7", expCode: 7},
		{name: "other", p: 15, expMsg: "15"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newPanicException(tc.p)
			if e.Message != tc.expMsg {
				t.Errorf("expected message '%s' but got '%s'", tc.expMsg, e.Message)
			}
			if e.Code != tc.expCode {
				t.Errorf("expected code %d but got %d", tc.expCode, e.Code)
			}
			if e.Trace == nil {
				t.Error("expected a stacktrace for a panic")
			}
		})
	}
}

func TestSkipFrame(t *testing.T) {
	for _, tc := range []struct {
		fn  string
		exp bool
	}{
		{fn: "", exp: true},
		{fn: "runtime.gopanic", exp: true},
		{fn: "runtime.panicdivide", exp: true},
		{fn: modulePath + ".NewException", exp: true},
		{fn: modulePath + ".(*Reporter).Recover", exp: true},
		{fn: "github.com/rs/zerolog.(*Event).Msg", exp: true},
		{fn: "main.main", exp: false},
		{fn: "github.com/example/app.(*Server).Serve", exp: false},
		{fn: modulePath + "_test.TestRecover", exp: false},
		{fn: modulePath + "/cmd/erroranalytics.runSend", exp: false},
	} {
		if got := skipFrame(tc.fn, []string{zerologPath}); got != tc.exp {
			t.Errorf("expected skipFrame(%q) to be %v", tc.fn, tc.exp)
		}
	}
}
