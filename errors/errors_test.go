package errors

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
)

func check(t *testing.T, err error, msg string, traceRegexp *regexp.Regexp) {
	t.Helper()
	if s := err.Error(); s != msg {
		t.Errorf("Wrong error message %q; want %q", s, msg)
	}
	if s := fmt.Sprintf("%v", err); s != msg {
		t.Errorf("Wrong default value %q; want %q", s, msg)
	}
	if tr := fmt.Sprintf("%+v", err); !traceRegexp.MatchString(tr) {
		t.Errorf("Wrong trace %q; should match %q", tr, traceRegexp)
	}
}

func TestNew(t *testing.T) {
	const msg = "meow"
	traceRegexp := regexp.MustCompile(`^\[internal\] meow
	at github\.com/facebook/idb-sub000/errors\.TestNew \(errors_test.go:\d+\)`)

	err := New(Internal, msg)

	check(t, err, msg, traceRegexp)
}

func TestErrorf(t *testing.T) {
	const msg = "meow"
	traceRegexp := regexp.MustCompile(`^\[not_found\] meow
	at github\.com/facebook/idb-sub000/errors\.TestErrorf \(errors_test.go:\d+\)`)

	err := Errorf(NotFound, "%sow", "me")

	check(t, err, msg, traceRegexp)
}

func TestWrap(t *testing.T) {
	const msg = "meow: woof"
	traceRegexp := regexp.MustCompile(`(?s)^\[invalid_argument\] meow
	at github\.com/facebook/idb-sub000/errors\.TestWrap \(errors_test.go:\d+\)
.*
\[io\] woof
	at github\.com/facebook/idb-sub000/errors\.TestWrap \(errors_test.go:\d+\)`)

	err := Wrap(InvalidArgument, New(IO, "woof"), "meow")

	check(t, err, msg, traceRegexp)
}

func TestWrapForeignError(t *testing.T) {
	const msg = "meow: woof"
	traceRegexp := regexp.MustCompile(`(?s)^\[internal\] meow
	at github\.com/facebook/idb-sub000/errors\.TestWrapForeignError \(errors_test.go:\d+\)
.*
woof
	at \?\?\?$`)

	// Use standard errors package to create an error without a trace.
	err := Wrap(Internal, errors.New("woof"), "meow")

	check(t, err, msg, traceRegexp)
}

func TestWrapNil(t *testing.T) {
	const msg = "meow"
	traceRegexp := regexp.MustCompile(`^\[internal\] meow
	at github\.com/facebook/idb-sub000/errors\.TestWrapNil \(errors_test.go:\d+\)`)

	err := Wrap(Internal, nil, "meow")

	check(t, err, msg, traceRegexp)
}

func TestKindOf(t *testing.T) {
	err := Wrap(NotFound, New(IO, "woof"), "meow")
	if k := KindOf(err); k != NotFound {
		t.Errorf("KindOf(err) = %q; want %q", k, NotFound)
	}
	if k := KindOf(errors.New("plain")); k != Internal {
		t.Errorf("KindOf(plain) = %q; want %q", k, Internal)
	}
}
