// Package errors provides the error type used throughout the companion
// daemon's packages.
//
// Use this package rather than the standard library's errors/fmt.Errorf or
// any other third-party error package: it records a stack trace and a
// chained cause, and it carries the error-taxonomy Kind (§7) so callers can
// classify a failure without string matching.
//
//	errors.New(Internal, "process not found")
//	errors.Wrap(NotFound, err, "failed to resolve bundle")
//
// A stack trace can be printed by formatting an error with the "%+v" verb.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/facebook/idb-sub000/errors/stack"
)

// Kind is the error-taxonomy tag from spec §7. Every operation's failure
// falls into exactly one Kind.
type Kind string

const (
	// InvalidArgument: bad path, bad identifier, missing required field.
	InvalidArgument Kind = "invalid_argument"
	// NotFound: bundle/file/descriptor not present.
	NotFound Kind = "not_found"
	// AlreadyExists: unique-path ingest collision.
	AlreadyExists Kind = "already_exists"
	// IncompatibleArchitecture: bundle archs ∩ target archs = ∅.
	IncompatibleArchitecture Kind = "incompatible_architecture"
	// TargetState: operation requires booted/shutdown and target is not.
	TargetState Kind = "target_state"
	// Timeout: deadline exceeded.
	Timeout Kind = "timeout"
	// Cancelled: future was cancelled.
	Cancelled Kind = "cancelled"
	// IO: OS-level I/O error.
	IO Kind = "io"
	// BackendUnsupported: capability not implemented by the chosen backend.
	BackendUnsupported Kind = "backend_unsupported"
	// Protocol: test bus framing/decoding failure.
	Protocol Kind = "protocol"
	// Subprocess: spawned process exited outside the acceptable set, or was signalled.
	Subprocess Kind = "subprocess"
	// Internal: invariant violation (bug).
	Internal Kind = "internal"
)

// E is the error implementation used by this package.
type E struct {
	kind  Kind
	msg   string
	stk   stack.Stack
	cause error
}

// Error implements the error interface.
func (e *E) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap implements the error Unwrap interface.
func (e *E) Unwrap() error {
	return e.cause
}

// Kind returns the error's taxonomy tag.
func (e *E) Kind() Kind {
	return e.kind
}

// unwrapper is a private interface of *E providing access to its fields so
// the chain can be walked even through embedding.
type unwrapper interface {
	unwrap() (kind Kind, msg string, stk stack.Stack, cause error)
}

func (e *E) unwrap() (Kind, string, stack.Stack, error) {
	return e.kind, e.msg, e.stk, e.cause
}

func formatChain(err error) string {
	var chain []string
	for err != nil {
		if e, ok := err.(unwrapper); ok {
			kind, msg, stk, cause := e.unwrap()
			chain = append(chain, fmt.Sprintf("[%s] %s\n%v", kind, msg, stk))
			err = cause
		} else {
			chain = append(chain, fmt.Sprintf("%s\n\tat ???", err.Error()))
			err = nil
		}
	}
	return strings.Join(chain, "\n")
}

// Format implements fmt.Formatter. The "%+v" verb prints the full error
// chain with stack traces; anything else prints Error().
func (e *E) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, formatChain(e))
	} else {
		io.WriteString(s, e.Error())
	}
}

// New creates a new error of the given kind with the given message.
func New(kind Kind, msg string) *E {
	return &E{kind: kind, msg: msg, stk: stack.New(1)}
}

// Errorf creates a new error of the given kind, formatting msg like fmt.Sprintf.
func Errorf(kind Kind, format string, args ...interface{}) *E {
	return &E{kind: kind, msg: fmt.Sprintf(format, args...), stk: stack.New(1)}
}

// Wrap creates a new error of the given kind wrapping cause. If cause is
// nil this is the same as New.
func Wrap(kind Kind, cause error, msg string) *E {
	return &E{kind: kind, msg: msg, stk: stack.New(1), cause: cause}
}

// Wrapf creates a new error of the given kind wrapping cause, formatting msg
// like fmt.Sprintf.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *E {
	return &E{kind: kind, msg: fmt.Sprintf(format, args...), stk: stack.New(1), cause: cause}
}

// KindOf walks err's chain and returns the Kind of the first *E found, or
// Internal if err does not wrap an *E.
func KindOf(err error) Kind {
	var e *E
	if As(err, &e) {
		return e.kind
	}
	return Internal
}

// Unwrap is a wrapper of the standard errors.Unwrap.
func Unwrap(err error) error { return errors.Unwrap(err) }

// As is a wrapper of the standard errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is a wrapper of the standard errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }
